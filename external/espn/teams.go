package espn

// abbreviationByTeamID maps the provider's numeric NFL team ids to the
// abbreviations the rest of the system keys on. Games whose competitors are
// missing from this table are skipped by callers rather than failing the
// whole fetch.
var abbreviationByTeamID = map[string]string{
	"1":  "ATL",
	"2":  "BUF",
	"3":  "CHI",
	"4":  "CIN",
	"5":  "CLE",
	"6":  "DAL",
	"7":  "DEN",
	"8":  "DET",
	"9":  "GB",
	"10": "TEN",
	"11": "IND",
	"12": "KC",
	"13": "LV",
	"14": "LAR",
	"15": "MIA",
	"16": "MIN",
	"17": "NE",
	"18": "NO",
	"19": "NYG",
	"20": "NYJ",
	"21": "PHI",
	"22": "ARI",
	"23": "PIT",
	"24": "LAC",
	"25": "SF",
	"26": "SEA",
	"27": "TB",
	"28": "WSH",
	"29": "CAR",
	"30": "JAX",
	"33": "BAL",
	"34": "HOU",
}

// AbbreviationForTeamID resolves a provider team id, returning "" when the
// id is not an NFL franchise the table knows.
func AbbreviationForTeamID(id string) string {
	return abbreviationByTeamID[id]
}
