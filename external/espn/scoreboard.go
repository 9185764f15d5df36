package espn

import (
	"strconv"
	"strings"
	"time"

	"github.com/pickemlabs/survivor-pool/internal/usecase"
)

type scoreboardEnvelope struct {
	Events []scoreboardEvent `json:"events"`
	Week   struct {
		Number int `json:"number"`
	} `json:"week"`
}

type scoreboardEvent struct {
	ID           string             `json:"id"`
	Date         string             `json:"date"`
	Name         string             `json:"name"`
	Competitions []eventCompetition `json:"competitions"`
	Status       eventStatus        `json:"status"`
}

type eventCompetition struct {
	ID          string            `json:"id"`
	Date        string            `json:"date"`
	Competitors []eventCompetitor `json:"competitors"`
	Status      eventStatus       `json:"status"`
}

type eventCompetitor struct {
	HomeAway string `json:"homeAway"`
	Score    string `json:"score"`
	Team     struct {
		ID           string `json:"id"`
		Abbreviation string `json:"abbreviation"`
		DisplayName  string `json:"displayName"`
	} `json:"team"`
}

type eventStatus struct {
	Type struct {
		Name      string `json:"name"`
		State     string `json:"state"`
		Completed bool   `json:"completed"`
	} `json:"type"`
}

// mapScoreboardEvent flattens one provider event into the canonical game
// shape. The provider nests the real data one level down in competitions;
// events without a competition carry nothing usable and map to a zero game.
func mapScoreboardEvent(item scoreboardEvent, week int) (usecase.CanonicalGame, bool) {
	if strings.TrimSpace(item.ID) == "" || len(item.Competitions) == 0 {
		return usecase.CanonicalGame{}, false
	}
	competition := item.Competitions[0]

	out := usecase.CanonicalGame{
		ExternalID: strings.TrimSpace(item.ID),
		Week:       week,
		Status:     firstNonEmpty(competition.Status.Type.Name, item.Status.Type.Name),
	}
	out.IsCompleted = competition.Status.Type.Completed || item.Status.Type.Completed

	if parsed := parseProviderDateTime(firstNonEmpty(competition.Date, item.Date)); parsed != nil {
		out.StartsAt = *parsed
	}

	for _, competitor := range competition.Competitors {
		abbr := AbbreviationForTeamID(competitor.Team.ID)
		if abbr == "" {
			abbr = strings.ToUpper(strings.TrimSpace(competitor.Team.Abbreviation))
			if _, known := idByAbbreviation[abbr]; !known {
				abbr = ""
			}
		}
		score := parseScore(competitor.Score)
		switch strings.ToLower(strings.TrimSpace(competitor.HomeAway)) {
		case "home":
			out.HomeAbbreviation = abbr
			out.HomeTeamName = strings.TrimSpace(competitor.Team.DisplayName)
			out.HomeScore = score
		case "away":
			out.AwayAbbreviation = abbr
			out.AwayTeamName = strings.TrimSpace(competitor.Team.DisplayName)
			out.AwayScore = score
		}
	}

	return out, true
}

var idByAbbreviation = func() map[string]string {
	out := make(map[string]string, len(abbreviationByTeamID))
	for id, abbr := range abbreviationByTeamID {
		out[abbr] = id
	}
	return out
}()

func parseScore(raw string) *int {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return nil
	}
	return &parsed
}

func parseProviderDateTime(raw string) *time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04Z07:00",
		"2006-01-02T15:04:05Z07:00",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			v := parsed.UTC()
			return &v
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
