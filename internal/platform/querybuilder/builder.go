package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

type condKind int

const (
	condEq condKind = iota
	condIn
	condExpr
)

// Cond is one WHERE predicate. Conditions combine with AND; anything richer
// goes through Expr with ?-placeholders.
type Cond struct {
	kind   condKind
	column string
	expr   string
	values []any
}

func Eq(column string, value any) Cond {
	return Cond{kind: condEq, column: column, values: []any{value}}
}

func In(column string, values []any) Cond {
	return Cond{kind: condIn, column: column, values: values}
}

func Expr(expr string, args ...any) Cond {
	return Cond{kind: condExpr, expr: expr, values: args}
}

func (c Cond) write(buf *strings.Builder, args *[]any, next *int) {
	switch c.kind {
	case condEq:
		buf.WriteString(c.column)
		buf.WriteString(" = ")
		buf.WriteString(placeholder(*next))
		*args = append(*args, c.values[0])
		*next++
	case condIn:
		if len(c.values) == 0 {
			buf.WriteString("1=0")
			return
		}
		buf.WriteString(c.column)
		buf.WriteString(" IN (")
		for i, value := range c.values {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(placeholder(*next))
			*args = append(*args, value)
			*next++
		}
		buf.WriteString(")")
	case condExpr:
		buf.WriteString(rewrite(c.expr, c.values, args, next))
	}
}

type SelectBuilder struct {
	columns []string
	table   string
	joins   []string
	where   []Cond
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Join(clause string) *SelectBuilder {
	b.joins = append(b.joins, clause)
	return b
}

func (b *SelectBuilder) Where(conds ...Cond) *SelectBuilder {
	b.where = append(b.where, conds...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var buf strings.Builder
	buf.WriteString("SELECT ")
	buf.WriteString(strings.Join(b.columns, ", "))
	buf.WriteString(" FROM ")
	buf.WriteString(b.table)
	for _, join := range b.joins {
		buf.WriteString(" JOIN ")
		buf.WriteString(join)
	}

	args := make([]any, 0, len(b.where))
	next := 1
	writeWhere(&buf, b.where, &args, &next)
	if len(b.orderBy) > 0 {
		buf.WriteString(" ORDER BY ")
		buf.WriteString(strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		buf.WriteString(" LIMIT ")
		buf.WriteString(strconv.Itoa(b.limit))
	}

	return buf.String(), args, nil
}

type InsertBuilder struct {
	table      string
	columns    []string
	rows       [][]any
	suffix     string
	suffixArgs []any
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// Suffix appends verbatim SQL after the VALUES list, with ?-placeholders
// renumbered into the statement's $n sequence. Used for ON CONFLICT and
// RETURNING clauses.
func (b *InsertBuilder) Suffix(sql string, args ...any) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	b.suffixArgs = args
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	var buf strings.Builder
	buf.WriteString("INSERT INTO ")
	buf.WriteString(b.table)
	buf.WriteString(" (")
	buf.WriteString(strings.Join(b.columns, ", "))
	buf.WriteString(") VALUES ")

	args := make([]any, 0, len(b.rows)*len(b.columns))
	next := 1
	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("(")
		for colIdx, value := range row {
			if colIdx > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(placeholder(next))
			args = append(args, value)
			next++
		}
		buf.WriteString(")")
	}

	if b.suffix != "" {
		buf.WriteString(" ")
		buf.WriteString(rewrite(b.suffix, b.suffixArgs, &args, &next))
	}

	return buf.String(), args, nil
}

type UpdateBuilder struct {
	table string
	sets  []Cond
	where []Cond
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, Eq(column, value))
	return b
}

func (b *UpdateBuilder) SetExpr(expr string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, Expr(expr, args...))
	return b
}

func (b *UpdateBuilder) Where(conds ...Cond) *UpdateBuilder {
	b.where = append(b.where, conds...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}

	var buf strings.Builder
	buf.WriteString("UPDATE ")
	buf.WriteString(b.table)
	buf.WriteString(" SET ")

	args := make([]any, 0, len(b.sets)+len(b.where))
	next := 1
	for i, set := range b.sets {
		if i > 0 {
			buf.WriteString(", ")
		}
		set.write(&buf, &args, &next)
	}
	writeWhere(&buf, b.where, &args, &next)

	return buf.String(), args, nil
}

func writeWhere(buf *strings.Builder, conds []Cond, args *[]any, next *int) {
	if len(conds) == 0 {
		return
	}
	buf.WriteString(" WHERE ")
	for i, c := range conds {
		if i > 0 {
			buf.WriteString(" AND ")
		}
		c.write(buf, args, next)
	}
}

func placeholder(i int) string {
	return "$" + strconv.Itoa(i)
}

// rewrite renumbers ?-placeholders in expr into the running $n sequence.
func rewrite(expr string, exprArgs []any, args *[]any, next *int) string {
	if len(exprArgs) == 0 {
		return expr
	}

	var out strings.Builder
	used := 0
	for i := 0; i < len(expr); i++ {
		if expr[i] == '?' && used < len(exprArgs) {
			out.WriteString(placeholder(*next))
			*args = append(*args, exprArgs[used])
			*next++
			used++
			continue
		}
		out.WriteByte(expr[i])
	}
	return out.String()
}
