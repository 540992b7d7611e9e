// internal/database/query.go
package database

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// query builds the URL of one PostgREST request against a table.
type query struct {
	table  string
	params url.Values
	orders []string
}

func from(table string) *query {
	return &query{table: table, params: url.Values{}}
}

// Select sets the projection. Whitespace is dropped so multi-line projections stay readable.
func (q *query) Select(columns string) *query {
	q.params.Set("select", strings.Join(strings.Fields(columns), ""))
	return q
}

func (q *query) Eq(column string, value any) *query {
	q.params.Add(column, "eq."+fmt.Sprint(value))
	return q
}

func (q *query) Gte(column string, t time.Time) *query {
	q.params.Add(column, "gte."+t.UTC().Format(time.RFC3339))
	return q
}

// Overlaps matches rows whose array column shares at least one element with values.
func (q *query) Overlaps(column string, values []string) *query {
	q.params.Add(column, "ov."+arrayLiteral(values))
	return q
}

// IsNull matches rows where column, or an embedded relation, is null.
func (q *query) IsNull(column string) *query {
	q.params.Add(column, "is.null")
	return q
}

// Or matches rows satisfying any of conditions, each written column.operator.value.
func (q *query) Or(conditions ...string) *query {
	q.params.Add("or", "("+strings.Join(conditions, ",")+")")
	return q
}

// ilike is an Or condition matching text anywhere in column, ignoring case.
func ilike(column, text string) string {
	return column + ".ilike." + quoteValue("*"+text+"*")
}

// contains is an Or condition matching array columns that hold every one of values.
func contains(column string, values []string) string {
	return column + ".cs." + arrayLiteral(values)
}

// literalEscaper escapes the two characters Postgres array literals and
// PostgREST quoted values treat specially. Everything else is passed as is.
var literalEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quoteValue(v string) string {
	return `"` + literalEscaper.Replace(v) + `"`
}

// arrayLiteral renders values as a Postgres array literal with every element quoted.
func arrayLiteral(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quoteValue(v)
	}
	return "{" + strings.Join(quoted, ",") + "}"
}

// TextSearch is a plain-language full-text match on column.
func (q *query) TextSearch(column, text string) *query {
	q.params.Add(column, "plfts."+text)
	return q
}

func (q *query) Order(column string, ascending bool) *query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.orders = append(q.orders, column+"."+dir)
	return q
}

// OrderEmbedded orders the rows of an embedded relation.
func (q *query) OrderEmbedded(relation, column string, ascending bool) *query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.params.Set(relation+".order", column+"."+dir)
	return q
}

// Range selects the inclusive row window [fromRow, toRow].
func (q *query) Range(fromRow, toRow int) *query {
	q.params.Set("offset", strconv.Itoa(fromRow))
	q.params.Set("limit", strconv.Itoa(toRow-fromRow+1))
	return q
}

func (q *query) Limit(n int) *query {
	q.params.Set("limit", strconv.Itoa(n))
	return q
}

func (q *query) OnConflict(columns ...string) *query {
	q.params.Set("on_conflict", strings.Join(columns, ","))
	return q
}

// Encode returns the table path and the encoded query string.
func (q *query) Encode() string {
	params := url.Values{}
	for k, v := range q.params {
		params[k] = v
	}
	if len(q.orders) > 0 {
		params.Set("order", strings.Join(q.orders, ","))
	}
	if len(params) == 0 {
		return q.table
	}
	return q.table + "?" + params.Encode()
}
