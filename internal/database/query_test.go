package database

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeQuery(t *testing.T, encoded string) (string, url.Values) {
	t.Helper()
	path, raw, _ := strings.Cut(encoded, "?")
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return path, values
}

func TestQueryEncode(t *testing.T) {
	since := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))

	tests := []struct {
		name     string
		build    func() *query
		wantPath string
		want     url.Values
	}{
		{
			name:     "bare table",
			build:    func() *query { return from(TableTags) },
			wantPath: "tags",
			want:     url.Values{},
		},
		{
			name: "projection whitespace is removed",
			build: func() *query {
				return from(TableQuestions).Select(`*,
					profiles:author_id(username, display_name)`)
			},
			wantPath: "questions",
			want:     url.Values{"select": {"*,profiles:author_id(username,display_name)"}},
		},
		{
			name: "range becomes offset and limit",
			build: func() *query {
				return from(TableQuestions).Order("created_at", false).Range(20, 39)
			},
			wantPath: "questions",
			want: url.Values{
				"order":  {"created_at.desc"},
				"offset": {"20"},
				"limit":  {"20"},
			},
		},
		{
			name: "filters",
			build: func() *query {
				return from(TableQuestions).
					Eq("flagged", true).
					Gte("created_at", since).
					Overlaps("tags", []string{"react", "node js"}).
					TextSearch("title", "jwt auth")
			},
			wantPath: "questions",
			want: url.Values{
				"flagged":    {"eq.true"},
				"created_at": {"gte.2024-03-01T17:00:00Z"},
				"tags":       {`ov.{"react","node js"}`},
				"title":      {"plfts.jwt auth"},
			},
		},
		{
			name: "keyword search across columns",
			build: func() *query {
				return from(TableQuestions).
					Or(ilike("title", "jwt, auth"), contains("tags", []string{"jwt"})).
					IsNull("answers")
			},
			wantPath: "questions",
			want: url.Values{
				"or":      {`(title.ilike."*jwt, auth*",tags.cs.{"jwt"})`},
				"answers": {"is.null"},
			},
		},
		{
			name: "multiple orders and embedded order",
			build: func() *query {
				return from(TableQuestions).
					Order("votes_count", false).
					Order("created_at", true).
					OrderEmbedded("answers", "created_at", true)
			},
			wantPath: "questions",
			want: url.Values{
				"order":         {"votes_count.desc,created_at.asc"},
				"answers.order": {"created_at.asc"},
			},
		},
		{
			name: "upsert conflict target",
			build: func() *query {
				return from(TableVotes).OnConflict("user_id", "target_id", "target_type")
			},
			wantPath: "votes",
			want:     url.Values{"on_conflict": {"user_id,target_id,target_type"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, values := decodeQuery(t, tt.build().Encode())
			assert.Equal(t, tt.wantPath, path)
			assert.Equal(t, tt.want, values)
		})
	}
}

func TestQueryEncodeDoesNotMutateBuilder(t *testing.T) {
	q := from(TableQuestions).Order("created_at", false)
	first := q.Encode()
	second := q.Encode()
	assert.Equal(t, first, second)
	assert.Empty(t, q.params.Get("order"))
}

func TestArrayLiteral(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"plain", []string{"go", "sql"}, `{"go","sql"}`},
		{"control characters pass through", []string{"a\tb", "x\u00a0y"}, "{\"a\tb\",\"x\u00a0y\"}"},
		{"quote and backslash are escaped", []string{`say "hi"`, `c:\dir`}, `{"say \"hi\"","c:\\dir"}`},
		{"empty", nil, "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, arrayLiteral(tt.values))
		})
	}
}
