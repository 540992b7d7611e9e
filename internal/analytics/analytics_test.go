package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stackit/internal/models"
)

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestMonthlyCountsKeepsEncounterOrder(t *testing.T) {
	times := []time.Time{
		date(2024, 1, 15, 0),
		date(2023, 12, 2, 0),
		date(2024, 1, 31, 23),
	}

	got := MonthlyCounts(times)
	assert.Equal(t, []MonthCount{{"2024-01", 2}, {"2023-12", 1}}, got)
	assert.Equal(t, []MonthCount{{"2023-12", 1}, {"2024-01", 2}}, SortMonthly(got))
	assert.Equal(t, "2024-01", got[0].Month, "SortMonthly must not reorder its input")
}

func TestMonthlyCountsUsesUTC(t *testing.T) {
	// 23:30 on Jan 31 in UTC-5 is already February in UTC
	est := time.FixedZone("EST", -5*3600)
	got := MonthlyCounts([]time.Time{time.Date(2024, 1, 31, 23, 30, 0, 0, est)})
	assert.Equal(t, []MonthCount{{"2024-02", 1}}, got)
}

func TestMonthlyCountsEmpty(t *testing.T) {
	assert.Equal(t, []MonthCount{}, MonthlyCounts(nil))
}

func TestStatusHistogram(t *testing.T) {
	got := StatusHistogram([]string{"open", "", "closed", "open", " "})
	assert.Equal(t, []StatusCount{{"open", 2}, {DefaultStatus, 1}, {"closed", 1}, {" ", 1}}, got)
}

func TestReputationHistogram(t *testing.T) {
	got := ReputationHistogram([]int{0, 100, 101, 1000, 1001})

	counts := map[string]int{}
	for _, b := range got {
		counts[b.Range] = b.Count
	}
	assert.Equal(t, map[string]int{"0-100": 2, "101-500": 1, "501-1000": 1, "1001+": 1}, counts)
	assert.Equal(t, math.MaxInt, got[3].Max)
}

func TestReputationHistogramListsEveryBucket(t *testing.T) {
	got := ReputationHistogram(nil)
	assert.Len(t, got, 4)
	for _, b := range got {
		assert.Zero(t, b.Count, b.Range)
	}

	got = ReputationHistogram([]int{-5, 50})
	assert.Equal(t, 1, got[0].Count, "negative reputation falls outside every range")
	assert.Zero(t, ReputationRanges[0].Count, "package ranges are never mutated")
}

func TestDailyActivitySortsAscending(t *testing.T) {
	got := DailyActivity([]time.Time{
		date(2024, 3, 10, 9),
		date(2024, 3, 2, 1),
		date(2024, 3, 10, 22),
		date(2024, 2, 28, 12),
	})
	assert.Equal(t, []DayCount{{"2024-02-28", 1}, {"2024-03-02", 1}, {"2024-03-10", 2}}, got)
}

func TestTagFrequency(t *testing.T) {
	got := TagFrequency([][]string{{"React", "JWT"}, {"React"}, {}})
	assert.Equal(t, []models.TagCount{{Name: "React", Count: 2}, {Name: "JWT", Count: 1}}, got)
}

func TestTagFrequencyTiesKeepFirstSeenOrder(t *testing.T) {
	got := TagFrequency([][]string{{"go", "sql"}, {"rust"}, {"sql", "go", "rust", "css"}})
	assert.Equal(t, []models.TagCount{
		{Name: "go", Count: 2},
		{Name: "sql", Count: 2},
		{Name: "rust", Count: 2},
		{Name: "css", Count: 1},
	}, got)
}

func TestFilterTags(t *testing.T) {
	counts := []models.TagCount{{Name: "React", Count: 3}, {Name: "react-native", Count: 1}, {Name: "go", Count: 1}}
	assert.Equal(t, counts[:2], FilterTags(counts, " REACT"))
	assert.Equal(t, counts, FilterTags(counts, ""))
	assert.Empty(t, FilterTags(counts, "python"))
}

func TestTotalsAndAverage(t *testing.T) {
	rows := []*models.QuestionActivity{
		{ViewsCount: 10, VotesCount: 2},
		{ViewsCount: 5, VotesCount: -1},
	}
	assert.Equal(t, 15, TotalViews(rows))
	assert.Equal(t, 1, TotalVotes(rows))
	assert.Zero(t, TotalViews(nil))

	assert.InDelta(t, 200.0, AverageReputation([]int{100, 200, 300}), 1e-9)
	assert.Zero(t, AverageReputation(nil))
}
