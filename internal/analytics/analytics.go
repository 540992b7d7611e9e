// Package analytics turns fetched rows into chart-ready aggregates. Every function is
// pure and synchronous; timestamps are bucketed in UTC.
package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"stackit/internal/models"
)

const (
	monthLayout = "2006-01"
	dayLayout   = "2006-01-02"

	// DefaultStatus is reported for rows without a status.
	DefaultStatus = "active"
)

// MonthCount is the number of rows created in one YYYY-MM month.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// StatusCount is the number of questions in one status.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// ReputationBucket counts profiles whose reputation lies in [Min, Max]. Max is
// math.MaxInt for the open-ended top bucket.
type ReputationBucket struct {
	Range string `json:"range"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Count int    `json:"count"`
}

// DayCount is the number of rows created on one YYYY-MM-DD day.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// ReputationRanges are the closed ranges of ReputationHistogram, lowest first.
var ReputationRanges = []ReputationBucket{
	{Range: "0-100", Min: 0, Max: 100},
	{Range: "101-500", Min: 101, Max: 500},
	{Range: "501-1000", Min: 501, Max: 1000},
	{Range: "1001+", Min: 1001, Max: math.MaxInt},
}

// MonthlyCounts buckets timestamps by month. Buckets appear in the order their first
// timestamp is encountered; use SortMonthly for chronological order.
func MonthlyCounts(times []time.Time) []MonthCount {
	index := make(map[string]int)
	out := []MonthCount{}
	for _, t := range times {
		key := t.UTC().Format(monthLayout)
		if i, ok := index[key]; ok {
			out[i].Count++
			continue
		}
		index[key] = len(out)
		out = append(out, MonthCount{Month: key, Count: 1})
	}
	return out
}

// SortMonthly returns a copy of counts in ascending month order.
func SortMonthly(counts []MonthCount) []MonthCount {
	out := append([]MonthCount{}, counts...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Month < out[j].Month
	})
	return out
}

// StatusHistogram counts statuses in encounter order. An empty status counts as DefaultStatus.
func StatusHistogram(statuses []string) []StatusCount {
	index := make(map[string]int)
	out := []StatusCount{}
	for _, s := range statuses {
		if s == "" {
			s = DefaultStatus
		}
		if i, ok := index[s]; ok {
			out[i].Count++
			continue
		}
		index[s] = len(out)
		out = append(out, StatusCount{Status: s, Count: 1})
	}
	return out
}

// ReputationHistogram counts values into every ReputationRanges bucket that contains
// them. All buckets are returned, empty ones with a zero count.
func ReputationHistogram(values []int) []ReputationBucket {
	out := append([]ReputationBucket{}, ReputationRanges...)
	for _, v := range values {
		for i := range out {
			if v >= out[i].Min && v <= out[i].Max {
				out[i].Count++
			}
		}
	}
	return out
}

// DailyActivity buckets timestamps by day, earliest day first.
func DailyActivity(times []time.Time) []DayCount {
	counts := make(map[string]int)
	for _, t := range times {
		counts[t.UTC().Format(dayLayout)]++
	}
	out := make([]DayCount, 0, len(counts))
	for day, n := range counts {
		out = append(out, DayCount{Date: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}

// TagFrequency counts tag occurrences across tag lists, most frequent first. Ties keep
// the order in which tags were first seen. Tags are compared exactly.
func TagFrequency(tagLists [][]string) []models.TagCount {
	index := make(map[string]int)
	out := []models.TagCount{}
	for _, tags := range tagLists {
		for _, tag := range tags {
			if i, ok := index[tag]; ok {
				out[i].Count++
				continue
			}
			index[tag] = len(out)
			out = append(out, models.TagCount{Name: tag, Count: 1})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// FilterTags keeps the counts whose name contains substr, ignoring case.
func FilterTags(counts []models.TagCount, substr string) []models.TagCount {
	substr = strings.ToLower(strings.TrimSpace(substr))
	if substr == "" {
		return counts
	}
	out := []models.TagCount{}
	for _, c := range counts {
		if strings.Contains(strings.ToLower(c.Name), substr) {
			out = append(out, c)
		}
	}
	return out
}

func TotalViews(rows []*models.QuestionActivity) int {
	total := 0
	for _, r := range rows {
		total += r.ViewsCount
	}
	return total
}

func TotalVotes(rows []*models.QuestionActivity) int {
	total := 0
	for _, r := range rows {
		total += r.VotesCount
	}
	return total
}

// AverageReputation is the arithmetic mean of values, or 0 when there are none.
func AverageReputation(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, err := stats.Mean(stats.LoadRawData(values))
	if err != nil {
		return 0
	}
	return mean
}
