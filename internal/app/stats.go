package app

import (
	"math"

	"smartquiz/internal/domain"
)

// Aggregations over score records. Empty input is a first-class case ("no
// attempts yet"), never an error. Callers supply records in attempt order;
// nothing here re-sorts by timestamp.

// BestPercentage returns the highest percentage over records, or 0 for none.
func BestPercentage(records []domain.ScoreRecord) int {
	best := 0
	for _, r := range records {
		if p := r.Percentage(); p > best {
			best = p
		}
	}
	return best
}

// AveragePercentage returns the rounded mean percentage, or 0 for none.
func AveragePercentage(records []domain.ScoreRecord) int {
	if len(records) == 0 {
		return 0
	}
	sum := 0
	for _, r := range records {
		sum += r.Percentage()
	}
	return int(math.Round(float64(sum) / float64(len(records))))
}

// Trend returns last minus first percentage over attempt order. The second
// return is false when fewer than two records exist.
func Trend(records []domain.ScoreRecord) (int, bool) {
	if len(records) < 2 {
		return 0, false
	}
	return records[len(records)-1].Percentage() - records[0].Percentage(), true
}

// Distribution buckets records by percentage band.
type Distribution struct {
	Excellent    int // >= 90
	Good         int // [80, 90)
	Average      int // [70, 80)
	BelowAverage int // < 70
}

// Distribute buckets every record exactly once, so the counts always sum to
// len(records).
func Distribute(records []domain.ScoreRecord) Distribution {
	var d Distribution
	for _, r := range records {
		switch p := r.Percentage(); {
		case p >= 90:
			d.Excellent++
		case p >= 80:
			d.Good++
		case p >= 70:
			d.Average++
		default:
			d.BelowAverage++
		}
	}
	return d
}

// GroupByUser splits records by user id, preserving per-user insertion order.
// Used by the admin aggregate view.
func GroupByUser(records []domain.ScoreRecord) map[string][]domain.ScoreRecord {
	grouped := make(map[string][]domain.ScoreRecord)
	for _, r := range records {
		grouped[r.UserID] = append(grouped[r.UserID], r)
	}
	return grouped
}
