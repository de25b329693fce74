package app_test

import (
	"testing"

	"smartquiz/internal/app"
	"smartquiz/internal/domain"
)

func records(percentages ...int) []domain.ScoreRecord {
	recs := make([]domain.ScoreRecord, 0, len(percentages))
	for _, p := range percentages {
		recs = append(recs, domain.ScoreRecord{UserID: "u1", CorrectCount: p, TotalQuestions: 100})
	}
	return recs
}

func TestAggregatesOverEmptyRecords(t *testing.T) {
	if best := app.BestPercentage(nil); best != 0 {
		t.Fatalf("expected best 0 for no records, got %d", best)
	}
	if avg := app.AveragePercentage(nil); avg != 0 {
		t.Fatalf("expected average 0 for no records, got %d", avg)
	}
	if _, ok := app.Trend(nil); ok {
		t.Fatalf("expected no trend for no records")
	}
	if _, ok := app.Trend(records(80)); ok {
		t.Fatalf("expected no trend for a single record")
	}
}

func TestBestAverageAndTrend(t *testing.T) {
	recs := records(60, 80, 100)

	if best := app.BestPercentage(recs); best != 100 {
		t.Fatalf("expected best 100, got %d", best)
	}
	if avg := app.AveragePercentage(recs); avg != 80 {
		t.Fatalf("expected average 80, got %d", avg)
	}
	trend, ok := app.Trend(recs)
	if !ok || trend != 40 {
		t.Fatalf("expected trend +40, got %d (ok=%v)", trend, ok)
	}

	trend, ok = app.Trend(records(90, 50))
	if !ok || trend != -40 {
		t.Fatalf("expected trend -40, got %d (ok=%v)", trend, ok)
	}
}

func TestAverageRoundsHalfUp(t *testing.T) {
	// (50 + 65) / 2 = 57.5 rounds to 58
	if avg := app.AveragePercentage(records(50, 65)); avg != 58 {
		t.Fatalf("expected average 58, got %d", avg)
	}
}

func TestDistributeBucketsEveryRecordOnce(t *testing.T) {
	recs := records(95, 90, 89, 80, 79, 70, 69, 0)
	dist := app.Distribute(recs)

	if dist.Excellent != 2 {
		t.Fatalf("expected 2 excellent, got %d", dist.Excellent)
	}
	if dist.Good != 2 {
		t.Fatalf("expected 2 good, got %d", dist.Good)
	}
	if dist.Average != 2 {
		t.Fatalf("expected 2 average, got %d", dist.Average)
	}
	if dist.BelowAverage != 2 {
		t.Fatalf("expected 2 below average, got %d", dist.BelowAverage)
	}
	total := dist.Excellent + dist.Good + dist.Average + dist.BelowAverage
	if total != len(recs) {
		t.Fatalf("buckets must sum to record count, got %d of %d", total, len(recs))
	}
}

func TestGroupByUserPreservesOrder(t *testing.T) {
	recs := []domain.ScoreRecord{
		{UserID: "u1", CorrectCount: 1, TotalQuestions: 10},
		{UserID: "u2", CorrectCount: 2, TotalQuestions: 10},
		{UserID: "u1", CorrectCount: 3, TotalQuestions: 10},
	}
	grouped := app.GroupByUser(recs)

	if len(grouped) != 2 {
		t.Fatalf("expected 2 users, got %d", len(grouped))
	}
	u1 := grouped["u1"]
	if len(u1) != 2 || u1[0].CorrectCount != 1 || u1[1].CorrectCount != 3 {
		t.Fatalf("expected u1 records in attempt order, got %+v", u1)
	}
}

func TestPercentageRounding(t *testing.T) {
	if p := domain.Percentage(2, 3); p != 67 {
		t.Fatalf("expected 2/3 to round to 67, got %d", p)
	}
	if p := domain.Percentage(1, 3); p != 33 {
		t.Fatalf("expected 1/3 to round to 33, got %d", p)
	}
	if p := domain.Percentage(0, 0); p != 0 {
		t.Fatalf("expected 0 for an empty quiz, got %d", p)
	}
}
