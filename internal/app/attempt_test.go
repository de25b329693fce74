package app_test

import (
	"testing"
	"time"

	"smartquiz/internal/app"
	"smartquiz/internal/domain"
)

func testQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Prompt: "2+2?", Options: []string{"3", "4", "5", "6"}, CorrectOption: "4"},
		{ID: "q2", Prompt: "Capital of France?", Options: []string{"Lyon", "Nice", "Paris", "Lille"}, CorrectOption: "Paris"},
		{ID: "q3", Prompt: "Largest planet?", Options: []string{"Earth", "Mars", "Jupiter", "Venus"}, CorrectOption: "Jupiter"},
	}
}

func TestScoreCountsOnlyCorrectAnswers(t *testing.T) {
	questions := testQuestions()
	answers := map[string]string{
		"q1": "4",       // correct
		"q2": "Lyon",    // wrong
		"q3": "Jupiter", // correct
	}

	result := app.Score(questions, answers)
	if result.CorrectCount != 2 || result.TotalQuestions != 3 {
		t.Fatalf("expected 2/3, got %d/%d", result.CorrectCount, result.TotalQuestions)
	}
}

func TestScoreTreatsUnansweredAsIncorrect(t *testing.T) {
	result := app.Score(testQuestions(), map[string]string{"q1": "4"})
	if result.CorrectCount != 1 || result.TotalQuestions != 3 {
		t.Fatalf("expected 1/3, got %d/%d", result.CorrectCount, result.TotalQuestions)
	}
}

func TestSelectAnswerOverwrites(t *testing.T) {
	attempt := app.NewAttempt(testQuestions(), app.DefaultSubmitPolicy())

	if err := attempt.SelectAnswer("q1", "3"); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if err := attempt.SelectAnswer("q1", "4"); err != nil {
		t.Fatalf("re-select failed: %v", err)
	}
	if attempt.AnsweredCount() != 1 {
		t.Fatalf("expected 1 answer after overwrite, got %d", attempt.AnsweredCount())
	}
	if ans, _ := attempt.Answer("q1"); ans != "4" {
		t.Fatalf("expected last selection to win, got %q", ans)
	}

	result, err := attempt.Submit()
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.CorrectCount != 1 {
		t.Fatalf("expected overwrite to score as correct, got %d", result.CorrectCount)
	}
}

func TestSelectAnswerRejectsUnknownQuestion(t *testing.T) {
	attempt := app.NewAttempt(testQuestions(), app.DefaultSubmitPolicy())
	if err := attempt.SelectAnswer("nope", "4"); err != domain.ErrQuestionNotFound {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestAttemptLifecycle(t *testing.T) {
	attempt := app.NewAttempt(testQuestions(), app.DefaultSubmitPolicy())
	if attempt.State() != app.AttemptNotStarted {
		t.Fatalf("expected not_started, got %s", attempt.State())
	}

	if err := attempt.SelectAnswer("q1", "4"); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if attempt.State() != app.AttemptInProgress {
		t.Fatalf("expected in_progress after first answer, got %s", attempt.State())
	}

	if _, err := attempt.Submit(); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if attempt.State() != app.AttemptSubmitted {
		t.Fatalf("expected submitted, got %s", attempt.State())
	}

	if err := attempt.SelectAnswer("q2", "Paris"); err != domain.ErrAttemptSubmitted {
		t.Fatalf("expected ErrAttemptSubmitted after submit, got %v", err)
	}
	if _, err := attempt.Submit(); err != domain.ErrAttemptSubmitted {
		t.Fatalf("expected double submit to fail, got %v", err)
	}
}

func TestSubmitIncompleteIsAllowed(t *testing.T) {
	attempt := app.NewAttempt(testQuestions(), app.DefaultSubmitPolicy())
	if err := attempt.SelectAnswer("q2", "Paris"); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if !attempt.NeedsConfirmation() {
		t.Fatalf("expected confirmation prompt for an incomplete attempt")
	}

	result, err := attempt.Submit()
	if err != nil {
		t.Fatalf("incomplete submit should succeed: %v", err)
	}
	if result.CorrectCount != 1 || result.TotalQuestions != 3 {
		t.Fatalf("expected 1/3, got %d/%d", result.CorrectCount, result.TotalQuestions)
	}
}

func TestSubmitEmptyRespectsPolicy(t *testing.T) {
	attempt := app.NewAttempt(testQuestions(), app.SubmitPolicy{AllowEmpty: false, ConfirmIncomplete: true})
	if _, err := attempt.Submit(); err != domain.ErrEmptySubmission {
		t.Fatalf("expected ErrEmptySubmission, got %v", err)
	}

	attempt = app.NewAttempt(testQuestions(), app.DefaultSubmitPolicy())
	result, err := attempt.Submit()
	if err != nil {
		t.Fatalf("empty submit with default policy should succeed: %v", err)
	}
	if result.CorrectCount != 0 || result.TotalQuestions != 3 {
		t.Fatalf("expected 0/3, got %d/%d", result.CorrectCount, result.TotalQuestions)
	}
}

func TestElapsedIsFrozenAtSubmission(t *testing.T) {
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }
	attempt := app.NewAttemptWithClock(testQuestions(), app.DefaultSubmitPolicy(), now)

	if attempt.Elapsed() != 0 {
		t.Fatalf("expected zero elapsed before the first answer")
	}

	_ = attempt.SelectAnswer("q1", "4")
	clock = clock.Add(90 * time.Second)

	result, err := attempt.Submit()
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Elapsed != 90*time.Second {
		t.Fatalf("expected 90s elapsed, got %s", result.Elapsed)
	}

	clock = clock.Add(time.Hour)
	if attempt.Elapsed() != 90*time.Second {
		t.Fatalf("elapsed must be frozen after submit, got %s", attempt.Elapsed())
	}
}

func TestResetRequiresSubmission(t *testing.T) {
	attempt := app.NewAttempt(testQuestions(), app.DefaultSubmitPolicy())
	if err := attempt.Reset(); err != domain.ErrAttemptNotSubmitted {
		t.Fatalf("expected ErrAttemptNotSubmitted, got %v", err)
	}

	_ = attempt.SelectAnswer("q1", "4")
	if _, err := attempt.Submit(); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if err := attempt.Reset(); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if attempt.State() != app.AttemptNotStarted || attempt.AnsweredCount() != 0 {
		t.Fatalf("expected a clean attempt after reset")
	}
}
