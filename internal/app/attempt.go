package app

import (
	"time"

	"smartquiz/internal/domain"
)

// AttemptState tracks the quiz engine lifecycle.
type AttemptState int

const (
	AttemptNotStarted AttemptState = iota
	AttemptInProgress
	AttemptSubmitted
)

func (s AttemptState) String() string {
	switch s {
	case AttemptNotStarted:
		return "not_started"
	case AttemptInProgress:
		return "in_progress"
	case AttemptSubmitted:
		return "submitted"
	}
	return "unknown"
}

// SubmitPolicy governs incomplete submissions. The original behavior is
// confirm-then-allow, so both flags default to true via DefaultSubmitPolicy.
type SubmitPolicy struct {
	// AllowEmpty permits submitting with zero recorded answers.
	AllowEmpty bool
	// ConfirmIncomplete asks the shell to confirm when not every question
	// has an answer. The engine only reports the condition; it never blocks.
	ConfirmIncomplete bool
}

// DefaultSubmitPolicy matches the original confirm-but-allow behavior.
func DefaultSubmitPolicy() SubmitPolicy {
	return SubmitPolicy{AllowEmpty: true, ConfirmIncomplete: true}
}

// Attempt is one in-progress pass over a question snapshot. It owns the answer
// map exclusively; the snapshot itself is read-only.
type Attempt struct {
	questions []domain.Question
	answers   map[string]string
	state     AttemptState
	startedAt time.Time
	elapsed   time.Duration
	policy    SubmitPolicy
	now       func() time.Time
}

// NewAttempt starts a fresh attempt over the given snapshot.
func NewAttempt(questions []domain.Question, policy SubmitPolicy) *Attempt {
	return NewAttemptWithClock(questions, policy, time.Now)
}

// NewAttemptWithClock allows deterministic timestamps in tests.
func NewAttemptWithClock(questions []domain.Question, policy SubmitPolicy, now func() time.Time) *Attempt {
	return &Attempt{
		questions: questions,
		answers:   make(map[string]string),
		policy:    policy,
		now:       now,
	}
}

// State returns the current lifecycle state.
func (a *Attempt) State() AttemptState { return a.state }

// Total returns the number of questions in the snapshot.
func (a *Attempt) Total() int { return len(a.questions) }

// AnsweredCount returns how many questions currently have an answer.
func (a *Attempt) AnsweredCount() int { return len(a.answers) }

// Questions exposes the read-only snapshot for rendering.
func (a *Attempt) Questions() []domain.Question { return a.questions }

// Answer returns the recorded answer for a question, if any.
func (a *Attempt) Answer(questionID string) (string, bool) {
	ans, ok := a.answers[questionID]
	return ans, ok
}

// SelectAnswer records or overwrites the answer for a question. The first
// selection starts the elapsed-time clock. Re-selecting overwrites.
func (a *Attempt) SelectAnswer(questionID, option string) error {
	if a.state == AttemptSubmitted {
		return domain.ErrAttemptSubmitted
	}
	if !a.hasQuestion(questionID) {
		return domain.ErrQuestionNotFound
	}
	if a.state == AttemptNotStarted {
		a.state = AttemptInProgress
		a.startedAt = a.now()
	}
	a.answers[questionID] = option
	return nil
}

// NeedsConfirmation reports whether the shell should confirm before submitting.
func (a *Attempt) NeedsConfirmation() bool {
	return a.policy.ConfirmIncomplete && a.state != AttemptSubmitted && len(a.answers) < len(a.questions)
}

// Submit scores the attempt and moves it to AttemptSubmitted. Once invoked the
// transition is unconditional; incomplete answers never fail a submission,
// only the empty-submit policy can refuse one.
func (a *Attempt) Submit() (domain.ScoreResult, error) {
	if a.state == AttemptSubmitted {
		return domain.ScoreResult{}, domain.ErrAttemptSubmitted
	}
	if len(a.answers) == 0 && !a.policy.AllowEmpty {
		return domain.ScoreResult{}, domain.ErrEmptySubmission
	}

	result := Score(a.questions, a.answers)
	if a.state == AttemptInProgress {
		result.Elapsed = a.now().Sub(a.startedAt)
	}
	a.elapsed = result.Elapsed
	a.state = AttemptSubmitted
	return result, nil
}

// Elapsed returns wall-clock time since the first answer, frozen at submission.
// Informational only; it never affects scoring.
func (a *Attempt) Elapsed() time.Duration {
	switch a.state {
	case AttemptInProgress:
		return a.now().Sub(a.startedAt)
	case AttemptSubmitted:
		return a.elapsed
	}
	return 0
}

// Reset clears all in-progress state. Valid only after submission.
func (a *Attempt) Reset() error {
	if a.state != AttemptSubmitted {
		return domain.ErrAttemptNotSubmitted
	}
	a.answers = make(map[string]string)
	a.state = AttemptNotStarted
	a.startedAt = time.Time{}
	a.elapsed = 0
	return nil
}

func (a *Attempt) hasQuestion(questionID string) bool {
	for i := range a.questions {
		if a.questions[i].ID == questionID {
			return true
		}
	}
	return false
}

// Score is the pure scoring function: it counts questions whose recorded
// answer equals the correct option. Absent answers count as incorrect.
// Reproducible given the same inputs; no clock or network involved.
func Score(questions []domain.Question, answers map[string]string) domain.ScoreResult {
	correct := 0
	for i := range questions {
		if ans, ok := answers[questions[i].ID]; ok && ans == questions[i].CorrectOption {
			correct++
		}
	}
	return domain.ScoreResult{CorrectCount: correct, TotalQuestions: len(questions)}
}
