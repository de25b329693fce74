package domain

import (
	"math"
	"time"
)

// Role identifies which portal a user belongs to.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleStudent Role = "STUDENT"
)

// Valid reports whether the role is one of the known variants.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStudent
}

// Identity is an authenticated user. It is created at login and discarded at
// logout; nothing mutates it in between.
type Identity struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
}

// OptionCount is the fixed number of choices per question.
const OptionCount = 4

// Question is a multiple-choice question with exactly one correct option.
// CorrectOption holds the option text itself, not an index.
type Question struct {
	ID            string   `json:"id"`
	Prompt        string   `json:"prompt" validate:"required"`
	Options       []string `json:"options" validate:"required,len=4,dive,required"`
	CorrectOption string   `json:"correctAnswer" validate:"required"`
}

// ScoreRecord is the persisted outcome of one completed quiz attempt.
// Immutable once created.
type ScoreRecord struct {
	ID             string    `json:"id,omitempty"`
	UserID         string    `json:"userId"`
	CorrectCount   int       `json:"correctCount"`
	TotalQuestions int       `json:"totalQuestions"`
	Timestamp      time.Time `json:"attemptedAt"`
}

// Percentage derives the rounded percentage score. Zero questions yields 0.
func (r ScoreRecord) Percentage() int {
	return Percentage(r.CorrectCount, r.TotalQuestions)
}

// Percentage computes round(100 * correct / total), or 0 when total is zero.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// ScoreResult is the outcome of a submitted attempt before it is persisted.
type ScoreResult struct {
	CorrectCount   int
	TotalQuestions int
	Elapsed        time.Duration
}

// Percentage derives the rounded percentage for the result.
func (r ScoreResult) Percentage() int {
	return Percentage(r.CorrectCount, r.TotalQuestions)
}

// Credentials is a login form.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
