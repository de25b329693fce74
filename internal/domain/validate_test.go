package domain

import "testing"

func validQuestion() Question {
	return Question{
		Prompt:        "What is 2 + 2?",
		Options:       []string{"3", "4", "5", "6"},
		CorrectOption: "4",
	}
}

func TestValidateQuestionAccepts(t *testing.T) {
	if err := ValidateQuestion(validQuestion()); err != nil {
		t.Fatalf("expected a valid question, got %v", err)
	}
}

func TestValidateQuestionRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Question)
	}{
		{"empty prompt", func(q *Question) { q.Prompt = "" }},
		{"too few options", func(q *Question) { q.Options = q.Options[:3] }},
		{"too many options", func(q *Question) { q.Options = append(q.Options, "7") }},
		{"blank option", func(q *Question) { q.Options[2] = "" }},
		{"duplicate options", func(q *Question) { q.Options[0] = "4" }},
		{"correct not among options", func(q *Question) { q.CorrectOption = "42" }},
		{"empty correct option", func(q *Question) { q.CorrectOption = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := validQuestion()
			tc.mutate(&q)
			err := ValidateQuestion(q)
			if !IsValidation(err) {
				t.Fatalf("expected a validation error, got %v", err)
			}
		})
	}
}

func TestValidateCredentials(t *testing.T) {
	if err := ValidateCredentials(Credentials{Username: "student1", Password: "student123"}); err != nil {
		t.Fatalf("expected valid credentials, got %v", err)
	}
	if err := ValidateCredentials(Credentials{Username: "", Password: "x"}); !IsValidation(err) {
		t.Fatalf("expected a validation error for a blank username, got %v", err)
	}
	if err := ValidateCredentials(Credentials{Username: "x", Password: ""}); !IsValidation(err) {
		t.Fatalf("expected a validation error for a blank password, got %v", err)
	}
}
