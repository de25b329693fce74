package domain

import (
	govalidator "github.com/go-playground/validator/v10"
)

// validate is the shared validator instance; it is stateless after construction.
var validate = govalidator.New(govalidator.WithRequiredStructEnabled())

// ValidateQuestion checks a question before it is allowed anywhere near the
// gateway: all fields present, exactly four distinct options, and the correct
// answer equal to one of them. This is the single enforcement point; questions
// are not re-validated after creation.
func ValidateQuestion(q Question) error {
	if err := validate.Struct(q); err != nil {
		return firstFieldError(err)
	}

	seen := make(map[string]struct{}, OptionCount)
	for _, opt := range q.Options {
		if _, dup := seen[opt]; dup {
			return &ValidationError{Field: "options", Reason: "options must be distinct"}
		}
		seen[opt] = struct{}{}
	}
	if _, ok := seen[q.CorrectOption]; !ok {
		return &ValidationError{Field: "correctAnswer", Reason: "correct answer must match exactly one of the options"}
	}
	return nil
}

// ValidateCredentials checks a login form for presence of both fields.
func ValidateCredentials(c Credentials) error {
	if err := validate.Struct(c); err != nil {
		return firstFieldError(err)
	}
	return nil
}

func firstFieldError(err error) error {
	if ve, ok := err.(govalidator.ValidationErrors); ok && len(ve) > 0 {
		fe := ve[0]
		return &ValidationError{Field: fe.Field(), Reason: "failed " + fe.Tag() + " check"}
	}
	return &ValidationError{Reason: err.Error()}
}
