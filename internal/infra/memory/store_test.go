package memory

import (
	"context"
	"testing"
	"time"

	"smartquiz/internal/domain"
)

func seededStore(t *testing.T) (*Store, domain.Identity) {
	t.Helper()
	store := NewStore()
	student, err := store.CreateUser(context.Background(), "student1", "student123", "John Doe", domain.RoleStudent)
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return store, student
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	store, student := seededStore(t)

	identity, err := store.Authenticate(ctx, "student1", "student123")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if identity.ID != student.ID || identity.Role != domain.RoleStudent {
		t.Fatalf("unexpected identity %+v", identity)
	}

	if _, err := store.Authenticate(ctx, "student1", "wrong"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := store.Authenticate(ctx, "ghost", "student123"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	store, _ := seededStore(t)

	if _, err := store.CreateUser(ctx, "student1", "other", "Other", domain.RoleStudent); err != domain.ErrUsernameTaken {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestQuestionCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	created, err := store.CreateQuestion(ctx, domain.Question{
		Prompt:        "2+2?",
		Options:       []string{"3", "4", "5", "6"},
		CorrectOption: "4",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected a generated id")
	}

	if count, _ := store.CountQuestions(ctx); count != 1 {
		t.Fatalf("expected 1 question, got %d", count)
	}

	if err := store.DeleteQuestion(ctx, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := store.DeleteQuestion(ctx, created.ID); err != domain.ErrQuestionNotFound {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
	if count, _ := store.CountQuestions(ctx); count != 0 {
		t.Fatalf("expected 0 questions, got %d", count)
	}
}

func TestScoresKeepAttemptOrder(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	store := NewStoreWithClock(func() time.Time {
		ts = ts.Add(time.Minute)
		return ts
	})
	student, err := store.CreateUser(ctx, "student1", "student123", "John Doe", domain.RoleStudent)
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	for _, correct := range []int{4, 7, 9} {
		if _, err := store.SaveScore(ctx, student.ID, correct, 10); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	records, err := store.ScoresForUser(ctx, student.ID)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.Before(records[i-1].Timestamp) {
			t.Fatalf("records must be in attempt order")
		}
	}

	best, _ := store.BestForUser(ctx, student.ID)
	if best != 90 {
		t.Fatalf("expected best 90, got %d", best)
	}
}

func TestSaveScoreRequiresKnownUser(t *testing.T) {
	store := NewStore()
	if _, err := store.SaveScore(context.Background(), "ghost", 5, 10); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestListStudentsFiltersAdmins(t *testing.T) {
	ctx := context.Background()
	store, _ := seededStore(t)
	if _, err := store.CreateUser(ctx, "admin", "admin123", "Administrator", domain.RoleAdmin); err != nil {
		t.Fatalf("create admin failed: %v", err)
	}

	students, err := store.ListStudents(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(students) != 1 || students[0].Username != "student1" {
		t.Fatalf("expected only student1, got %+v", students)
	}
}
