package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"smartquiz/internal/domain"
)

// ViewKind enumerates the screens the shell can render.
type ViewKind int

const (
	ViewLoading ViewKind = iota
	ViewError
	ViewHome
	ViewLogin
	ViewAdminHome
	ViewStudentHome
)

func (k ViewKind) String() string {
	switch k {
	case ViewLoading:
		return "loading"
	case ViewError:
		return "error"
	case ViewHome:
		return "home"
	case ViewLogin:
		return "login"
	case ViewAdminHome:
		return "admin_home"
	case ViewStudentHome:
		return "student_home"
	}
	return "unknown"
}

// View is the current screen. Portal is set only for ViewLogin and names the
// role that portal is gating.
type View struct {
	Kind   ViewKind
	Portal domain.Role
}

// DefaultMinSplash is the bootstrap pacing floor: the loading screen stays up
// at least this long even when the fetch finishes sooner. UX pacing, not a
// performance knob.
const DefaultMinSplash = 2 * time.Second

// Options tunes a session. Zero values fall back to defaults.
type Options struct {
	// MinSplash overrides the bootstrap pacing floor.
	MinSplash time.Duration
	// SubmitPolicy governs incomplete quiz submissions.
	SubmitPolicy SubmitPolicy
	// QuestionTTL is the question snapshot cache TTL.
	QuestionTTL time.Duration
	Logger      zerolog.Logger
}

// Session owns all client-side orchestration state: the active view, the
// authenticated identity, the bootstrap user list, and the score cache. Every
// mutation goes through a named transition method.
//
// A session is driven by one user at a time: transitions are triggered by
// discrete user actions or completed gateway calls, so there is no locking
// here by design of the concurrency model.
type Session struct {
	gateway Gateway
	scores  ScoreCache
	bank    *QuestionBank
	log     zerolog.Logger

	minSplash time.Duration
	policy    SubmitPolicy

	view      View
	identity  *domain.Identity
	users     []domain.Identity
	lastError string

	now   func() time.Time
	sleep func(time.Duration)
}

// NewSession builds a session starting in the loading view.
func NewSession(gateway Gateway, scores ScoreCache, opts Options) *Session {
	return NewSessionWithClock(gateway, scores, opts, time.Now, time.Sleep)
}

// NewSessionWithClock is test-only: it injects the clock and the pacing sleep.
func NewSessionWithClock(gateway Gateway, scores ScoreCache, opts Options, now func() time.Time, sleep func(time.Duration)) *Session {
	minSplash := opts.MinSplash
	if minSplash == 0 {
		minSplash = DefaultMinSplash
	}
	questionTTL := opts.QuestionTTL
	if questionTTL == 0 {
		questionTTL = 10 * time.Minute
	}
	return &Session{
		gateway:   gateway,
		scores:    scores,
		bank:      NewQuestionBank(gateway, questionTTL),
		log:       opts.Logger,
		minSplash: minSplash,
		policy:    opts.SubmitPolicy,
		view:      View{Kind: ViewLoading},
		now:       now,
		sleep:     sleep,
	}
}

// CurrentView returns the active view after enforcing the state invariant.
func (s *Session) CurrentView() View {
	s.guard()
	return s.view
}

// Identity returns the authenticated identity, or nil.
func (s *Session) Identity() *domain.Identity { return s.identity }

// LastError returns the message behind the ERROR view.
func (s *Session) LastError() string { return s.lastError }

// Users returns the bootstrap user list.
func (s *Session) Users() []domain.Identity { return s.users }

// Students filters the bootstrap list down to student identities.
func (s *Session) Students() []domain.Identity {
	students := make([]domain.Identity, 0, len(s.users))
	for _, u := range s.users {
		if u.Role == domain.RoleStudent {
			students = append(students, u)
		}
	}
	return students
}

// Bootstrap performs the initial data fetch and resolves LOADING into HOME or
// ERROR. The transition never lands before the pacing floor, and the floor
// itself never delays it further: both outcomes resolve at
// max(fetch duration, floor).
func (s *Session) Bootstrap(ctx context.Context) {
	s.view = View{Kind: ViewLoading}
	s.lastError = ""
	start := s.now()

	users, err := s.gateway.ListUsers(ctx)

	if remaining := s.minSplash - s.now().Sub(start); remaining > 0 {
		s.sleep(remaining)
	}

	if err != nil {
		s.lastError = "Failed to connect to server: " + UserMessage(err)
		s.view = View{Kind: ViewError}
		s.log.Error().Err(err).Msg("bootstrap failed")
		return
	}
	s.users = users
	s.view = View{Kind: ViewHome}
	s.log.Info().Int("users", len(users)).Msg("bootstrap complete")
}

// Retry re-runs the bootstrap. Valid only from the ERROR view.
func (s *Session) Retry(ctx context.Context) error {
	if s.view.Kind != ViewError {
		return fmt.Errorf("retry is only valid from the error view, not %s", s.view.Kind)
	}
	s.Bootstrap(ctx)
	return nil
}

// OpenPortal moves HOME to the role-gated login view.
func (s *Session) OpenPortal(role domain.Role) error {
	s.guard()
	if s.view.Kind != ViewHome {
		return fmt.Errorf("portal selection is only valid from home, not %s", s.view.Kind)
	}
	if !role.Valid() {
		return &domain.ValidationError{Field: "role", Reason: "unknown role"}
	}
	s.view = View{Kind: ViewLogin, Portal: role}
	return nil
}

// Back returns from a login view to home.
func (s *Session) Back() {
	if s.view.Kind == ViewLogin {
		s.view = View{Kind: ViewHome}
	}
}

// Login authenticates against the gateway and, when the returned identity
// matches the portal's gating role, enters the role home view. On any failure
// the view remains LOGIN(role); use UserMessage for the surfaced text.
func (s *Session) Login(ctx context.Context, username, password string) error {
	s.guard()
	if s.view.Kind != ViewLogin {
		return fmt.Errorf("login is only valid from a login view, not %s", s.view.Kind)
	}
	creds := domain.Credentials{Username: username, Password: password}
	if err := domain.ValidateCredentials(creds); err != nil {
		return err
	}

	identity, err := s.gateway.Authenticate(ctx, creds)
	if err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("login failed")
		return err
	}
	if identity.Role != s.view.Portal {
		s.log.Warn().
			Str("expected", string(s.view.Portal)).
			Str("got", string(identity.Role)).
			Msg("login refused: wrong portal")
		return fmt.Errorf("%w: expected %s", domain.ErrRoleMismatch, s.view.Portal)
	}

	s.identity = &identity
	switch identity.Role {
	case domain.RoleAdmin:
		s.view = View{Kind: ViewAdminHome}
	case domain.RoleStudent:
		s.view = View{Kind: ViewStudentHome}
	}
	s.log.Info().Str("username", identity.Username).Str("role", string(identity.Role)).Msg("login ok")

	// Secondary data: score views degrade to empty rather than failing login.
	s.RefreshScores(ctx)
	return nil
}

// Logout clears the identity and the local score cache and returns home.
func (s *Session) Logout() {
	s.identity = nil
	s.scores.Clear()
	s.lastError = ""
	s.view = View{Kind: ViewHome}
}

// RefreshScores reconciles the score cache from the authoritative store:
// all records for an admin, own records for a student. Fetch failures are
// non-fatal; the cache keeps its current contents and the stale flag stands.
func (s *Session) RefreshScores(ctx context.Context) {
	if s.identity == nil {
		return
	}
	switch s.identity.Role {
	case domain.RoleAdmin:
		records, err := s.gateway.AllScores(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("score refresh failed, keeping cached view")
			return
		}
		s.scores.ReplaceAll(records)
	case domain.RoleStudent:
		records, err := s.gateway.ScoresForUser(ctx, s.identity.ID)
		if err != nil {
			s.log.Warn().Err(err).Msg("score refresh failed, keeping cached view")
			return
		}
		s.scores.ReplaceUser(s.identity.ID, records)
	}
}

// MyScores returns the cached records for the logged-in student.
func (s *Session) MyScores() []domain.ScoreRecord {
	if s.identity == nil {
		return nil
	}
	return s.scores.ForUser(s.identity.ID)
}

// ScoresByUser returns all cached records grouped by user, in received order.
// Admin aggregate view only.
func (s *Session) ScoresByUser() map[string][]domain.ScoreRecord {
	return GroupByUser(s.scores.All())
}

// ScoresStale reports whether an optimistic write still awaits reconciliation.
func (s *Session) ScoresStale() bool { return s.scores.Stale() }

// StartQuiz fetches the question snapshot and opens a fresh attempt.
// Student home only.
func (s *Session) StartQuiz(ctx context.Context) (*Attempt, error) {
	if err := s.require(ViewStudentHome, domain.RoleStudent); err != nil {
		return nil, err
	}
	questions, err := s.bank.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("quiz unavailable: %w", err)
	}
	return NewAttempt(questions, s.policy), nil
}

// SubmitOutcome reports a completed submission. The computed result is always
// present; Persisted is false when the save failed, with Notice carrying the
// transient message to surface.
type SubmitOutcome struct {
	Result    domain.ScoreResult
	Record    domain.ScoreRecord
	Persisted bool
	Notice    string
}

// SubmitAttempt scores the attempt, shows the result optimistically, persists
// it, and reconciles the cache by re-fetching. A failed save never blocks the
// computed result; it only downgrades the outcome to a transient notice.
func (s *Session) SubmitAttempt(ctx context.Context, attempt *Attempt) (SubmitOutcome, error) {
	if err := s.require(ViewStudentHome, domain.RoleStudent); err != nil {
		return SubmitOutcome{}, err
	}
	result, err := attempt.Submit()
	if err != nil {
		return SubmitOutcome{}, err
	}

	record := domain.ScoreRecord{
		UserID:         s.identity.ID,
		CorrectCount:   result.CorrectCount,
		TotalQuestions: result.TotalQuestions,
		Timestamp:      s.now(),
	}
	// Optimistic local entry for immediate display; superseded by the re-fetch.
	s.scores.Append(record)

	outcome := SubmitOutcome{Result: result, Record: record, Persisted: true}
	saved, err := s.gateway.SaveScore(ctx, record.UserID, record.CorrectCount, record.TotalQuestions)
	if err != nil {
		s.log.Warn().Err(err).Msg("score save failed, result shown locally")
		outcome.Persisted = false
		outcome.Notice = "Your result could not be saved: " + UserMessage(err)
		return outcome, nil
	}
	outcome.Record = saved

	s.RefreshScores(ctx)
	return outcome, nil
}

// CreateQuestion validates and persists a new question. Admin home only.
// Invalid questions are rejected before the gateway is reached.
func (s *Session) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	if err := s.require(ViewAdminHome, domain.RoleAdmin); err != nil {
		return domain.Question{}, err
	}
	if err := domain.ValidateQuestion(q); err != nil {
		return domain.Question{}, err
	}
	created, err := s.gateway.CreateQuestion(ctx, q)
	if err != nil {
		return domain.Question{}, err
	}
	s.bank.Invalidate()
	return created, nil
}

// DeleteQuestion removes a question from the bank. Admin home only.
func (s *Session) DeleteQuestion(ctx context.Context, id string) error {
	if err := s.require(ViewAdminHome, domain.RoleAdmin); err != nil {
		return err
	}
	if err := s.gateway.DeleteQuestion(ctx, id); err != nil {
		return err
	}
	s.bank.Invalidate()
	return nil
}

// Questions returns the current question snapshot for the admin bank view.
func (s *Session) Questions(ctx context.Context) ([]domain.Question, error) {
	if err := s.require(ViewAdminHome, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.bank.Snapshot(ctx)
}

// QuestionCount returns the size of the question bank, degrading to 0 on
// fetch failure so the overview stays renderable.
func (s *Session) QuestionCount(ctx context.Context) int {
	count, err := s.gateway.QuestionCount(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("question count unavailable")
		return 0
	}
	return count
}

// require checks that the session is in the given view with a matching
// identity; any mismatch has already been resolved to home by guard.
func (s *Session) require(kind ViewKind, role domain.Role) error {
	s.guard()
	if s.view.Kind != kind || s.identity == nil || s.identity.Role != role {
		return fmt.Errorf("operation requires the %s view", kind)
	}
	return nil
}

// guard enforces the session invariant: a role home view without a matching
// identity can never stand. Violations resolve to home, not a crash.
func (s *Session) guard() {
	switch s.view.Kind {
	case ViewAdminHome:
		if s.identity == nil || s.identity.Role != domain.RoleAdmin {
			s.fallbackHome()
		}
	case ViewStudentHome:
		if s.identity == nil || s.identity.Role != domain.RoleStudent {
			s.fallbackHome()
		}
	case ViewLogin:
		if !s.view.Portal.Valid() {
			s.fallbackHome()
		}
	}
}

func (s *Session) fallbackHome() {
	s.log.Warn().Str("view", s.view.Kind.String()).Msg("invalid view/identity combination, falling back to home")
	s.view = View{Kind: ViewHome}
}

// UserMessage maps a gateway or domain error to the text shown to the user.
// Raw transport errors never leak through.
func UserMessage(err error) string {
	var serverErr *domain.ServerError
	var validationErr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Invalid username or password"
	case errors.Is(err, domain.ErrNetworkUnavailable):
		return "Unable to connect to server. Please check your connection."
	case errors.Is(err, domain.ErrRoleMismatch):
		return "Wrong portal for this account. Please use the correct login."
	case errors.As(err, &serverErr):
		return fmt.Sprintf("Server error: %d", serverErr.Status)
	case errors.As(err, &validationErr):
		return validationErr.Error()
	default:
		return "An unexpected error occurred. Please try again."
	}
}

// PortalMismatchMessage is the login-view text for a wrong-portal attempt.
func PortalMismatchMessage(portal domain.Role) string {
	return fmt.Sprintf("This is %s login. Please use the correct portal.", strings.ToLower(string(portal)))
}
