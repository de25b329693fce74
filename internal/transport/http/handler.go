// Package http exposes the quiz server's REST API and the live score feed.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"smartquiz/internal/domain"
	"github.com/rs/zerolog"
)

// Store abstracts the server-side persistence (in-memory or Postgres).
type Store interface {
	Authenticate(ctx context.Context, username, password string) (domain.Identity, error)
	ListUsers(ctx context.Context) ([]domain.Identity, error)
	ListStudents(ctx context.Context) ([]domain.Identity, error)
	CreateUser(ctx context.Context, username, password, displayName string, role domain.Role) (domain.Identity, error)
	ListQuestions(ctx context.Context) ([]domain.Question, error)
	CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error)
	DeleteQuestion(ctx context.Context, id string) error
	CountQuestions(ctx context.Context) (int, error)
	SaveScore(ctx context.Context, userID string, correctCount, totalQuestions int) (domain.ScoreRecord, error)
	ScoresForUser(ctx context.Context, userID string) ([]domain.ScoreRecord, error)
	BestForUser(ctx context.Context, userID string) (int, error)
	AllScores(ctx context.Context) ([]domain.ScoreRecord, error)
}

// Handler wires the store into the REST routes the client gateway consumes.
type Handler struct {
	store Store
	feed  *ScoreFeed
	log   zerolog.Logger
}

func NewHandler(store Store, feed *ScoreFeed, log zerolog.Logger) *Handler {
	return &Handler{store: store, feed: feed, log: log}
}

// Register mounts all routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("POST /api/users/login", h.login)
	mux.HandleFunc("GET /api/users", h.listUsers)
	mux.HandleFunc("GET /api/users/students", h.listStudents)
	mux.HandleFunc("POST /api/users", h.createUser)
	mux.HandleFunc("GET /api/questions", h.listQuestions)
	mux.HandleFunc("POST /api/questions", h.createQuestion)
	mux.HandleFunc("DELETE /api/questions/{id}", h.deleteQuestion)
	mux.HandleFunc("GET /api/questions/count", h.questionCount)
	mux.HandleFunc("POST /api/scores", h.saveScore)
	mux.HandleFunc("GET /api/scores/user/{id}", h.userScores)
	mux.HandleFunc("GET /api/scores/user/{id}/best", h.userBest)
	mux.HandleFunc("GET /api/scores/all", h.allScores)
	if h.feed != nil {
		mux.HandleFunc("GET /api/scores/feed", h.feed.ServeWS)
	}
}

type loginResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	User    *domain.Identity `json:"user,omitempty"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		h.writeJSON(w, http.StatusBadRequest, loginResponse{Success: false, Message: "malformed login request"})
		return
	}
	identity, err := h.store.Authenticate(r.Context(), creds.Username, creds.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		h.writeJSON(w, http.StatusUnauthorized, loginResponse{Success: false, Message: "Invalid credentials"})
		return
	}
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, loginResponse{Success: true, User: &identity})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, emptyIfNilUsers(users))
}

func (h *Handler) listStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.store.ListStudents(r.Context())
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, emptyIfNilUsers(students))
}

type createUserRequest struct {
	Username    string      `json:"username"`
	Password    string      `json:"password"`
	DisplayName string      `json:"displayName"`
	Role        domain.Role `json:"role"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed user", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" || !req.Role.Valid() {
		http.Error(w, "username, password, and a valid role are required", http.StatusBadRequest)
		return
	}
	identity, err := h.store.CreateUser(r.Context(), req.Username, req.Password, req.DisplayName, req.Role)
	if errors.Is(err, domain.ErrUsernameTaken) {
		http.Error(w, "Username already exists", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, identity)
}

func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.store.ListQuestions(r.Context())
	if err != nil {
		h.serverError(w, err)
		return
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	h.writeJSON(w, http.StatusOK, questions)
}

func (h *Handler) createQuestion(w http.ResponseWriter, r *http.Request) {
	var q domain.Question
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		http.Error(w, "malformed question", http.StatusBadRequest)
		return
	}
	if err := domain.ValidateQuestion(q); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	created, err := h.store.CreateQuestion(r.Context(), q)
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, created)
}

func (h *Handler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteQuestion(r.Context(), r.PathValue("id"))
	if errors.Is(err, domain.ErrQuestionNotFound) {
		http.Error(w, "question not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.serverError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) questionCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.CountQuestions(r.Context())
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, count)
}

type saveScoreRequest struct {
	UserID         string `json:"userId"`
	CorrectCount   int    `json:"correctCount"`
	TotalQuestions int    `json:"totalQuestions"`
}

func (h *Handler) saveScore(w http.ResponseWriter, r *http.Request) {
	var req saveScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed score", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.TotalQuestions < 0 || req.CorrectCount < 0 || req.CorrectCount > req.TotalQuestions {
		http.Error(w, "invalid score payload", http.StatusBadRequest)
		return
	}
	rec, err := h.store.SaveScore(r.Context(), req.UserID, req.CorrectCount, req.TotalQuestions)
	if errors.Is(err, domain.ErrUserNotFound) {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.serverError(w, err)
		return
	}
	if h.feed != nil {
		h.feed.Publish(rec)
	}
	h.writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) userScores(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ScoresForUser(r.Context(), r.PathValue("id"))
	if err != nil {
		h.serverError(w, err)
		return
	}
	if records == nil {
		records = []domain.ScoreRecord{}
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *Handler) userBest(w http.ResponseWriter, r *http.Request) {
	best, err := h.store.BestForUser(r.Context(), r.PathValue("id"))
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, best)
}

func (h *Handler) allScores(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.AllScores(r.Context())
	if err != nil {
		h.serverError(w, err)
		return
	}
	if records == nil {
		records = []domain.ScoreRecord{}
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("write response failed")
	}
}

func (h *Handler) serverError(w http.ResponseWriter, err error) {
	h.log.Error().Err(err).Msg("request failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func emptyIfNilUsers(users []domain.Identity) []domain.Identity {
	if users == nil {
		return []domain.Identity{}
	}
	return users
}
