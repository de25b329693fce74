// Package rest implements app.Gateway over the quiz server's HTTP API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"smartquiz/internal/app"
	"smartquiz/internal/domain"
)

// DefaultTimeout bounds every gateway call; expiry surfaces as
// domain.ErrNetworkUnavailable like any other transport failure.
const DefaultTimeout = 10 * time.Second

// Gateway talks to the quiz server. Failures are mapped to the domain error
// taxonomy: no response at all becomes ErrNetworkUnavailable, a 401 on login
// becomes ErrInvalidCredentials, anything else non-2xx becomes ServerError.
type Gateway struct {
	baseURL string
	client  *http.Client
}

var _ app.Gateway = (*Gateway)(nil)

func NewGateway(baseURL string) *Gateway {
	return NewGatewayWithClient(baseURL, &http.Client{Timeout: DefaultTimeout})
}

func NewGatewayWithClient(baseURL string, client *http.Client) *Gateway {
	return &Gateway{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type loginResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	User    *domain.Identity `json:"user"`
}

func (g *Gateway) Authenticate(ctx context.Context, creds domain.Credentials) (domain.Identity, error) {
	resp, err := g.do(ctx, http.MethodPost, "/api/users/login", creds)
	if err != nil {
		return domain.Identity{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return domain.Identity{}, domain.ErrInvalidCredentials
	case resp.StatusCode != http.StatusOK:
		return domain.Identity{}, &domain.ServerError{Status: resp.StatusCode}
	}

	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Identity{}, fmt.Errorf("decode login response: %w", err)
	}
	if !body.Success || body.User == nil {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}
	return *body.User, nil
}

func (g *Gateway) ListUsers(ctx context.Context) ([]domain.Identity, error) {
	var users []domain.Identity
	if err := g.getJSON(ctx, "/api/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (g *Gateway) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	var questions []domain.Question
	if err := g.getJSON(ctx, "/api/questions", &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (g *Gateway) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	resp, err := g.do(ctx, http.MethodPost, "/api/questions", q)
	if err != nil {
		return domain.Question{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return domain.Question{}, &domain.ServerError{Status: resp.StatusCode}
	}
	var created domain.Question
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return domain.Question{}, fmt.Errorf("decode question: %w", err)
	}
	return created, nil
}

func (g *Gateway) DeleteQuestion(ctx context.Context, id string) error {
	resp, err := g.do(ctx, http.MethodDelete, "/api/questions/"+id, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return domain.ErrQuestionNotFound
	default:
		return &domain.ServerError{Status: resp.StatusCode}
	}
}

func (g *Gateway) QuestionCount(ctx context.Context) (int, error) {
	var count int
	if err := g.getJSON(ctx, "/api/questions/count", &count); err != nil {
		return 0, err
	}
	return count, nil
}

type saveScoreRequest struct {
	UserID         string `json:"userId"`
	CorrectCount   int    `json:"correctCount"`
	TotalQuestions int    `json:"totalQuestions"`
}

func (g *Gateway) SaveScore(ctx context.Context, userID string, correctCount, totalQuestions int) (domain.ScoreRecord, error) {
	resp, err := g.do(ctx, http.MethodPost, "/api/scores", saveScoreRequest{
		UserID:         userID,
		CorrectCount:   correctCount,
		TotalQuestions: totalQuestions,
	})
	if err != nil {
		return domain.ScoreRecord{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return domain.ScoreRecord{}, &domain.ServerError{Status: resp.StatusCode}
	}
	var rec domain.ScoreRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return domain.ScoreRecord{}, fmt.Errorf("decode score: %w", err)
	}
	return rec, nil
}

func (g *Gateway) ScoresForUser(ctx context.Context, userID string) ([]domain.ScoreRecord, error) {
	var records []domain.ScoreRecord
	if err := g.getJSON(ctx, "/api/scores/user/"+userID, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (g *Gateway) AllScores(ctx context.Context) ([]domain.ScoreRecord, error) {
	var records []domain.ScoreRecord
	if err := g.getJSON(ctx, "/api/scores/all", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// do issues one request, encoding body as JSON when present. Transport-level
// failures collapse into ErrNetworkUnavailable; callers never see a raw
// *url.Error.
func (g *Gateway) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNetworkUnavailable, method, path)
	}
	return resp, nil
}

func (g *Gateway) getJSON(ctx context.Context, path string, out interface{}) error {
	resp, err := g.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &domain.ServerError{Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
