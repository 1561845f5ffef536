// Package client is the consuming side of the chat service: an
// authenticated REST session plus the live channel that receives push
// events.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"pairchat/auth"
	"pairchat/domain"
	"pairchat/errors"
	"pairchat/services"
)

// Session holds the tokens of one logged-in user and retries exactly once
// on 401 by refreshing the pair; a second failure clears the session so
// the caller can route back to login.
type Session struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	user         domain.User
}

func NewSession(baseURL string) *Session {
	return &Session{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// envelope mirrors the server's uniform response shape.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// User returns the profile captured at login time.
func (s *Session) User() domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Authenticated reports whether the session currently holds tokens.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken != ""
}

func (s *Session) Signup(ctx context.Context, req auth.SignupRequest) (domain.User, error) {
	var data struct {
		User domain.User `json:"user"`
	}
	err := s.call(ctx, http.MethodPost, "/api/v1/user/signup", req, &data)
	return data.User, err
}

func (s *Session) Login(ctx context.Context, email, password string) (domain.User, error) {
	var data struct {
		User         domain.User `json:"user"`
		AccessToken  string      `json:"accessToken"`
		RefreshToken string      `json:"refreshToken"`
	}
	req := auth.LoginRequest{Email: email, Password: password}
	if err := s.call(ctx, http.MethodPost, "/api/v1/user/login", req, &data); err != nil {
		return domain.User{}, err
	}

	s.mu.Lock()
	s.user = data.User
	s.accessToken = data.AccessToken
	s.refreshToken = data.RefreshToken
	s.mu.Unlock()
	return data.User, nil
}

// Logout invalidates the server-side refresh credential and clears local
// state. The live channel must be closed by the caller alongside this.
func (s *Session) Logout(ctx context.Context) error {
	err := s.call(ctx, http.MethodPost, "/api/v1/user/logout", nil, nil)
	s.clear()
	return err
}

func (s *Session) Contacts(ctx context.Context) ([]domain.Contact, error) {
	var data struct {
		Users []domain.Contact `json:"users"`
	}
	err := s.call(ctx, http.MethodGet, "/api/v1/messages/users", nil, &data)
	return data.Users, err
}

func (s *Session) History(ctx context.Context, counterpartID string) ([]domain.Message, error) {
	var messages []domain.Message
	err := s.call(ctx, http.MethodGet, "/api/v1/messages/"+url.PathEscape(counterpartID), nil, &messages)
	return messages, err
}

func (s *Session) Send(ctx context.Context, receiverID string, req auth.SendMessageRequest) (domain.Message, error) {
	var message domain.Message
	err := s.call(ctx, http.MethodPost, "/api/v1/messages/send/"+url.PathEscape(receiverID), req, &message)
	return message, err
}

func (s *Session) MarkRead(ctx context.Context, messageID string) error {
	return s.call(ctx, http.MethodPut, "/api/v1/messages/messages/"+url.PathEscape(messageID)+"/read", nil, nil)
}

func (s *Session) SearchUsers(ctx context.Context, query string) ([]domain.PublicProfile, error) {
	var data struct {
		Users []domain.PublicProfile `json:"users"`
	}
	err := s.call(ctx, http.MethodGet, "/api/v1/user/search?query="+url.QueryEscape(query), nil, &data)
	return data.Users, err
}

func (s *Session) UpdateProfile(ctx context.Context, req auth.UpdateProfileRequest) (domain.User, error) {
	var data struct {
		User domain.User `json:"user"`
	}
	err := s.call(ctx, http.MethodPatch, "/api/v1/user/update-profile", req, &data)
	return data.User, err
}

// call performs one request, replaying it once after a successful token
// refresh when the server answers 401.
func (s *Session) call(ctx context.Context, method, path string, body, out any) error {
	status, err := s.do(ctx, method, path, body, out)
	if err == nil || status != http.StatusUnauthorized {
		return err
	}

	if refreshErr := s.refresh(ctx); refreshErr != nil {
		s.clear()
		return err
	}
	if _, retryErr := s.do(ctx, method, path, body, out); retryErr != nil {
		s.clear()
		return retryErr
	}
	return nil
}

func (s *Session) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	s.mu.Lock()
	if s.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.accessToken)
	}
	s.mu.Unlock()

	resp, err := s.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return resp.StatusCode, fmt.Errorf("malformed response: %w", err)
	}
	if !env.Success {
		return resp.StatusCode, apiError(resp.StatusCode, env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("malformed response data: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func (s *Session) refresh(ctx context.Context) error {
	s.mu.Lock()
	token := s.refreshToken
	s.mu.Unlock()
	if token == "" {
		return errors.Unauthorized("no refresh token")
	}

	var pair services.TokenPair
	body := map[string]string{"refreshToken": token}
	if _, err := s.do(ctx, http.MethodPost, "/api/v1/user/refresh-token", body, &pair); err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken = pair.AccessToken
	s.refreshToken = pair.RefreshToken
	s.mu.Unlock()
	return nil
}

func (s *Session) clear() {
	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.user = domain.User{}
	s.mu.Unlock()
}

func apiError(status int, message string) error {
	switch status {
	case http.StatusBadRequest:
		return errors.Validation(message)
	case http.StatusUnauthorized:
		return errors.Unauthorized(message)
	case http.StatusNotFound:
		return errors.NotFound(message)
	case http.StatusConflict:
		return errors.Conflict(message)
	default:
		return errors.Internal(message, nil)
	}
}
