// Package session owns the authentication lifecycle: login, register,
// logout and the silent restore performed at startup. It is the only
// writer of the credential token, which it persists through a TokenStore
// and attaches to the gateway explicitly rather than through any ambient
// shared configuration.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/agentmira/mira-go/internal/api"
	"github.com/agentmira/mira-go/internal/logger"
)

// Gateway is the subset of the API client the session store depends on;
// it is easy to mock in tests.
type Gateway interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) error
	Me(ctx context.Context) (*api.User, error)
	SetToken(token string)
	ClearToken()
}

// Store holds the current session: the authenticated user, if any, and
// the credential token backing it.
type Store struct {
	gw       Gateway
	tokens   *TokenStore
	validate *validator.Validate

	mu    sync.Mutex
	user  *api.User
	ready bool
}

// NewStore creates a session Store over the given gateway and token store.
func NewStore(gw Gateway, tokens *TokenStore) *Store {
	return &Store{gw: gw, tokens: tokens, validate: validator.New()}
}

type loginInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type registerInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required"`
	Password string `validate:"required,min=6"`
}

// Restore attempts a silent session restore from the stored token. It
// never fails: a missing token or a rejected /auth/me simply leaves the
// session unauthenticated, discarding the token in the latter case.
// Ready reports true once Restore has run.
func (s *Store) Restore(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.ready = true
		s.mu.Unlock()
	}()

	token, ok := s.tokens.Load()
	if !ok {
		return
	}
	s.gw.SetToken(token)

	user, err := s.gw.Me(ctx)
	if err != nil {
		logger.L.Warn("session restore failed; discarding stored token", "error", err)
		s.tokens.Delete()
		s.gw.ClearToken()
		return
	}
	s.setUser(user)
	logger.L.Info("session restored", "email", user.Email)
}

// Login authenticates with the backend. On success the token is persisted
// and attached before the profile fetch, so a failed fetch still leaves a
// working session with a user synthesized from the email.
func (s *Store) Login(ctx context.Context, email, password string) error {
	if err := s.validate.Struct(loginInput{Email: email, Password: password}); err != nil {
		return &ValidationError{Message: "Email and password are required"}
	}

	resp, err := s.gw.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return &LoginError{Message: loginMessage(err)}
	}
	if resp.AccessToken == "" {
		return &ServerError{Message: "Invalid server response"}
	}

	s.tokens.Save(resp.AccessToken)
	s.gw.SetToken(resp.AccessToken)

	user, err := s.gw.Me(ctx)
	if err != nil {
		logger.L.Warn("profile fetch failed after login; synthesizing user", "error", err)
		user = &api.User{Email: email, Name: localPart(email)}
	}
	s.setUser(user)
	return nil
}

// Register creates an account and immediately logs in with the same
// credentials. If the account was created but the auto-login failed, the
// returned LoginError tells the caller to prompt a manual login.
func (s *Store) Register(ctx context.Context, name, email, password string) error {
	in := registerInput{Name: name, Email: email, Password: password}
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Tag() == "required" {
					return &ValidationError{Message: "Name, email, and password are required"}
				}
			}
		}
		return &ValidationError{Message: "Password must be at least 6 characters long"}
	}

	if err := s.gw.Register(ctx, api.RegisterRequest{Name: name, Email: email, Password: password}); err != nil {
		return &RegistrationError{Message: registerMessage(err)}
	}

	if err := s.Login(ctx, email, password); err != nil {
		logger.L.Warn("auto-login after registration failed", "error", err)
		return &LoginError{Message: "Account created successfully, but auto-login failed. Please log in manually."}
	}
	return nil
}

// Logout clears the stored token, detaches the credential and drops the
// user. The caller is expected to return to the unauthenticated entry point.
func (s *Store) Logout() {
	s.tokens.Delete()
	s.gw.ClearToken()
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

// User returns the current user, or nil when unauthenticated.
func (s *Store) User() *api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated reports whether a user is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// Ready reports whether the startup restore has completed.
func (s *Store) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

func (s *Store) setUser(user *api.User) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

func localPart(email string) string {
	return strings.SplitN(email, "@", 2)[0]
}

// loginMessage maps a gateway failure to the message shown on the login form.
func loginMessage(err error) string {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return "Failed to log in. Please try again."
	}
	if !apiErr.HasResponse {
		return "No response from server. Please check your connection."
	}
	if apiErr.Detail != "" {
		return apiErr.Detail
	}
	switch {
	case apiErr.Status == 401:
		return "Incorrect email or password."
	case apiErr.Status == 400:
		return "Invalid input data."
	case apiErr.Status >= 500:
		return "Server error. Please try again later."
	}
	return "Failed to log in. Please try again."
}

// registerMessage maps a gateway failure to the message shown on the
// registration form, rewriting the backend's duplicate-email 400 to a
// dedicated message.
func registerMessage(err error) string {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return "Failed to create account. Please try again."
	}
	if !apiErr.HasResponse {
		return "No response from server. Please check your connection."
	}
	if apiErr.Status == 400 {
		lower := strings.ToLower(apiErr.Detail)
		if strings.Contains(lower, "email already") || strings.Contains(lower, "already registered") {
			return "This email is already registered. Please log in instead."
		}
	}
	if apiErr.Detail != "" {
		return apiErr.Detail
	}
	if apiErr.Status >= 500 {
		return "Server error. Please try again later."
	}
	return "Failed to create account. Please try again."
}
