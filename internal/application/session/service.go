package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-push-registry/internal/domain"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Token    string `json:"fcmtoken"`
}

type LoginResult struct {
	User      string `json:"user"`
	Token     string `json:"token"`
	NewDevice bool   `json:"new_device"`
	Bearer    string `json:"Bearer,omitempty"`
}

type LogoutResult struct {
	User        string   `json:"user"`
	Deactivated []string `json:"deactivated"`
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, username, token string) (*LogoutResult, error)
}

type deviceStore interface {
	FindByCredentials(ctx context.Context, user, password string) (*domain.Device, error)
	Get(ctx context.Context, user, token string) (*domain.Device, error)
	Put(ctx context.Context, d *domain.Device) error
	FindActive(ctx context.Context, user, token string) ([]domain.Device, error)
	Update(ctx context.Context, user, token string, updates map[string]interface{}) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type tokenSigner interface {
	Sign(user, token string) (string, error)
}

type service struct {
	repo   deviceStore
	mailer mailer      // nil disables new-device alerts
	signer tokenSigner // nil disables bearer issuance
}

func NewService(repo deviceStore, mailer mailer, signer tokenSigner) Service {
	return &service{repo: repo, mailer: mailer, signer: signer}
}

// Login authenticates against any record of the user holding the supplied
// password, then marks the given token active, creating the device record on
// first login from a new token. The scan-then-write is not transactional;
// per-item writes are atomic and last writer wins.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if req.Username == "" || req.Password == "" || req.Token == "" {
		return nil, fmt.Errorf("'username', 'password' and 'fcmtoken' are required: %w", domain.ErrBadRequest)
	}

	cred, err := s.repo.FindByCredentials(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}

	result := &LoginResult{User: req.Username, Token: req.Token}

	_, err = s.repo.Get(ctx, req.Username, req.Token)
	switch {
	case err == nil:
		// Known device: flip only the active flag, everything else is preserved.
		if err := s.repo.Update(ctx, req.Username, req.Token, map[string]interface{}{"active": true}); err != nil {
			return nil, err
		}
	case errors.Is(err, domain.ErrNotFound):
		// First login from this token: the device is trusted transitively and
		// inherits contact fields from the record that authenticated the user.
		now := time.Now().UTC()
		d := &domain.Device{
			User:       req.Username,
			Token:      req.Token,
			Mail:       cred.Mail,
			Password:   req.Password,
			DeviceType: cred.DeviceType,
			Active:     true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.repo.Put(ctx, d); err != nil {
			return nil, err
		}
		result.NewDevice = true
		s.notifyNewDevice(d)
	default:
		return nil, err
	}

	if s.signer != nil {
		bearer, err := s.signer.Sign(req.Username, req.Token)
		if err != nil {
			slog.Warn("could not sign bearer", "user", req.Username, "err", err)
		} else {
			result.Bearer = bearer
		}
	}
	return result, nil
}

// Logout deactivates the given token. An unknown token, a never-logged-in
// device and an already-inactive one all collapse to the same NotFound.
func (s *service) Logout(ctx context.Context, username, token string) (*LogoutResult, error) {
	if username == "" || token == "" {
		return nil, fmt.Errorf("'username' and 'fcmtoken' are required: %w", domain.ErrBadRequest)
	}

	matches, err := s.repo.FindActive(ctx, username, token)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no active device with token '%s' for user '%s': %w", token, username, domain.ErrNotFound)
	}

	result := &LogoutResult{User: username}
	for _, d := range matches {
		if err := s.repo.Update(ctx, d.User, d.Token, map[string]interface{}{"active": false}); err != nil {
			return nil, err
		}
		result.Deactivated = append(result.Deactivated, d.Token)
	}
	return result, nil
}

// notifyNewDevice sends a best-effort alert to the account's contact address.
// Delivery problems are logged, never surfaced to the login caller.
func (s *service) notifyNewDevice(d *domain.Device) {
	if s.mailer == nil || d.Mail == "" {
		return
	}
	subject := "New device signed in"
	body := fmt.Sprintf("A new device (%s) just signed in to your account '%s'. If this wasn't you, log it out.", d.DeviceType, d.User)
	if err := s.mailer.SendEmail(d.Mail, subject, body); err != nil {
		slog.Warn("could not send new-device alert", "user", d.User, "err", err)
	}
}
