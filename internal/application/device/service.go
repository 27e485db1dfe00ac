package device

import (
	"context"
	"fmt"
	"time"

	"github.com/go-push-registry/internal/domain"
	"github.com/go-push-registry/internal/pkg/validate"
)

type Service interface {
	// Register upserts the device record in replace mode: a second call with
	// the same (user, token) wholly overwrites the first. Created and updated
	// are deliberately indistinguishable.
	Register(ctx context.Context, req domain.RegisterDeviceRequest) (*domain.Device, error)
	Get(ctx context.Context, user, token string) (*domain.Device, error)
	List(ctx context.Context, user string) ([]domain.Device, error)
}

type deviceStore interface {
	Put(ctx context.Context, d *domain.Device) error
	Get(ctx context.Context, user, token string) (*domain.Device, error)
	ListByUser(ctx context.Context, user string) ([]domain.Device, error)
}

type service struct {
	repo deviceStore
}

func NewService(repo deviceStore) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, req domain.RegisterDeviceRequest) (*domain.Device, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	now := time.Now().UTC()
	d := &domain.Device{
		User:       req.User,
		Token:      req.Token,
		Mail:       req.Mail,
		Password:   req.Password,
		DeviceType: req.DeviceType,
		Active:     req.Active,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Put(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) Get(ctx context.Context, user, token string) (*domain.Device, error) {
	if user == "" || token == "" {
		return nil, fmt.Errorf("'user' and 'token' are required: %w", domain.ErrBadRequest)
	}
	return s.repo.Get(ctx, user, token)
}

func (s *service) List(ctx context.Context, user string) ([]domain.Device, error) {
	if user == "" {
		return nil, fmt.Errorf("'user' is required: %w", domain.ErrBadRequest)
	}
	return s.repo.ListByUser(ctx, user)
}
