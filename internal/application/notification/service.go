package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-push-registry/internal/domain"
	"github.com/go-push-registry/internal/pkg/id"
)

type Service interface {
	// Dispatch sends the message to every active token of the user, one attempt
	// per token. A failed token is reported in the outcome list and never aborts
	// the batch or fails the operation.
	Dispatch(ctx context.Context, user, message string) (*domain.DispatchReport, error)
	History(ctx context.Context, user string) ([]domain.Notification, error)
}

type deviceStore interface {
	ListActive(ctx context.Context, user string) ([]domain.Device, error)
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, user string) ([]domain.Notification, error)
}

type pushSender interface {
	Send(ctx context.Context, token, title, body string) (string, error)
}

type service struct {
	devices deviceStore
	history notificationStore
	sender  pushSender
	title   string
}

func NewService(devices deviceStore, history notificationStore, sender pushSender, title string) Service {
	return &service{devices: devices, history: history, sender: sender, title: title}
}

func (s *service) Dispatch(ctx context.Context, user, message string) (*domain.DispatchReport, error) {
	if user == "" || message == "" {
		return nil, fmt.Errorf("'user' and 'message' are required: %w", domain.ErrBadRequest)
	}

	devices, err := s.devices.ListActive(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("list active devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("no active tokens for user '%s': %w", user, domain.ErrNotFound)
	}

	report := &domain.DispatchReport{
		Attempted: len(devices),
		Outcomes:  make([]domain.DeliveryOutcome, 0, len(devices)),
	}
	for _, d := range devices {
		outcome := domain.DeliveryOutcome{Token: d.Token}
		receipt, err := s.sender.Send(ctx, d.Token, s.title, message)
		if err != nil {
			outcome.Error = err.Error()
			slog.Warn("delivery failed", "user", user, "token", d.Token, "err", err)
		} else {
			outcome.Delivered = true
			outcome.Receipt = receipt
			report.Delivered++
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}
	report.Message = fmt.Sprintf("attempted %d token(s), %d delivered", report.Attempted, report.Delivered)

	// History is best effort: a failed write must not fail a dispatch that
	// already happened.
	record := &domain.Notification{
		NotificationID: id.New(),
		User:           user,
		Title:          s.title,
		Message:        message,
		Attempted:      report.Attempted,
		Delivered:      report.Delivered,
		Outcomes:       report.Outcomes,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.history.Put(ctx, record); err != nil {
		slog.Warn("could not persist dispatch record", "user", user, "err", err)
	}

	return report, nil
}

func (s *service) History(ctx context.Context, user string) ([]domain.Notification, error) {
	if user == "" {
		return nil, fmt.Errorf("'user' is required: %w", domain.ErrBadRequest)
	}
	return s.history.ListByUser(ctx, user)
}
