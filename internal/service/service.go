package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prohmpiriya/career-passport/internal/domain"
	"github.com/prohmpiriya/career-passport/internal/dto"
	"github.com/prohmpiriya/career-passport/internal/publisher"
	"github.com/prohmpiriya/career-passport/pkg/logger"
	"github.com/prohmpiriya/career-passport/pkg/telemetry"
)

// EventService defines the interface for event business logic
type EventService interface {
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*domain.Event, error)
	GetEvent(ctx context.Context, eventID string) (*domain.Event, error)
	// ListEvents returns every event, or only orgWalletAddress's when set, newest first
	ListEvents(ctx context.Context, orgWalletAddress string) ([]*domain.Event, error)
	UpdateEvent(ctx context.Context, eventID string, req *dto.UpdateEventRequest) (*domain.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// ApplicationService defines the interface for event application business logic
type ApplicationService interface {
	Apply(ctx context.Context, eventID string, req *dto.ApplyRequest) (*domain.Application, error)
	ListByEvent(ctx context.Context, eventID string) ([]*domain.Application, error)
	ListByWallet(ctx context.Context, walletAddress string) ([]*domain.Application, error)
	UpdateStatus(ctx context.Context, applicationID string, req *dto.UpdateApplicationStatusRequest) error
}

// MessageService defines the interface for direct messages
type MessageService interface {
	Send(ctx context.Context, req *dto.SendMessageRequest) (*domain.Message, error)
	// List returns the conversation with peer when set, otherwise every message involving wallet
	List(ctx context.Context, walletAddress, peer string) ([]*domain.Message, error)
	MarkRead(ctx context.Context, messageID string) error
}

// MatchService defines the interface for student/organization matches
type MatchService interface {
	Create(ctx context.Context, req *dto.CreateMatchRequest) (*domain.Match, error)
	List(ctx context.Context, walletAddress string) ([]*domain.Match, error)
	UpdateStatus(ctx context.Context, matchID string, req *dto.UpdateMatchStatusRequest) (*domain.Match, error)
}

// Hooks carries the collaborators shared by every service
type Hooks struct {
	Publisher publisher.Publisher
	Metrics   *telemetry.Metrics
	Logger    *logger.Logger
	Now       func() time.Time
}

func (h Hooks) withDefaults() Hooks {
	if h.Publisher == nil {
		h.Publisher = publisher.Noop{}
	}
	if h.Logger == nil {
		h.Logger = logger.NewNop()
	}
	if h.Now == nil {
		h.Now = time.Now
	}
	return h
}

func (h Hooks) timestamp() string {
	return h.Now().UTC().Format(time.RFC3339Nano)
}

// compareTimestamps orders two stored RFC3339 timestamps by instant. Values
// that do not parse fall back to string order.
func compareTimestamps(a, b string) int {
	ta, errA := time.Parse(time.RFC3339Nano, a)
	tb, errB := time.Parse(time.RFC3339Nano, b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return ta.Compare(tb)
}

// emit publishes a domain event. Failures are logged and counted, never returned.
func (h Hooks) emit(ctx context.Context, eventType, key string, payload interface{}) {
	if err := h.Publisher.Publish(ctx, eventType, key, payload); err != nil {
		h.Logger.WithContext(ctx).Warn("failed to publish domain event",
			zap.String("type", eventType),
			zap.String("key", key),
			zap.Error(err),
		)
		if h.Metrics != nil {
			h.Metrics.PublishFailures.Inc(ctx, telemetry.ErrorTypeAttr(eventType))
		}
	}
}

func requireWallet(field, wallet string) (string, error) {
	wallet = domain.NormalizeWallet(wallet)
	if wallet == "" {
		return "", domain.Validation(field, field+" is required")
	}
	return wallet, nil
}
