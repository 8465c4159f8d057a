package repository

import (
	"context"
	"time"

	"github.com/prohmpiriya/career-passport/internal/domain"
)

// EventRepository defines the interface for event data access
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	// GetByID returns a domain NotFound error when the event does not exist
	GetByID(ctx context.Context, eventID string) (*domain.Event, error)
	List(ctx context.Context) ([]*domain.Event, error)
	ListByOrg(ctx context.Context, orgWalletAddress string) ([]*domain.Event, error)
	// Update applies patch and returns the stored event, NotFound when missing
	Update(ctx context.Context, eventID string, patch *domain.EventPatch, updatedAt string) (*domain.Event, error)
	// Delete is idempotent: deleting a missing event is not an error
	Delete(ctx context.Context, eventID string) error
}

// ApplicationRepository defines the interface for event application data access
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	GetByID(ctx context.Context, applicationID string) (*domain.Application, error)
	ListByEvent(ctx context.Context, eventID string) ([]*domain.Application, error)
	ListByWallet(ctx context.Context, walletAddress string) ([]*domain.Application, error)
	UpdateStatus(ctx context.Context, applicationID, status, updatedAt string) error
}

// MessageRepository defines the interface for message data access
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListByWallet(ctx context.Context, walletAddress string) ([]*domain.Message, error)
	ListConversation(ctx context.Context, walletA, walletB string) ([]*domain.Message, error)
	MarkRead(ctx context.Context, messageID, readAt string) error
}

// MatchRepository defines the interface for match data access
type MatchRepository interface {
	Create(ctx context.Context, match *domain.Match) error
	GetByID(ctx context.Context, matchID string) (*domain.Match, error)
	ListByWallet(ctx context.Context, walletAddress string) ([]*domain.Match, error)
	UpdateStatus(ctx context.Context, matchID, status, updatedAt string) (*domain.Match, error)
}

// SnapshotCache stores serialized chain-read snapshots
type SnapshotCache interface {
	// Get returns ok=false when the key is absent or expired
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Store bundles the repositories of one backend
type Store struct {
	Driver       string
	Events       EventRepository
	Applications ApplicationRepository
	Messages     MessageRepository
	Matches      MatchRepository

	ping  func(ctx context.Context) error
	close func()
}

// Ping checks that the backend is reachable and its tables exist
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases backend resources
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}
