package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/prohmpiriya/career-passport/internal/domain"
	"github.com/prohmpiriya/career-passport/pkg/config"
)

// errTableMissing mimics a backend reporting a missing table
var errTableMissing = errors.New("table does not exist")

// MemoryStore keeps every entity in mutex-guarded maps. SetInitialized(false)
// makes every operation fail the way a missing table does.
type MemoryStore struct {
	mu            sync.RWMutex
	uninitialized bool
	events        map[string]domain.Event
	applications  map[string]domain.Application
	messages      map[string]domain.Message
	matches       map[string]domain.Match
}

// NewMemoryStore creates an empty, initialized memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:       make(map[string]domain.Event),
		applications: make(map[string]domain.Application),
		messages:     make(map[string]domain.Message),
		matches:      make(map[string]domain.Match),
	}
}

// SetInitialized toggles the simulated table presence
func (s *MemoryStore) SetInitialized(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uninitialized = !ok
}

func (s *MemoryStore) check(op string) error {
	if s.uninitialized {
		return domain.Unavailable(op, errTableMissing)
	}
	return nil
}

// Store exposes the memory repositories as a Store
func (s *MemoryStore) Store() *Store {
	return &Store{
		Driver:       config.StoreDriverMemory,
		Events:       &memoryEventRepository{s: s},
		Applications: &memoryApplicationRepository{s: s},
		Messages:     &memoryMessageRepository{s: s},
		Matches:      &memoryMatchRepository{s: s},
		ping: func(ctx context.Context) error {
			s.mu.RLock()
			defer s.mu.RUnlock()
			return s.check("store.ping")
		},
	}
}

// --- events ---

type memoryEventRepository struct {
	s *MemoryStore
}

func (r *memoryEventRepository) Create(ctx context.Context, event *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("events.create"); err != nil {
		return err
	}
	if _, exists := r.s.events[event.EventID]; exists {
		return domain.Conflict("events.create", "event already exists")
	}
	r.s.events[event.EventID] = cloneEvent(*event)
	return nil
}

func (r *memoryEventRepository) GetByID(ctx context.Context, eventID string) (*domain.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check("events.get"); err != nil {
		return nil, err
	}
	e, ok := r.s.events[eventID]
	if !ok {
		return nil, domain.NotFound("events.get", "event not found")
	}
	out := cloneEvent(e)
	return &out, nil
}

func (r *memoryEventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	return r.filter("events.list", func(*domain.Event) bool { return true })
}

func (r *memoryEventRepository) ListByOrg(ctx context.Context, orgWalletAddress string) ([]*domain.Event, error) {
	return r.filter("events.list_by_org", func(e *domain.Event) bool {
		return e.OrgWalletAddress == orgWalletAddress
	})
}

func (r *memoryEventRepository) filter(op string, keep func(*domain.Event) bool) ([]*domain.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(op); err != nil {
		return nil, err
	}
	out := make([]*domain.Event, 0)
	for _, e := range r.s.events {
		e := cloneEvent(e)
		if keep(&e) {
			out = append(out, &e)
		}
	}
	return out, nil
}

func (r *memoryEventRepository) Update(ctx context.Context, eventID string, patch *domain.EventPatch, updatedAt string) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("events.update"); err != nil {
		return nil, err
	}
	e, ok := r.s.events[eventID]
	if !ok {
		return nil, domain.NotFound("events.update", "event not found")
	}
	patch.Apply(&e)
	e.UpdatedAt = updatedAt
	r.s.events[eventID] = e
	out := cloneEvent(e)
	return &out, nil
}

func (r *memoryEventRepository) Delete(ctx context.Context, eventID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("events.delete"); err != nil {
		return err
	}
	delete(r.s.events, eventID)
	return nil
}

func cloneEvent(e domain.Event) domain.Event {
	if e.MaxParticipants != nil {
		v := *e.MaxParticipants
		e.MaxParticipants = &v
	}
	return e
}

// --- applications ---

type memoryApplicationRepository struct {
	s *MemoryStore
}

func (r *memoryApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("applications.create"); err != nil {
		return err
	}
	if _, exists := r.s.applications[app.ApplicationID]; exists {
		return domain.Conflict("applications.create", "application already exists")
	}
	r.s.applications[app.ApplicationID] = *app
	return nil
}

func (r *memoryApplicationRepository) GetByID(ctx context.Context, applicationID string) (*domain.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check("applications.get"); err != nil {
		return nil, err
	}
	a, ok := r.s.applications[applicationID]
	if !ok {
		return nil, domain.NotFound("applications.get", "application not found")
	}
	return &a, nil
}

func (r *memoryApplicationRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Application, error) {
	return r.filter("applications.list_by_event", func(a *domain.Application) bool { return a.EventID == eventID })
}

func (r *memoryApplicationRepository) ListByWallet(ctx context.Context, walletAddress string) ([]*domain.Application, error) {
	return r.filter("applications.list_by_wallet", func(a *domain.Application) bool { return a.WalletAddress == walletAddress })
}

func (r *memoryApplicationRepository) filter(op string, keep func(*domain.Application) bool) ([]*domain.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(op); err != nil {
		return nil, err
	}
	out := make([]*domain.Application, 0)
	for _, a := range r.s.applications {
		a := a
		if keep(&a) {
			out = append(out, &a)
		}
	}
	return out, nil
}

func (r *memoryApplicationRepository) UpdateStatus(ctx context.Context, applicationID, status, updatedAt string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("applications.update_status"); err != nil {
		return err
	}
	a, ok := r.s.applications[applicationID]
	if !ok {
		return domain.NotFound("applications.update_status", "application not found")
	}
	a.Status = status
	a.UpdatedAt = updatedAt
	r.s.applications[applicationID] = a
	return nil
}

// --- messages ---

type memoryMessageRepository struct {
	s *MemoryStore
}

func (r *memoryMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("messages.create"); err != nil {
		return err
	}
	r.s.messages[msg.MessageID] = *msg
	return nil
}

func (r *memoryMessageRepository) ListByWallet(ctx context.Context, walletAddress string) ([]*domain.Message, error) {
	return r.filter("messages.list_by_wallet", func(m *domain.Message) bool { return m.Involves(walletAddress) })
}

func (r *memoryMessageRepository) ListConversation(ctx context.Context, walletA, walletB string) ([]*domain.Message, error) {
	return r.filter("messages.list_conversation", func(m *domain.Message) bool { return m.Between(walletA, walletB) })
}

func (r *memoryMessageRepository) filter(op string, keep func(*domain.Message) bool) ([]*domain.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(op); err != nil {
		return nil, err
	}
	out := make([]*domain.Message, 0)
	for _, m := range r.s.messages {
		m := m
		if keep(&m) {
			out = append(out, &m)
		}
	}
	return out, nil
}

func (r *memoryMessageRepository) MarkRead(ctx context.Context, messageID, readAt string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("messages.mark_read"); err != nil {
		return err
	}
	m, ok := r.s.messages[messageID]
	if !ok {
		return domain.NotFound("messages.mark_read", "message not found")
	}
	if !m.Read {
		m.Read = true
		m.ReadAt = readAt
		r.s.messages[messageID] = m
	}
	return nil
}

// --- matches ---

type memoryMatchRepository struct {
	s *MemoryStore
}

func (r *memoryMatchRepository) Create(ctx context.Context, match *domain.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("matches.create"); err != nil {
		return err
	}
	r.s.matches[match.MatchID] = *match
	return nil
}

func (r *memoryMatchRepository) GetByID(ctx context.Context, matchID string) (*domain.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check("matches.get"); err != nil {
		return nil, err
	}
	m, ok := r.s.matches[matchID]
	if !ok {
		return nil, domain.NotFound("matches.get", "match not found")
	}
	return &m, nil
}

func (r *memoryMatchRepository) ListByWallet(ctx context.Context, walletAddress string) ([]*domain.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check("matches.list_by_wallet"); err != nil {
		return nil, err
	}
	out := make([]*domain.Match, 0)
	for _, m := range r.s.matches {
		m := m
		if m.StudentWallet == walletAddress || m.OrgWalletAddress == walletAddress {
			out = append(out, &m)
		}
	}
	return out, nil
}

func (r *memoryMatchRepository) UpdateStatus(ctx context.Context, matchID, status, updatedAt string) (*domain.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("matches.update_status"); err != nil {
		return nil, err
	}
	m, ok := r.s.matches[matchID]
	if !ok {
		return nil, domain.NotFound("matches.update_status", "match not found")
	}
	m.Status = status
	m.UpdatedAt = updatedAt
	r.s.matches[matchID] = m
	return &m, nil
}
