package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prohmpiriya/career-passport/internal/repository"
)

type publishedEvent struct {
	Type    string
	Key     string
	Payload interface{}
}

// recordingPublisher keeps every published event in memory
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{Type: eventType, Key: key, Payload: payload})
	return nil
}

func (p *recordingPublisher) Close(ctx context.Context) error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// fixedClock returns successive timestamps one second apart
func fixedClock(start time.Time) func() time.Time {
	return stepClock(start, time.Second)
}

// stepClock returns successive timestamps step apart
func stepClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(step)
		return now
	}
}

var errBoom = errors.New("boom")

type testEnv struct {
	mem   *repository.MemoryStore
	store *repository.Store
	pub   *recordingPublisher
	hooks Hooks
}

func newTestEnv() *testEnv {
	mem := repository.NewMemoryStore()
	pub := &recordingPublisher{}
	return &testEnv{
		mem:   mem,
		store: mem.Store(),
		pub:   pub,
		hooks: Hooks{
			Publisher: pub,
			Now:       fixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		},
	}
}
