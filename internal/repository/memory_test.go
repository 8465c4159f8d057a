package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/career-passport/internal/domain"
)

func intPtr(v int) *int { return &v }
func strPtr(v string) *string { return &v }

func newEvent(id, org string) *domain.Event {
	return &domain.Event{
		EventID:          id,
		OrgWalletAddress: org,
		Title:            "Hackathon",
		StartDate:        "2025-01-01",
		EndDate:          "2025-01-02",
		Status:           domain.EventStatusUpcoming,
		MaxParticipants:  intPtr(50),
		CreatedAt:        "2025-01-01T00:00:00Z",
		UpdatedAt:        "2025-01-01T00:00:00Z",
	}
}

func TestMemoryEvents_CRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()

	require.NoError(t, store.Events.Create(ctx, newEvent("e1", "0xorg")))
	require.NoError(t, store.Events.Create(ctx, newEvent("e2", "0xother")))

	err := store.Events.Create(ctx, newEvent("e1", "0xorg"))
	assert.True(t, domain.IsConflict(err))

	got, err := store.Events.GetByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Hackathon", got.Title)

	// returned copies must not alias stored state
	*got.MaxParticipants = 1
	again, err := store.Events.GetByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, 50, *again.MaxParticipants)

	all, err := store.Events.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byOrg, err := store.Events.ListByOrg(ctx, "0xorg")
	require.NoError(t, err)
	require.Len(t, byOrg, 1)
	assert.Equal(t, "e1", byOrg[0].EventID)

	updated, err := store.Events.Update(ctx, "e1", &domain.EventPatch{Title: strPtr("Renamed")}, "2025-02-01T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "2025-02-01T00:00:00Z", updated.UpdatedAt)
	assert.Equal(t, "2025-01-01", updated.StartDate)

	_, err = store.Events.Update(ctx, "missing", &domain.EventPatch{Title: strPtr("x")}, "t")
	assert.True(t, domain.IsNotFound(err))

	require.NoError(t, store.Events.Delete(ctx, "e1"))
	require.NoError(t, store.Events.Delete(ctx, "e1"))
	_, err = store.Events.GetByID(ctx, "e1")
	assert.True(t, domain.IsNotFound(err))
}

func TestMemoryApplications(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()

	for _, app := range []*domain.Application{
		{ApplicationID: "a1", EventID: "e1", WalletAddress: "0xs1", Status: domain.ApplicationStatusPending},
		{ApplicationID: "a2", EventID: "e1", WalletAddress: "0xs2", Status: domain.ApplicationStatusPending},
		{ApplicationID: "a3", EventID: "e2", WalletAddress: "0xs1", Status: domain.ApplicationStatusPending},
	} {
		require.NoError(t, store.Applications.Create(ctx, app))
	}

	byEvent, err := store.Applications.ListByEvent(ctx, "e1")
	require.NoError(t, err)
	assert.Len(t, byEvent, 2)

	byWallet, err := store.Applications.ListByWallet(ctx, "0xs1")
	require.NoError(t, err)
	assert.Len(t, byWallet, 2)

	require.NoError(t, store.Applications.UpdateStatus(ctx, "a1", domain.ApplicationStatusApproved, "2025-03-01T00:00:00Z"))
	got, err := store.Applications.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusApproved, got.Status)
	assert.Equal(t, "2025-03-01T00:00:00Z", got.UpdatedAt)

	err = store.Applications.UpdateStatus(ctx, "missing", domain.ApplicationStatusApproved, "t")
	assert.True(t, domain.IsNotFound(err))
}

func TestMemoryMessages(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()

	require.NoError(t, store.Messages.Create(ctx, &domain.Message{MessageID: "m1", SenderWallet: "0xa", RecipientWallet: "0xb"}))
	require.NoError(t, store.Messages.Create(ctx, &domain.Message{MessageID: "m2", SenderWallet: "0xb", RecipientWallet: "0xa"}))
	require.NoError(t, store.Messages.Create(ctx, &domain.Message{MessageID: "m3", SenderWallet: "0xa", RecipientWallet: "0xc"}))

	conv, err := store.Messages.ListConversation(ctx, "0xa", "0xb")
	require.NoError(t, err)
	assert.Len(t, conv, 2)

	all, err := store.Messages.ListByWallet(ctx, "0xa")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, store.Messages.MarkRead(ctx, "m1", "first"))
	require.NoError(t, store.Messages.MarkRead(ctx, "m1", "second"))
	conv, err = store.Messages.ListConversation(ctx, "0xa", "0xb")
	require.NoError(t, err)
	for _, m := range conv {
		if m.MessageID == "m1" {
			assert.True(t, m.Read)
			assert.Equal(t, "first", m.ReadAt)
		}
	}

	assert.True(t, domain.IsNotFound(store.Messages.MarkRead(ctx, "missing", "t")))
}

func TestMemoryMatches(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()

	require.NoError(t, store.Matches.Create(ctx, &domain.Match{MatchID: "x1", StudentWallet: "0xs", OrgWalletAddress: "0xo", Status: domain.MatchStatusPending}))

	asStudent, err := store.Matches.ListByWallet(ctx, "0xs")
	require.NoError(t, err)
	assert.Len(t, asStudent, 1)
	asOrg, err := store.Matches.ListByWallet(ctx, "0xo")
	require.NoError(t, err)
	assert.Len(t, asOrg, 1)

	m, err := store.Matches.UpdateStatus(ctx, "x1", domain.MatchStatusAccepted, "t")
	require.NoError(t, err)
	assert.Equal(t, domain.MatchStatusAccepted, m.Status)

	_, err = store.Matches.UpdateStatus(ctx, "missing", domain.MatchStatusAccepted, "t")
	assert.True(t, domain.IsNotFound(err))
	_, err = store.Matches.GetByID(ctx, "missing")
	assert.True(t, domain.IsNotFound(err))
}

func TestMemoryStore_Uninitialized(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	store := mem.Store()
	mem.SetInitialized(false)

	assert.True(t, domain.IsUnavailable(store.Ping(ctx)))
	assert.True(t, domain.IsUnavailable(store.Events.Create(ctx, newEvent("e1", "0xorg"))))
	_, err := store.Events.List(ctx)
	assert.True(t, domain.IsUnavailable(err))
	_, err = store.Applications.ListByWallet(ctx, "0xs")
	assert.True(t, domain.IsUnavailable(err))
	_, err = store.Messages.ListByWallet(ctx, "0xs")
	assert.True(t, domain.IsUnavailable(err))
	_, err = store.Matches.ListByWallet(ctx, "0xs")
	assert.True(t, domain.IsUnavailable(err))

	mem.SetInitialized(true)
	assert.NoError(t, store.Ping(ctx))
}
