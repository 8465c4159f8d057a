package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventPatch(t *testing.T) {
	var empty EventPatch
	assert.True(t, empty.IsEmpty())

	title := "Winter Intern"
	limit := 20
	status := EventStatusActive
	patch := EventPatch{Title: &title, MaxParticipants: &limit, Status: &status}
	assert.False(t, patch.IsEmpty())

	e := Event{Title: "Summer Intern", Location: "Tokyo", Status: EventStatusUpcoming}
	patch.Apply(&e)

	assert.Equal(t, "Winter Intern", e.Title)
	assert.Equal(t, "Tokyo", e.Location)
	assert.Equal(t, EventStatusActive, e.Status)
	if assert.NotNil(t, e.MaxParticipants) {
		assert.Equal(t, 20, *e.MaxParticipants)
	}

	// the event must not alias the patch value
	limit = 99
	assert.Equal(t, 20, *e.MaxParticipants)
}

func TestStatusEnums(t *testing.T) {
	assert.True(t, IsValidEventStatus("upcoming"))
	assert.False(t, IsValidEventStatus("archived"))
	assert.True(t, IsValidApplicationStatus("approved"))
	assert.False(t, IsValidApplicationStatus("archived"))
	assert.True(t, IsValidMatchStatus("declined"))
	assert.False(t, IsValidMatchStatus("approved"))
}

func TestMatch_IsOpen(t *testing.T) {
	assert.True(t, (&Match{Status: MatchStatusPending}).IsOpen())
	assert.True(t, (&Match{Status: MatchStatusAccepted}).IsOpen())
	assert.False(t, (&Match{Status: MatchStatusDeclined}).IsOpen())
}

func TestMessage_Between(t *testing.T) {
	m := Message{SenderWallet: "0xa", RecipientWallet: "0xb"}
	assert.True(t, m.Between("0xa", "0xb"))
	assert.True(t, m.Between("0xb", "0xa"))
	assert.False(t, m.Between("0xa", "0xc"))
	assert.True(t, m.Involves("0xb"))
	assert.False(t, m.Involves("0xc"))
}

func TestWallet(t *testing.T) {
	assert.Equal(t, "0xabcdef", NormalizeWallet("  0xAbCdEf "))
	assert.True(t, IsWalletAddress("0x00000000000000000000000000000000000000aB"))
	assert.False(t, IsWalletAddress("0xabc"))
	assert.False(t, IsWalletAddress("not-a-wallet"))
}
