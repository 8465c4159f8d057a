package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("title", "title is required"), KindValidation},
		{"not found", NotFound("events.get", "event not found"), KindNotFound},
		{"conflict", Conflict("events.apply", "already applied"), KindConflict},
		{"unavailable", Unavailable("events.create", errors.New("ResourceNotFoundException")), KindUnavailable},
		{"wrapped", fmt.Errorf("handler: %w", NotFound("x", "y")), KindNotFound},
		{"plain error", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsValidation(Validation("f", "m")))
	assert.True(t, IsNotFound(NotFound("op", "m")))
	assert.True(t, IsConflict(Conflict("op", "m")))
	assert.True(t, IsUnavailable(Unavailable("op", nil)))
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsConflict(errors.New("conflict")))
}

func TestError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("table missing")
	err := Unavailable("events.create", cause)

	assert.Equal(t, "events.create: store not initialized: table missing", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "store not initialized", MessageOf(err))

	v := Validation("walletAddress", "walletAddress is required")
	assert.Equal(t, "walletAddress", FieldOf(fmt.Errorf("wrap: %w", v)))
	assert.Equal(t, "walletAddress is required", v.Error())

	internal := Internal("events.delete", cause)
	assert.Equal(t, "events.delete: table missing", internal.Error())
	assert.Equal(t, "events.delete: table missing", MessageOf(internal))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "unavailable", KindUnavailable.String())
	assert.Equal(t, "internal", Kind(99).String())
}
