package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"lifelink/pkg/types"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", types.ValidationError("bad", nil), http.StatusBadRequest},
		{"not found", types.NotFoundError("gone", types.ErrAlertNotFound), http.StatusNotFound},
		{"precondition", types.PreconditionFailed("late"), http.StatusConflict},
		{"forbidden", types.Unauthorized("no"), http.StatusForbidden},
		{"wrapped", fmt.Errorf("outer: %w", types.PreconditionFailed("late")), http.StatusConflict},
		{"plain", errors.New("db down"), http.StatusInternalServerError},
		{"store sentinel", types.ErrAlertNotFound, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
