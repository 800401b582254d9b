package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationConfirm(t *testing.T) {
	tests := []struct {
		name    string
		status  ReservationStatus
		wantErr bool
	}{
		{name: "pending can be confirmed", status: ReservationStatusPending},
		{name: "confirmed cannot be confirmed again", status: ReservationStatusConfirmed, wantErr: true},
		{name: "refused cannot be confirmed", status: ReservationStatusRefused, wantErr: true},
		{name: "cancelled cannot be confirmed", status: ReservationStatusCancelled, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Reservation{Status: tt.status}
			err := r.Confirm()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, tt.status, r.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ReservationStatusConfirmed, r.Status)
		})
	}
}

func TestReservationRefuse(t *testing.T) {
	tests := []struct {
		name    string
		status  ReservationStatus
		wantErr bool
	}{
		{name: "pending can be refused", status: ReservationStatusPending},
		{name: "confirmed cannot be refused", status: ReservationStatusConfirmed, wantErr: true},
		{name: "cancelled cannot be refused", status: ReservationStatusCancelled, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Reservation{Status: tt.status}
			err := r.Refuse()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ReservationStatusRefused, r.Status)
		})
	}
}

func TestReservationCancel(t *testing.T) {
	t.Run("pending can be cancelled", func(t *testing.T) {
		r := &Reservation{Status: ReservationStatusPending}
		require.NoError(t, r.Cancel())
		assert.Equal(t, ReservationStatusCancelled, r.Status)
	})

	t.Run("confirmed can be cancelled", func(t *testing.T) {
		r := &Reservation{Status: ReservationStatusConfirmed}
		require.NoError(t, r.Cancel())
		assert.Equal(t, ReservationStatusCancelled, r.Status)
	})

	t.Run("cancelling twice reports already cancelled", func(t *testing.T) {
		r := &Reservation{Status: ReservationStatusCancelled}
		err := r.Cancel()
		assert.ErrorIs(t, err, ErrAlreadyCancelled)
		assert.NotErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("refused cannot be cancelled", func(t *testing.T) {
		r := &Reservation{Status: ReservationStatusRefused}
		err := r.Cancel()
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestInvalidTransitionError(t *testing.T) {
	err := &InvalidTransitionError{Action: "confirm", Current: ReservationStatusCancelled}
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Contains(t, err.Error(), "cancelled")
	assert.Contains(t, err.Error(), "confirm")
}

func TestReservationStatusIsActive(t *testing.T) {
	assert.True(t, ReservationStatusPending.IsActive())
	assert.True(t, ReservationStatusConfirmed.IsActive())
	assert.False(t, ReservationStatusRefused.IsActive())
	assert.False(t, ReservationStatusCancelled.IsActive())
}

func TestNewTicketCode(t *testing.T) {
	eventID := uuid.New()
	userID := uuid.New()
	now := time.UnixMilli(1700000000000)

	code := NewTicketCode(eventID, userID, now)
	assert.Contains(t, code, eventID.String())
	assert.Contains(t, code, userID.String())
	assert.Contains(t, code, "1700000000000")
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	role, err = ParseRole("participant")
	require.NoError(t, err)
	assert.Equal(t, RoleParticipant, role)

	_, err = ParseRole("superuser")
	assert.ErrorIs(t, err, ErrInvalidRole)
}
