package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godrive/apperrors"
)

func testRide() *Ride {
	origin := RideLocation{Address: "Calle 10 #43-12, Medellin", Latitude: 6.2099, Longitude: -75.5696}
	destination := RideLocation{Address: "Aeropuerto JMC, Rionegro", Latitude: 6.1645, Longitude: -75.4231}
	return NewRide("r-1", "p-1", origin, destination, 35000, 28.5, 45)
}

func cashPayment(amount float64) Payment {
	return Payment{Method: PaymentMethodCash, Amount: amount, Currency: "COP", Date: time.Now()}
}

func TestNewRide_StartsRequested(t *testing.T) {
	r := testRide()
	assert.Equal(t, RideStatusRequested, r.Status)
	assert.Empty(t, r.DriverID)
	assert.Nil(t, r.FinalPrice)
	assert.Nil(t, r.StartedAt)
	assert.Nil(t, r.CompletedAt)
	assert.False(t, r.CreatedAt.IsZero())
}

func TestRide_HappyPathLifecycle(t *testing.T) {
	r := testRide()

	require.NoError(t, r.Accept("d-1"))
	assert.Equal(t, RideStatusAccepted, r.Status)
	assert.Equal(t, "d-1", r.DriverID)

	require.NoError(t, r.Start())
	assert.Equal(t, RideStatusInProgress, r.Status)
	require.NotNil(t, r.StartedAt)

	require.NoError(t, r.Complete(35000, cashPayment(35000)))
	assert.Equal(t, RideStatusCompleted, r.Status)
	require.NotNil(t, r.FinalPrice)
	assert.Equal(t, 35000.0, *r.FinalPrice)
	require.NotNil(t, r.Payment)
	assert.Equal(t, PaymentMethodCash, r.Payment.Method)
	require.NotNil(t, r.CompletedAt)
}

// Every transition is guarded by the state it starts from; a rejected
// transition must leave the ride untouched.
func TestRide_InvalidTransitions(t *testing.T) {
	cases := []struct {
		name    string
		prepare func(*Ride)
		attempt func(*Ride) error
	}{
		{
			name:    "accept an accepted ride",
			prepare: func(r *Ride) { _ = r.Accept("d-1") },
			attempt: func(r *Ride) error { return r.Accept("d-2") },
		},
		{
			name:    "start a requested ride",
			prepare: func(r *Ride) {},
			attempt: func(r *Ride) error { return r.Start() },
		},
		{
			name:    "start a cancelled ride",
			prepare: func(r *Ride) { _ = r.Cancel("changed my mind") },
			attempt: func(r *Ride) error { return r.Start() },
		},
		{
			name:    "complete a requested ride",
			prepare: func(r *Ride) {},
			attempt: func(r *Ride) error { return r.Complete(1000, cashPayment(1000)) },
		},
		{
			name:    "complete an accepted ride",
			prepare: func(r *Ride) { _ = r.Accept("d-1") },
			attempt: func(r *Ride) error { return r.Complete(1000, cashPayment(1000)) },
		},
		{
			name: "complete a completed ride",
			prepare: func(r *Ride) {
				_ = r.Accept("d-1")
				_ = r.Start()
				_ = r.Complete(1000, cashPayment(1000))
			},
			attempt: func(r *Ride) error { return r.Complete(2000, cashPayment(2000)) },
		},
		{
			name: "cancel a completed ride",
			prepare: func(r *Ride) {
				_ = r.Accept("d-1")
				_ = r.Start()
				_ = r.Complete(1000, cashPayment(1000))
			},
			attempt: func(r *Ride) error { return r.Cancel("too late") },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := testRide()
			tc.prepare(r)
			before := r.Clone()

			err := tc.attempt(r)
			require.Error(t, err)
			assert.True(t, apperrors.IsInvalidTransition(err))
			assert.Equal(t, before.Status, r.Status)
			assert.Equal(t, before.DriverID, r.DriverID)
			assert.Equal(t, before.Notes, r.Notes)
		})
	}
}

func TestRide_CancelFromEveryNonCompletedState(t *testing.T) {
	// REQUESTED
	r := testRide()
	require.NoError(t, r.Cancel("passenger no-show"))
	assert.Equal(t, RideStatusCancelled, r.Status)
	assert.Equal(t, "passenger no-show", r.Notes)

	// ACCEPTED: the driver binding survives cancellation
	r = testRide()
	require.NoError(t, r.Accept("d-1"))
	require.NoError(t, r.Cancel("driver unavailable"))
	assert.Equal(t, RideStatusCancelled, r.Status)
	assert.Equal(t, "d-1", r.DriverID)

	// IN_PROGRESS: timestamps already stamped stay on the record
	r = testRide()
	require.NoError(t, r.Accept("d-1"))
	require.NoError(t, r.Start())
	require.NoError(t, r.Cancel("breakdown"))
	assert.Equal(t, RideStatusCancelled, r.Status)
	assert.NotNil(t, r.StartedAt)

	// CANCELLED: cancelling again is allowed, the reason is rewritten
	require.NoError(t, r.Cancel("logged twice"))
	assert.Equal(t, RideStatusCancelled, r.Status)
	assert.Equal(t, "logged twice", r.Notes)
}

func TestRide_CloneIsIndependent(t *testing.T) {
	r := testRide()
	require.NoError(t, r.Accept("d-1"))
	require.NoError(t, r.Start())
	require.NoError(t, r.Complete(36000, cashPayment(36000)))

	clone := r.Clone()
	*clone.FinalPrice = 1
	clone.Payment.Amount = 1
	*clone.StartedAt = time.Time{}

	assert.Equal(t, 36000.0, *r.FinalPrice)
	assert.Equal(t, 36000.0, r.Payment.Amount)
	assert.False(t, r.StartedAt.IsZero())
}
