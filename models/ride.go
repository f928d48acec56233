package models

import (
	"time"

	"godrive/apperrors"
)

// RideStatus tracks where a ride is in its lifecycle.
type RideStatus string

const (
	RideStatusRequested  RideStatus = "REQUESTED"
	RideStatusAccepted   RideStatus = "ACCEPTED"
	RideStatusInProgress RideStatus = "IN_PROGRESS"
	RideStatusCompleted  RideStatus = "COMPLETED" // terminal
	RideStatusCancelled  RideStatus = "CANCELLED" // terminal
)

// RideLocation is an address plus coordinates. Coordinates are carried as
// opaque data, never computed with.
type RideLocation struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Ride is a single transport request moving through the fixed lifecycle
// REQUESTED -> ACCEPTED -> IN_PROGRESS -> COMPLETED, with CANCELLED
// reachable from any non-COMPLETED state. Status, DriverID and the
// completion fields change only through the transition methods below.
type Ride struct {
	ID                string       `json:"id"`
	PassengerID       string       `json:"passengerId"`
	DriverID          string       `json:"driverId,omitempty"`
	Origin            RideLocation `json:"origin"`
	Destination       RideLocation `json:"destination"`
	Status            RideStatus   `json:"status"`
	RequestedPrice    float64      `json:"requestedPrice"`
	FinalPrice        *float64     `json:"finalPrice,omitempty"`
	Distance          float64      `json:"distance"`          // km, opaque
	EstimatedDuration int          `json:"estimatedDuration"` // minutes, opaque
	Payment           *Payment     `json:"payment,omitempty"`
	CreatedAt         time.Time    `json:"createdAt"`
	StartedAt         *time.Time   `json:"startedAt,omitempty"`
	CompletedAt       *time.Time   `json:"completedAt,omitempty"`
	Notes             string       `json:"notes,omitempty"` // cancellation reason
}

// NewRide constructs a ride in REQUESTED state.
func NewRide(id, passengerID string, origin, destination RideLocation, requestedPrice, distance float64, estimatedDuration int) *Ride {
	return &Ride{
		ID:                id,
		PassengerID:       passengerID,
		Origin:            origin,
		Destination:       destination,
		Status:            RideStatusRequested,
		RequestedPrice:    requestedPrice,
		Distance:          distance,
		EstimatedDuration: estimatedDuration,
		CreatedAt:         time.Now(),
	}
}

// Accept binds a driver and moves REQUESTED -> ACCEPTED.
func (r *Ride) Accept(driverID string) error {
	if r.Status != RideStatusRequested {
		return apperrors.NewInvalidTransition(string(r.Status), "accept")
	}
	r.DriverID = driverID
	r.Status = RideStatusAccepted
	return nil
}

// Start moves ACCEPTED -> IN_PROGRESS and stamps StartedAt.
func (r *Ride) Start() error {
	if r.Status != RideStatusAccepted {
		return apperrors.NewInvalidTransition(string(r.Status), "start")
	}
	now := time.Now()
	r.Status = RideStatusInProgress
	r.StartedAt = &now
	return nil
}

// Complete moves IN_PROGRESS -> COMPLETED, recording the final price and
// payment and stamping CompletedAt.
func (r *Ride) Complete(finalPrice float64, payment Payment) error {
	if r.Status != RideStatusInProgress {
		return apperrors.NewInvalidTransition(string(r.Status), "complete")
	}
	now := time.Now()
	r.Status = RideStatusCompleted
	r.FinalPrice = &finalPrice
	r.Payment = &payment
	r.CompletedAt = &now
	return nil
}

// Cancel moves any non-COMPLETED ride to CANCELLED and stores the reason in
// the notes. Driver binding and price data already on the ride are kept.
func (r *Ride) Cancel(reason string) error {
	if r.Status == RideStatusCompleted {
		return apperrors.NewInvalidTransition(string(r.Status), "cancel")
	}
	r.Status = RideStatusCancelled
	r.Notes = reason
	return nil
}

// SetNotes stores free-form notes on the ride.
func (r *Ride) SetNotes(notes string) { r.Notes = notes }

// Clone returns a deep, independent copy of the ride.
func (r *Ride) Clone() *Ride {
	dup := *r
	if r.FinalPrice != nil {
		v := *r.FinalPrice
		dup.FinalPrice = &v
	}
	if r.Payment != nil {
		p := *r.Payment
		dup.Payment = &p
	}
	if r.StartedAt != nil {
		t := *r.StartedAt
		dup.StartedAt = &t
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		dup.CompletedAt = &t
	}
	return &dup
}
