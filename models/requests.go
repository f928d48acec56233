package models

// Request DTOs for the REST API. Validation runs through the service layer's
// validator instance using the struct tags below; domain guards on the
// entities enforce the same rules again independently.

// CreateDriverRequest is the payload for registering a driver. The id is
// optional; a UUID is minted when it is omitted.
type CreateDriverRequest struct {
	ID            string  `json:"id"`
	FirstName     string  `json:"firstName" validate:"required"`
	LastName      string  `json:"lastName" validate:"required"`
	Email         string  `json:"email" validate:"required,email"`
	Contact       Contact `json:"contact"`
	DriverID      string  `json:"driverId" validate:"required"`
	LicenseNumber string  `json:"licenseNumber" validate:"required"`
	Vehicle       Vehicle `json:"vehicle" validate:"required"`
}

// CreatePassengerRequest is the payload for registering a passenger.
type CreatePassengerRequest struct {
	ID          string  `json:"id"`
	FirstName   string  `json:"firstName" validate:"required"`
	LastName    string  `json:"lastName" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	Contact     Contact `json:"contact"`
	PassengerID string  `json:"passengerId" validate:"required"`
}

// CreateAdministratorRequest is the payload for registering an administrator.
// AccessLevel defaults to 2 when omitted.
type CreateAdministratorRequest struct {
	ID          string  `json:"id"`
	FirstName   string  `json:"firstName" validate:"required"`
	LastName    string  `json:"lastName" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	Contact     Contact `json:"contact"`
	AdminID     string  `json:"adminId" validate:"required"`
	Department  string  `json:"department" validate:"required"`
	AccessLevel int     `json:"accessLevel" validate:"omitempty,min=1,max=5"`
}

// CreateRideRequest is the payload for requesting a ride.
type CreateRideRequest struct {
	ID                string       `json:"id"`
	PassengerID       string       `json:"passengerId" validate:"required"`
	Origin            RideLocation `json:"origin" validate:"required"`
	Destination       RideLocation `json:"destination" validate:"required"`
	RequestedPrice    float64      `json:"requestedPrice" validate:"required,gt=0"`
	Distance          float64      `json:"distance" validate:"gte=0"`
	EstimatedDuration int          `json:"estimatedDuration" validate:"gte=0"`
}

// AcceptRideRequest carries the accepting driver's id.
type AcceptRideRequest struct {
	DriverID string `json:"driverId" validate:"required"`
}

// CompleteRideRequest carries the settlement data for a ride completion.
type CompleteRideRequest struct {
	FinalPrice float64      `json:"finalPrice" validate:"required,gt=0"`
	Payment    PaymentInput `json:"payment" validate:"required"`
}

// CancelRideRequest carries the optional cancellation reason.
type CancelRideRequest struct {
	Reason string `json:"reason"`
}

// UpdateLocationRequest carries a raw position update.
type UpdateLocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// SetAvailabilityRequest toggles a driver's availability.
type SetAvailabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

// RateDriverRequest is the payload for rating a driver after a ride.
type RateDriverRequest struct {
	RideID  string `json:"rideId" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// AddFundsRequest tops up a passenger wallet.
type AddFundsRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// FavoriteDriverRequest marks a driver as a passenger favorite.
type FavoriteDriverRequest struct {
	DriverID string `json:"driverId" validate:"required"`
}
