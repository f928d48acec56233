package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godrive/apperrors"
	"godrive/models"
	"godrive/storage"
)

// The service tests run against the in-memory backend; the document backend
// honors the same Repository contract and is covered by the storage tests.
func setupServiceTest(t *testing.T) (*RideService, *QueryService, storage.Repository) {
	t.Helper()
	repo := storage.NewMemoryRepository()
	return NewRideService(repo), NewQueryService(repo), repo
}

func driverRequest(id string) models.CreateDriverRequest {
	return models.CreateDriverRequest{
		ID:            id,
		FirstName:     "Carlos",
		LastName:      "Gomez",
		Email:         "carlos@example.com",
		Contact:       models.Contact{Email: "carlos@example.com", Phone: "+57 300 123 4567"},
		DriverID:      "DRV-" + id,
		LicenseNumber: "LIC-9876",
		Vehicle:       models.Vehicle{Plate: "ABC123", Brand: "Renault", Model: "Logan", Year: 2021, Color: "White", Type: "SEDAN"},
	}
}

func passengerRequest(id string) models.CreatePassengerRequest {
	return models.CreatePassengerRequest{
		ID:          id,
		FirstName:   "Maria",
		LastName:    "Lopez",
		Email:       "maria@example.com",
		Contact:     models.Contact{Email: "maria@example.com", Phone: "+57 301 765 4321"},
		PassengerID: "PAS-" + id,
	}
}

func rideRequest(id, passengerID string) models.CreateRideRequest {
	return models.CreateRideRequest{
		ID:                id,
		PassengerID:       passengerID,
		Origin:            models.RideLocation{Address: "Calle 10 #43-12, Medellin", Latitude: 6.2099, Longitude: -75.5696},
		Destination:       models.RideLocation{Address: "Aeropuerto JMC, Rionegro", Latitude: 6.1645, Longitude: -75.4231},
		RequestedPrice:    35000,
		Distance:          28.5,
		EstimatedDuration: 45,
	}
}

func completeRequest(finalPrice float64, method string) models.CompleteRideRequest {
	return models.CompleteRideRequest{
		FinalPrice: finalPrice,
		Payment:    models.PaymentInput{Method: method, Amount: finalPrice, Currency: "COP"},
	}
}

func acceptRequest(driverID string) models.AcceptRideRequest {
	return models.AcceptRideRequest{DriverID: driverID}
}

func boolPtr(b bool) *bool { return &b }

// The full lifecycle of one ride: completion must settle the ride, the
// driver's counters and earnings, and the passenger's counters and payment
// history together.
func TestRideService_CompleteRide_SettlesAllThreeParties(t *testing.T) {
	rideService, _, repo := setupServiceTest(t)
	ctx := context.Background()

	_, err := rideService.CreateDriver(ctx, driverRequest("d-1"))
	require.NoError(t, err)
	_, err = rideService.CreatePassenger(ctx, passengerRequest("p-1"))
	require.NoError(t, err)

	ride, err := rideService.CreateRide(ctx, rideRequest("r-1", "p-1"))
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusRequested, ride.Status)

	_, err = rideService.AcceptRide(ctx, "r-1", acceptRequest("d-1"))
	require.NoError(t, err)
	_, err = rideService.StartRide(ctx, "r-1")
	require.NoError(t, err)

	completed, err := rideService.CompleteRide(ctx, "r-1", completeRequest(35000, "CASH"))
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusCompleted, completed.Status)
	require.NotNil(t, completed.FinalPrice)
	assert.Equal(t, 35000.0, *completed.FinalPrice)

	// Driver side
	user, err := repo.GetUserByID(ctx, "d-1")
	require.NoError(t, err)
	driver := user.(*models.Driver)
	assert.Equal(t, 1, driver.TotalRides)
	assert.Equal(t, 35000.0, driver.Earnings)

	// Passenger side
	user, err = repo.GetUserByID(ctx, "p-1")
	require.NoError(t, err)
	passenger := user.(*models.Passenger)
	assert.Equal(t, 1, passenger.RidesCount)
	require.Len(t, passenger.PaymentHistory, 1)
	assert.Equal(t, models.PaymentMethodCash, passenger.PaymentHistory[0].Method)
	assert.Equal(t, 0.0, passenger.WalletBalance, "cash payments must not touch the wallet")
}

// A completion with an invalid final price must fail before anything is
// written: the ride stays IN_PROGRESS and neither account moves.
func TestRideService_CompleteRide_InvalidPriceLeavesStateUntouched(t *testing.T) {
	rideService, _, repo := setupServiceTest(t)
	ctx := context.Background()

	_, err := rideService.CreateDriver(ctx, driverRequest("d-1"))
	require.NoError(t, err)
	_, err = rideService.CreatePassenger(ctx, passengerRequest("p-1"))
	require.NoError(t, err)
	_, err = rideService.CreateRide(ctx, rideRequest("r-1", "p-1"))
	require.NoError(t, err)
	_, err = rideService.AcceptRide(ctx, "r-1", acceptRequest("d-1"))
	require.NoError(t, err)
	_, err = rideService.StartRide(ctx, "r-1")
	require.NoError(t, err)

	for _, finalPrice := range []float64{-100, 0} {
		req := models.CompleteRideRequest{
			FinalPrice: finalPrice,
			Payment:    models.PaymentInput{Method: "CASH", Amount: 35000, Currency: "COP"},
		}
		_, err = rideService.CompleteRide(ctx, "r-1", req)
		require.Error(t, err, "final price %.2f must be rejected", finalPrice)

		ride, err := repo.GetRideByID(ctx, "r-1")
		require.NoError(t, err)
		assert.Equal(t, models.RideStatusInProgress, ride.Status)
		assert.Nil(t, ride.FinalPrice)

		user, err := repo.GetUserByID(ctx, "d-1")
		require.NoError(t, err)
		driver := user.(*models.Driver)
		assert.Equal(t, 0, driver.TotalRides)
		assert.Equal(t, 0.0, driver.Earnings)

		user, err = repo.GetUserByID(ctx, "p-1")
		require.NoError(t, err)
		passenger := user.(*models.Passenger)
		assert.Equal(t, 0, passenger.RidesCount)
		assert.Empty(t, passenger.PaymentHistory)
	}

	// The ride is still completable once the request is well-formed
	_, err = rideService.CompleteRide(ctx, "r-1", completeRequest(35000, "CASH"))
	require.NoError(t, err)
}

func TestRideService_CompleteRide_WalletDebitsBalance(t *testing.T) {
	rideService, _, repo := setupServiceTest(t)
	ctx := context.Background()

	_, err := rideService.CreateDriver(ctx, driverRequest("d-1"))
	require.NoError(t, err)
	_, err = rideService.CreatePassenger(ctx, passengerRequest("p-1"))
	require.NoError(t, err)
	require.NoError(t, rideService.AddFundsToPassenger(ctx, "p-1", models.AddFundsRequest{Amount: 20000}))

	_, err = rideService.CreateRide(ctx, rideRequest("r-1", "p-1"))
	require.NoError(t, err)
	_, err = rideService.AcceptRide(ctx, "r-1", acceptRequest("d-1"))
	require.NoError(t, err)
	_, err = rideService.StartRide(ctx, "r-1")
	require.NoError(t, err)

	_, err = rideService.CompleteRide(ctx, "r-1", completeRequest(35000, "WALLET"))
	require.NoError(t, err)

	user, err := repo.GetUserByID(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, -15000.0, user.(*models.Passenger).WalletBalance, "the wallet has no floor")
}

// A ride for an unknown passenger must fail with NotFound and store nothing.
func TestRideService_CreateRide_UnknownPassenger(t *testing.T) {
	rideService, queryService, _ := setupServiceTest(t)
	ctx := context.Background()

	_, err := rideService.CreateRide(ctx, rideRequest("r-1", "ghost"))
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	rides, err := queryService.ListAllRides(ctx)
	require.NoError(t, err)
	assert.Empty(t, rides)
}

func TestRideService_CreateRide_ValidationFailure(t *testing.T) {
	rideService, _, _ := setupServiceTest(t)
	ctx := context.Background()

	_, err := rideService.CreatePassenger(ctx, passengerRequest("p-1"))
	require.NoError(t, err)

	req := rideRequest("r-1", "p-1")
	req.RequestedPrice = 0
	_, err = rideService.CreateRide(ctx, req)
	require.Error(t, err)
}

// An unavailable driver can still accept; availability is informational.
func TestRideService_AcceptRide_IgnoresAvailability(t *testing.T) {
	rideService, _, _ := setupServiceTest(t)
	ctx := context.Background()

	_, err := rideService.CreateDriver(ctx, driverRequest("d-1"))
	require.NoError(t, err)
	require.NoError(t, rideService.SetDriverAvailability(ctx, "d-1", models.SetAvailabilityRequest{Available: boolPtr(false)}))
	_, err = rideService.CreatePassenger(ctx, passengerRequest("p-1"))
	require.NoError(t, err)
	_, err = rideService.CreateRide(ctx, rideRequest("r-1", "p-1"))
	require.NoError(t, err)

	ride, err := rideService.AcceptRide(ctx, "r-1", acceptRequest("d-1"))
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusAccepted, ride.Status)
	assert.Equal(t, "d-1", ride.DriverID)
}

// Accepting with a passenger id must fail the same way as an unknown driver.
func TestRideService_AcceptRide_WrongRole(t *testing.T) {
	rideService, _, _ := setupServiceTest(t)
	ctx := context.Background()

	_, err := rideService.CreatePassenger(ctx, passengerRequest("p-1"))
	require.NoError(t, err)
	_, err = rideService.CreatePassenger(ctx, passengerRequest("p-2"))
	require.NoError(t, err)
	_, err = rideService.CreateRide(ctx, rideRequest("r-1", "p-1"))
	require.NoError(t, err)

	_, err = rideService.AcceptRide(ctx, "r-1", acceptRequest("p-2"))
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRideService_AcceptRide_MissingDriverID(t *testing.T) {
	rideService, _, _ := setupServiceTest(t)
	ctx := context.Background()

	_, err := rideService.CreatePassenger(ctx, passengerRequest("p-1"))
	require.NoError(t, err)
	_, err = rideService.CreateRide(ctx, rideRequest("r-1", "p-1"))
	require.NoError(t, err)

	_, err = rideService.AcceptRide(ctx, "r-1", models.AcceptRideRequest{})
	require.Error(t, err)
}

func TestRideService_CancelRide(t *testing.T) {
	rideService, _, _ := setupServiceTest(t)
	ctx := context.Background()

	_, err := rideService.CreatePassenger(ctx, passengerRequest("p-1"))
	require.NoError(t, err)
	_, err = rideService.CreateRide(ctx, rideRequest("r-1", "p-1"))
	require.NoError(t, err)

	ride, err := rideService.CancelRide(ctx, "r-1", models.CancelRideRequest{Reason: "passenger no-show"})
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusCancelled, ride.Status)
	assert.Equal(t, "passenger no-show", ride.Notes)
}

func TestRideService_CancelRide_CompletedFails(t *testing.T) {
	rideService, _, _ := setupServiceTest(t)
	ctx := context.Background()

	_, err := rideService.CreateDriver(ctx, driverRequest("d-1"))
	require.NoError(t, err)
	_, err = rideService.CreatePassenger(ctx, passengerRequest("p-1"))
	require.NoError(t, err)
	_, err = rideService.CreateRide(ctx, rideRequest("r-1", "p-1"))
	require.NoError(t, err)
	_, err = rideService.AcceptRide(ctx, "r-1", acceptRequest("d-1"))
	require.NoError(t, err)
	_, err = rideService.StartRide(ctx, "r-1")
	require.NoError(t, err)
	_, err = rideService.CompleteRide(ctx, "r-1", completeRequest(35000, "CASH"))
	require.NoError(t, err)

	_, err = rideService.CancelRide(ctx, "r-1", models.CancelRideRequest{Reason: "too late"})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidTransition(err))
}

func TestRideService_CreateDriver_MintsUUIDWhenIDOmitted(t *testing.T) {
	rideService, _, _ := setupServiceTest(t)
	ctx := context.Background()

	req := driverRequest("")
	driver, err := rideService.CreateDriver(ctx, req)
	require.NoError(t, err)
	assert.NotEmpty(t, driver.UserID())
}

func TestRideService_CreateDriver_DuplicateID(t *testing.T) {
	rideService, _, _ := setupServiceTest(t)
	ctx := context.Background()

	_, err := rideService.CreateDriver(ctx, driverRequest("d-1"))
	require.NoError(t, err)

	_, err = rideService.CreateDriver(ctx, driverRequest("d-1"))
	require.Error(t, err)
	assert.True(t, apperrors.IsAlreadyExists(err))
}

func TestRideService_AddFavoriteDriver_Idempotent(t *testing.T) {
	rideService, _, repo := setupServiceTest(t)
	ctx := context.Background()

	_, err := rideService.CreatePassenger(ctx, passengerRequest("p-1"))
	require.NoError(t, err)

	require.NoError(t, rideService.AddFavoriteDriver(ctx, "p-1", models.FavoriteDriverRequest{DriverID: "d-1"}))
	require.NoError(t, rideService.AddFavoriteDriver(ctx, "p-1", models.FavoriteDriverRequest{DriverID: "d-1"}))

	user, err := repo.GetUserByID(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"d-1"}, user.(*models.Passenger).FavoriteDrivers)

	require.NoError(t, rideService.RemoveFavoriteDriver(ctx, "p-1", "d-1"))
	user, err = repo.GetUserByID(ctx, "p-1")
	require.NoError(t, err)
	assert.Empty(t, user.(*models.Passenger).FavoriteDrivers)
}

func TestRideService_AddFunds_RejectsNonPositive(t *testing.T) {
	rideService, _, repo := setupServiceTest(t)
	ctx := context.Background()

	_, err := rideService.CreatePassenger(ctx, passengerRequest("p-1"))
	require.NoError(t, err)

	err = rideService.AddFundsToPassenger(ctx, "p-1", models.AddFundsRequest{Amount: -500})
	require.Error(t, err)

	err = rideService.AddFundsToPassenger(ctx, "p-1", models.AddFundsRequest{Amount: 0})
	require.Error(t, err)

	user, err := repo.GetUserByID(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, user.(*models.Passenger).WalletBalance)
}

func TestRideService_RateDriver(t *testing.T) {
	rideService, _, repo := setupServiceTest(t)
	ctx := context.Background()

	_, err := rideService.CreateDriver(ctx, driverRequest("d-1"))
	require.NoError(t, err)

	require.NoError(t, rideService.RateDriver(ctx, "d-1", models.RateDriverRequest{RideID: "r-1", Rating: 5}))
	require.NoError(t, rideService.RateDriver(ctx, "d-1", models.RateDriverRequest{RideID: "r-2", Rating: 4, Comment: "good trip"}))

	err = rideService.RateDriver(ctx, "d-1", models.RateDriverRequest{RideID: "r-3", Rating: 9})
	require.Error(t, err)

	user, err := repo.GetUserByID(ctx, "d-1")
	require.NoError(t, err)
	assert.Equal(t, 4.5, user.(*models.Driver).AverageRating())
}

func TestRideService_DriverProfileUpdates(t *testing.T) {
	rideService, _, repo := setupServiceTest(t)
	ctx := context.Background()

	_, err := rideService.CreateDriver(ctx, driverRequest("d-1"))
	require.NoError(t, err)

	require.NoError(t, rideService.UpdateDriverLocation(ctx, "d-1", models.UpdateLocationRequest{Latitude: 6.2442, Longitude: -75.5812}))
	require.NoError(t, rideService.UpdateDriverVehicle(ctx, "d-1", models.Vehicle{Plate: "XYZ789", Brand: "Kia", Model: "Picanto", Year: 2023, Color: "Red", Type: "HATCHBACK"}))

	user, err := repo.GetUserByID(ctx, "d-1")
	require.NoError(t, err)
	driver := user.(*models.Driver)
	require.NotNil(t, driver.CurrentLocation)
	assert.Equal(t, 6.2442, driver.CurrentLocation.Latitude)
	assert.Equal(t, "XYZ789", driver.Vehicle.Plate)

	err = rideService.UpdateDriverLocation(ctx, "missing", models.UpdateLocationRequest{Latitude: 1, Longitude: 1})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	// Out-of-range coordinates are rejected before the lookup
	err = rideService.UpdateDriverLocation(ctx, "d-1", models.UpdateLocationRequest{Latitude: 120, Longitude: 0})
	require.Error(t, err)
}

func TestRideService_UpdatePassengerLocation(t *testing.T) {
	rideService, _, repo := setupServiceTest(t)
	ctx := context.Background()

	_, err := rideService.CreatePassenger(ctx, passengerRequest("p-1"))
	require.NoError(t, err)
	require.NoError(t, rideService.UpdatePassengerLocation(ctx, "p-1", models.UpdateLocationRequest{Latitude: 4.7110, Longitude: -74.0721}))

	user, err := repo.GetUserByID(ctx, "p-1")
	require.NoError(t, err)
	passenger := user.(*models.Passenger)
	require.NotNil(t, passenger.CurrentLocation)
	assert.Equal(t, 4.7110, passenger.CurrentLocation.Latitude)
}

func TestQueryService_ListAvailableDrivers(t *testing.T) {
	rideService, queryService, _ := setupServiceTest(t)
	ctx := context.Background()

	_, err := rideService.CreateDriver(ctx, driverRequest("d-1"))
	require.NoError(t, err)
	_, err = rideService.CreateDriver(ctx, driverRequest("d-2"))
	require.NoError(t, err)
	require.NoError(t, rideService.SetDriverAvailability(ctx, "d-2", models.SetAvailabilityRequest{Available: boolPtr(false)}))

	available, err := queryService.ListAvailableDrivers(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "d-1", available[0]["id"])
}

func TestQueryService_GetUserInfo(t *testing.T) {
	rideService, queryService, _ := setupServiceTest(t)
	ctx := context.Background()

	_, err := rideService.CreateDriver(ctx, driverRequest("d-1"))
	require.NoError(t, err)

	info, err := queryService.GetUserInfo(ctx, "d-1")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Carlos Gomez", info["fullName"])
	assert.Equal(t, models.RoleDriver, info["role"])

	info, err = queryService.GetUserInfo(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestQueryService_Statistics(t *testing.T) {
	rideService, queryService, _ := setupServiceTest(t)
	ctx := context.Background()

	_, err := rideService.CreateDriver(ctx, driverRequest("d-1"))
	require.NoError(t, err)
	_, err = rideService.CreatePassenger(ctx, passengerRequest("p-1"))
	require.NoError(t, err)
	_, err = rideService.CreateRide(ctx, rideRequest("r-1", "p-1"))
	require.NoError(t, err)
	_, err = rideService.CancelRide(ctx, "r-1", models.CancelRideRequest{Reason: "no-show"})
	require.NoError(t, err)

	stats, err := queryService.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 1, stats.Drivers)
	assert.Equal(t, 1, stats.Passengers)
	assert.Equal(t, 1, stats.TotalRides)
	assert.Equal(t, 1, stats.CancelledRides)
	assert.Equal(t, 0, stats.RequestedRides)
}
