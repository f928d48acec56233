package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"godrive/apperrors"
	"godrive/models"
	"godrive/storage"
)

// RideService is the single authority coupling ride lifecycle transitions to
// user account state. It holds no state of its own beyond the repository
// reference; every operation is read -> validate -> mutate -> persist.
//
// A single mutex spans each mutating operation, so the ride write and the
// account writes of a completion commit as one unit within this process.
// The service assumes it is the only writer; coordinating multiple server
// processes against one document store is out of scope.
type RideService struct {
	mu        sync.Mutex
	validator *validator.Validate
	repo      storage.Repository
}

// NewRideService creates a RideService over the given repository.
func NewRideService(repo storage.Repository) *RideService {
	return &RideService{
		validator: validator.New(),
		repo:      repo,
	}
}

// ============================================
// DRIVER MANAGEMENT
// ============================================

// CreateDriver registers a new driver. A UUID is minted when the request
// carries no id.
func (s *RideService) CreateDriver(ctx context.Context, req models.CreateDriverRequest) (*models.Driver, error) {
	if err := s.validator.Struct(req); err != nil {
		log.Printf("Validation error creating driver: %v", err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	driver := models.NewDriver(id, req.FirstName, req.LastName, req.Email, req.Contact, req.DriverID, req.LicenseNumber, req.Vehicle)
	if err := s.repo.CreateUser(ctx, driver); err != nil {
		log.Printf("Error creating driver %s: %v", id, err)
		return nil, err
	}

	log.Printf("Driver created: %s (%s)", id, driver.FullName())
	return driver, nil
}

// UpdateDriverLocation stores a driver's last reported position.
func (s *RideService) UpdateDriverLocation(ctx context.Context, driverID string, req models.UpdateLocationRequest) error {
	if err := s.validator.Struct(req); err != nil {
		log.Printf("Validation error updating location of driver %s: %v", driverID, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	driver, err := s.driverByID(ctx, driverID)
	if err != nil {
		return err
	}
	driver.UpdateLocation(req.Latitude, req.Longitude)
	return s.persistUser(ctx, driverID, driver)
}

// SetDriverAvailability toggles whether a driver is taking rides.
func (s *RideService) SetDriverAvailability(ctx context.Context, driverID string, req models.SetAvailabilityRequest) error {
	if err := s.validator.Struct(req); err != nil {
		log.Printf("Validation error updating availability of driver %s: %v", driverID, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	driver, err := s.driverByID(ctx, driverID)
	if err != nil {
		return err
	}
	driver.SetAvailability(*req.Available)
	log.Printf("Driver %s availability set to %t", driverID, *req.Available)
	return s.persistUser(ctx, driverID, driver)
}

// RateDriver appends a rating to a driver's history, stamped with now.
func (s *RideService) RateDriver(ctx context.Context, driverID string, req models.RateDriverRequest) error {
	if err := s.validator.Struct(req); err != nil {
		log.Printf("Validation error rating driver %s: %v", driverID, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	driver, err := s.driverByID(ctx, driverID)
	if err != nil {
		return err
	}
	rating := models.Rating{
		RideID:  req.RideID,
		Rating:  req.Rating,
		Comment: req.Comment,
		Date:    time.Now(),
	}
	if err := driver.AddRating(rating); err != nil {
		return err
	}
	return s.persistUser(ctx, driverID, driver)
}

// UpdateDriverVehicle replaces a driver's vehicle description.
func (s *RideService) UpdateDriverVehicle(ctx context.Context, driverID string, vehicle models.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	driver, err := s.driverByID(ctx, driverID)
	if err != nil {
		return err
	}
	driver.UpdateVehicle(vehicle)
	return s.persistUser(ctx, driverID, driver)
}

// ============================================
// PASSENGER MANAGEMENT
// ============================================

// CreatePassenger registers a new passenger with an empty wallet.
func (s *RideService) CreatePassenger(ctx context.Context, req models.CreatePassengerRequest) (*models.Passenger, error) {
	if err := s.validator.Struct(req); err != nil {
		log.Printf("Validation error creating passenger: %v", err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	passenger := models.NewPassenger(id, req.FirstName, req.LastName, req.Email, req.Contact, req.PassengerID)
	if err := s.repo.CreateUser(ctx, passenger); err != nil {
		log.Printf("Error creating passenger %s: %v", id, err)
		return nil, err
	}

	log.Printf("Passenger created: %s (%s)", id, passenger.FullName())
	return passenger, nil
}

// AddFundsToPassenger tops up a passenger wallet. The amount must be
// positive; a failed call leaves the balance unchanged.
func (s *RideService) AddFundsToPassenger(ctx context.Context, passengerID string, req models.AddFundsRequest) error {
	if err := s.validator.Struct(req); err != nil {
		log.Printf("Validation error adding funds for passenger %s: %v", passengerID, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	passenger, err := s.passengerByID(ctx, passengerID)
	if err != nil {
		return err
	}
	if err := passenger.AddFunds(req.Amount); err != nil {
		return err
	}
	log.Printf("Added %.2f to wallet of passenger %s (balance now %.2f)", req.Amount, passengerID, passenger.WalletBalance)
	return s.persistUser(ctx, passengerID, passenger)
}

// AddFavoriteDriver marks a driver as a passenger favorite. Adding the same
// driver twice keeps a single entry.
func (s *RideService) AddFavoriteDriver(ctx context.Context, passengerID string, req models.FavoriteDriverRequest) error {
	if err := s.validator.Struct(req); err != nil {
		log.Printf("Validation error adding favorite driver for passenger %s: %v", passengerID, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	passenger, err := s.passengerByID(ctx, passengerID)
	if err != nil {
		return err
	}
	passenger.AddFavoriteDriver(req.DriverID)
	return s.persistUser(ctx, passengerID, passenger)
}

// RemoveFavoriteDriver drops a driver from a passenger's favorites.
func (s *RideService) RemoveFavoriteDriver(ctx context.Context, passengerID, driverID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	passenger, err := s.passengerByID(ctx, passengerID)
	if err != nil {
		return err
	}
	passenger.RemoveFavoriteDriver(driverID)
	return s.persistUser(ctx, passengerID, passenger)
}

// UpdatePassengerLocation stores a passenger's last reported position.
func (s *RideService) UpdatePassengerLocation(ctx context.Context, passengerID string, req models.UpdateLocationRequest) error {
	if err := s.validator.Struct(req); err != nil {
		log.Printf("Validation error updating location of passenger %s: %v", passengerID, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	passenger, err := s.passengerByID(ctx, passengerID)
	if err != nil {
		return err
	}
	passenger.UpdateLocation(req.Latitude, req.Longitude)
	return s.persistUser(ctx, passengerID, passenger)
}

// ============================================
// ADMINISTRATOR MANAGEMENT
// ============================================

// CreateAdministrator registers a new administrator. AccessLevel defaults
// to 2 when the request leaves it at zero.
func (s *RideService) CreateAdministrator(ctx context.Context, req models.CreateAdministratorRequest) (*models.Administrator, error) {
	if err := s.validator.Struct(req); err != nil {
		log.Printf("Validation error creating administrator: %v", err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	admin := models.NewAdministrator(id, req.FirstName, req.LastName, req.Email, req.Contact, req.AdminID, req.Department, req.AccessLevel)
	if err := s.repo.CreateUser(ctx, admin); err != nil {
		log.Printf("Error creating administrator %s: %v", id, err)
		return nil, err
	}

	log.Printf("Administrator created: %s (%s, level %d)", id, admin.FullName(), admin.AccessLevel)
	return admin, nil
}

// ============================================
// RIDE LIFECYCLE
// ============================================

// CreateRide opens a ride in REQUESTED state. The passenger must exist; if
// it does not, nothing is stored.
func (s *RideService) CreateRide(ctx context.Context, req models.CreateRideRequest) (*models.Ride, error) {
	if err := s.validator.Struct(req); err != nil {
		log.Printf("Validation error creating ride: %v", err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.passengerByID(ctx, req.PassengerID); err != nil {
		return nil, err
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	ride := models.NewRide(id, req.PassengerID, req.Origin, req.Destination, req.RequestedPrice, req.Distance, req.EstimatedDuration)
	if err := s.repo.CreateRide(ctx, ride); err != nil {
		log.Printf("Error creating ride %s: %v", id, err)
		return nil, err
	}

	log.Printf("Ride created: %s for passenger %s (requested price %.2f)", id, req.PassengerID, req.RequestedPrice)
	return ride, nil
}

// AcceptRide binds a driver to a REQUESTED ride. The driver must exist
// under the DRIVER role; availability is not checked, an unavailable driver
// can still accept (long-standing behavior, kept).
func (s *RideService) AcceptRide(ctx context.Context, rideID string, req models.AcceptRideRequest) (*models.Ride, error) {
	if err := s.validator.Struct(req); err != nil {
		log.Printf("Validation error accepting ride %s: %v", rideID, err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ride, err := s.rideByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if _, err := s.driverByID(ctx, req.DriverID); err != nil {
		return nil, err
	}
	if err := ride.Accept(req.DriverID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRide(ctx, rideID, ride); err != nil {
		return nil, fmt.Errorf("failed to persist accepted ride: %w", err)
	}

	log.Printf("Ride %s accepted by driver %s", rideID, req.DriverID)
	return ride, nil
}

// StartRide moves an ACCEPTED ride into IN_PROGRESS.
func (s *RideService) StartRide(ctx context.Context, rideID string) (*models.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ride, err := s.rideByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if err := ride.Start(); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRide(ctx, rideID, ride); err != nil {
		return nil, fmt.Errorf("failed to persist started ride: %w", err)
	}

	log.Printf("Ride %s started", rideID)
	return ride, nil
}

// CompleteRide settles an IN_PROGRESS ride: the ride moves to COMPLETED
// with the final price and payment, the bound driver's totalRides and
// earnings grow, and the passenger's ridesCount and payment history grow
// (debiting the wallet for WALLET payments). The final price is validated
// before the first write, so a bad request fails with nothing persisted;
// the service mutex then makes the three writes one logical unit within
// this process.
func (s *RideService) CompleteRide(ctx context.Context, rideID string, req models.CompleteRideRequest) (*models.Ride, error) {
	if err := s.validator.Struct(req); err != nil {
		log.Printf("Validation error completing ride %s: %v", rideID, err)
		return nil, err
	}
	payment := req.Payment.ToPayment()

	s.mu.Lock()
	defer s.mu.Unlock()

	ride, err := s.rideByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if err := ride.Complete(req.FinalPrice, payment); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRide(ctx, rideID, ride); err != nil {
		return nil, fmt.Errorf("failed to persist completed ride: %w", err)
	}

	// Driver side: counter and earnings.
	if ride.DriverID != "" {
		driver, err := s.driverByID(ctx, ride.DriverID)
		if err != nil {
			// The driver record vanished after acceptance; the ride is
			// already completed so surface the inconsistency loudly.
			log.Printf("Warning: completed ride %s references missing driver %s: %v", rideID, ride.DriverID, err)
		} else {
			driver.IncrementRides()
			if err := driver.AddEarnings(req.FinalPrice); err != nil {
				return nil, err
			}
			if err := s.persistUser(ctx, ride.DriverID, driver); err != nil {
				return nil, err
			}
		}
	}

	// Passenger side: counter and payment history.
	passenger, err := s.passengerByID(ctx, ride.PassengerID)
	if err != nil {
		log.Printf("Warning: completed ride %s references missing passenger %s: %v", rideID, ride.PassengerID, err)
	} else {
		passenger.IncrementRides()
		passenger.AddPayment(payment)
		if err := s.persistUser(ctx, ride.PassengerID, passenger); err != nil {
			return nil, err
		}
	}

	log.Printf("Ride %s completed (final price %.2f, %s)", rideID, req.FinalPrice, payment.Method)
	return ride, nil
}

// CancelRide cancels any non-COMPLETED ride, storing the reason in the
// notes. No account-side effects.
func (s *RideService) CancelRide(ctx context.Context, rideID string, req models.CancelRideRequest) (*models.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ride, err := s.rideByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if err := ride.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRide(ctx, rideID, ride); err != nil {
		return nil, fmt.Errorf("failed to persist cancelled ride: %w", err)
	}

	log.Printf("Ride %s cancelled (reason: %q)", rideID, req.Reason)
	return ride, nil
}

// ============================================
// ADMINISTRATIVE DELETES
// ============================================

// DeleteUser removes a user record, reporting whether it existed.
func (s *RideService) DeleteUser(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted, err := s.repo.DeleteUser(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		log.Printf("User %s deleted", id)
	}
	return deleted, nil
}

// DeleteAllUsers wipes every user record, reporting how many were removed.
func (s *RideService) DeleteAllUsers(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count, err := s.repo.DeleteAllUsers(ctx)
	if err != nil {
		return 0, err
	}
	log.Printf("Deleted all users (%d records)", count)
	return count, nil
}

// DeleteRide removes a ride record, reporting whether it existed.
func (s *RideService) DeleteRide(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted, err := s.repo.DeleteRide(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		log.Printf("Ride %s deleted", id)
	}
	return deleted, nil
}

// ============================================
// RESOLVE HELPERS
// ============================================

// driverByID resolves a user as a Driver. Absent or wrong-role users fail
// the same way, with NotFound(Driver).
func (s *RideService) driverByID(ctx context.Context, id string) (*models.Driver, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve driver %s: %w", id, err)
	}
	driver, ok := user.(*models.Driver)
	if user == nil || !ok {
		return nil, apperrors.NewNotFound(apperrors.KindDriver, id)
	}
	return driver, nil
}

// passengerByID resolves a user as a Passenger. Absent or wrong-role users
// fail the same way, with NotFound(Passenger).
func (s *RideService) passengerByID(ctx context.Context, id string) (*models.Passenger, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve passenger %s: %w", id, err)
	}
	passenger, ok := user.(*models.Passenger)
	if user == nil || !ok {
		return nil, apperrors.NewNotFound(apperrors.KindPassenger, id)
	}
	return passenger, nil
}

// rideByID resolves a ride or fails with NotFound(Ride).
func (s *RideService) rideByID(ctx context.Context, id string) (*models.Ride, error) {
	ride, err := s.repo.GetRideByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ride %s: %w", id, err)
	}
	if ride == nil {
		return nil, apperrors.NewNotFound(apperrors.KindRide, id)
	}
	return ride, nil
}

// persistUser writes a mutated user back through the repository contract.
func (s *RideService) persistUser(ctx context.Context, id string, user models.User) error {
	if err := s.repo.UpdateUser(ctx, id, user); err != nil {
		return fmt.Errorf("failed to persist user %s: %w", id, err)
	}
	return nil
}
