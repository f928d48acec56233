package storage

import (
	"context"

	"godrive/models"
)

// Repository is the canonical keeper of User and Ride state. Two backends
// implement it: an in-memory map (MemoryRepository) and a Postgres-backed
// document store (DocumentRepository). Both follow the same discipline:
// updates replace the stored record wholesale, never merge fields, and every
// read hands back an independent snapshot the caller can mutate freely.
//
// Lookups return a nil entity (and nil error) when the id is absent; errors
// are reserved for storage failures. Creates fail with AlreadyExists on a
// duplicate id, updates with NotFound on a missing one. Deletes report
// whether a record existed.
type Repository interface {
	CreateUser(ctx context.Context, user models.User) error
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)
	GetUsersByRole(ctx context.Context, role models.Role) ([]models.User, error)
	SearchUsersByName(ctx context.Context, name string) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, user models.User) error
	DeleteUser(ctx context.Context, id string) (bool, error)
	DeleteAllUsers(ctx context.Context) (int64, error)

	CreateRide(ctx context.Context, ride *models.Ride) error
	GetRideByID(ctx context.Context, id string) (*models.Ride, error)
	GetAllRides(ctx context.Context) ([]*models.Ride, error)
	GetRidesByStatus(ctx context.Context, status models.RideStatus) ([]*models.Ride, error)
	GetRidesByPassenger(ctx context.Context, passengerID string) ([]*models.Ride, error)
	GetRidesByDriver(ctx context.Context, driverID string) ([]*models.Ride, error)
	UpdateRide(ctx context.Context, id string, ride *models.Ride) error
	DeleteRide(ctx context.Context, id string) (bool, error)

	// GetStatistics computes derived counts fresh from current state on
	// every call. It is never cached.
	GetStatistics(ctx context.Context) (Statistics, error)
}

// Statistics is the derived count block served by /api/statistics.
type Statistics struct {
	TotalUsers      int `json:"totalUsers"`
	ActiveUsers     int `json:"activeUsers"`
	Drivers         int `json:"drivers"`
	Passengers      int `json:"passengers"`
	Administrators  int `json:"administrators"`
	TotalRides      int `json:"totalRides"`
	RequestedRides  int `json:"requestedRides"`
	AcceptedRides   int `json:"acceptedRides"`
	InProgressRides int `json:"inProgressRides"`
	CompletedRides  int `json:"completedRides"`
	CancelledRides  int `json:"cancelledRides"`
}

// tallyStatistics derives the statistics block from full snapshots. Both
// backends funnel through here so the counts cannot drift between them.
func tallyStatistics(users []models.User, rides []*models.Ride) Statistics {
	stats := Statistics{
		TotalUsers: len(users),
		TotalRides: len(rides),
	}
	for _, u := range users {
		if u.Base().IsActive {
			stats.ActiveUsers++
		}
		switch u.UserRole() {
		case models.RoleDriver:
			stats.Drivers++
		case models.RolePassenger:
			stats.Passengers++
		case models.RoleAdministrator:
			stats.Administrators++
		}
	}
	for _, r := range rides {
		switch r.Status {
		case models.RideStatusRequested:
			stats.RequestedRides++
		case models.RideStatusAccepted:
			stats.AcceptedRides++
		case models.RideStatusInProgress:
			stats.InProgressRides++
		case models.RideStatusCompleted:
			stats.CompletedRides++
		case models.RideStatusCancelled:
			stats.CancelledRides++
		}
	}
	return stats
}
