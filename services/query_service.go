package services

import (
	"context"
	"log"

	"godrive/models"
	"godrive/storage"
)

// QueryService is the read-only façade over the repository: listings,
// single-entity display projections and statistics. It never mutates and
// never exposes internal references; users come back as display-info maps,
// rides as repository snapshots.
type QueryService struct {
	repo storage.Repository
}

// NewQueryService creates a QueryService over the given repository.
func NewQueryService(repo storage.Repository) *QueryService {
	return &QueryService{repo: repo}
}

// GetUserInfo returns the display projection of one user, or nil when the
// id is unknown.
func (q *QueryService) GetUserInfo(ctx context.Context, id string) (map[string]any, error) {
	user, err := q.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return user.DisplayInfo(), nil
}

// ListAllUsers projects every user for display.
func (q *QueryService) ListAllUsers(ctx context.Context) ([]map[string]any, error) {
	users, err := q.repo.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	return projectUsers(users), nil
}

// ListAllDrivers projects every driver for display.
func (q *QueryService) ListAllDrivers(ctx context.Context) ([]map[string]any, error) {
	users, err := q.repo.GetUsersByRole(ctx, models.RoleDriver)
	if err != nil {
		return nil, err
	}
	return projectUsers(users), nil
}

// ListAvailableDrivers projects the drivers currently taking rides.
func (q *QueryService) ListAvailableDrivers(ctx context.Context) ([]map[string]any, error) {
	users, err := q.repo.GetUsersByRole(ctx, models.RoleDriver)
	if err != nil {
		return nil, err
	}
	available := []map[string]any{}
	for _, u := range users {
		if driver, ok := u.(*models.Driver); ok && driver.AvailableForRides {
			available = append(available, driver.DisplayInfo())
		}
	}
	return available, nil
}

// ListAllPassengers projects every passenger for display.
func (q *QueryService) ListAllPassengers(ctx context.Context) ([]map[string]any, error) {
	users, err := q.repo.GetUsersByRole(ctx, models.RolePassenger)
	if err != nil {
		return nil, err
	}
	return projectUsers(users), nil
}

// SearchUsersByName projects the users whose full name contains the query.
func (q *QueryService) SearchUsersByName(ctx context.Context, name string) ([]map[string]any, error) {
	users, err := q.repo.SearchUsersByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return projectUsers(users), nil
}

// GetRideInfo returns a snapshot of one ride, or nil when the id is unknown.
func (q *QueryService) GetRideInfo(ctx context.Context, id string) (*models.Ride, error) {
	return q.repo.GetRideByID(ctx, id)
}

// ListAllRides returns snapshots of every ride.
func (q *QueryService) ListAllRides(ctx context.Context) ([]*models.Ride, error) {
	return q.repo.GetAllRides(ctx)
}

// ListAvailableRides returns the rides still waiting for a driver
// (status REQUESTED).
func (q *QueryService) ListAvailableRides(ctx context.Context) ([]*models.Ride, error) {
	return q.repo.GetRidesByStatus(ctx, models.RideStatusRequested)
}

// ListRidesByPassenger returns the rides owned by one passenger.
func (q *QueryService) ListRidesByPassenger(ctx context.Context, passengerID string) ([]*models.Ride, error) {
	return q.repo.GetRidesByPassenger(ctx, passengerID)
}

// ListRidesByDriver returns the rides bound to one driver.
func (q *QueryService) ListRidesByDriver(ctx context.Context, driverID string) ([]*models.Ride, error) {
	return q.repo.GetRidesByDriver(ctx, driverID)
}

// GetStatistics returns the derived counts, computed fresh on every call.
func (q *QueryService) GetStatistics(ctx context.Context) (storage.Statistics, error) {
	stats, err := q.repo.GetStatistics(ctx)
	if err != nil {
		log.Printf("Error computing statistics: %v", err)
		return storage.Statistics{}, err
	}
	return stats, nil
}

// projectUsers maps entities to their display-safe projections.
func projectUsers(users []models.User) []map[string]any {
	out := make([]map[string]any, 0, len(users))
	for _, u := range users {
		out = append(out, u.DisplayInfo())
	}
	return out
}
