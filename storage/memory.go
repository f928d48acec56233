package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"godrive/apperrors"
	"godrive/models"
)

// MemoryRepository keeps all state in two RWMutex-guarded maps keyed by id.
// Entities are cloned on the way in and on the way out, so no caller ever
// holds a reference into the canonical copy.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
	rides map[string]*models.Ride
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users: make(map[string]models.User),
		rides: make(map[string]*models.Ride),
	}
}

// ============================================
// USERS
// ============================================

// CreateUser stores a new user, rejecting duplicate ids.
func (m *MemoryRepository) CreateUser(_ context.Context, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := user.UserID()
	if _, exists := m.users[id]; exists {
		return apperrors.NewAlreadyExists(apperrors.KindUser, id)
	}
	m.users[id] = user.Clone()
	return nil
}

// GetUserByID returns a snapshot of the user, or nil when absent.
func (m *MemoryRepository) GetUserByID(_ context.Context, id string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return user.Clone(), nil
}

// GetAllUsers returns snapshots of every user, sorted by id so listings are
// deterministic.
func (m *MemoryRepository) GetAllUsers(_ context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotUsers(func(models.User) bool { return true }), nil
}

// GetUsersByRole returns snapshots of the users holding the given role.
func (m *MemoryRepository) GetUsersByRole(_ context.Context, role models.Role) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotUsers(func(u models.User) bool { return u.UserRole() == role }), nil
}

// SearchUsersByName returns users whose full name contains the query,
// case-insensitively.
func (m *MemoryRepository) SearchUsersByName(_ context.Context, name string) ([]models.User, error) {
	query := strings.ToLower(name)
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotUsers(func(u models.User) bool {
		return strings.Contains(strings.ToLower(u.Base().FullName()), query)
	}), nil
}

// UpdateUser replaces the stored record wholesale. Missing ids fail with
// NotFound.
func (m *MemoryRepository) UpdateUser(_ context.Context, id string, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[id]; !exists {
		return apperrors.NewNotFound(apperrors.KindUser, id)
	}
	m.users[id] = user.Clone()
	return nil
}

// DeleteUser removes the record, reporting whether it existed.
func (m *MemoryRepository) DeleteUser(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[id]; !exists {
		return false, nil
	}
	delete(m.users, id)
	return true, nil
}

// DeleteAllUsers wipes every user record and reports how many were removed.
func (m *MemoryRepository) DeleteAllUsers(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := int64(len(m.users))
	m.users = make(map[string]models.User)
	return count, nil
}

// snapshotUsers clones every user matching the filter, ID-sorted. Callers
// must hold at least the read lock.
func (m *MemoryRepository) snapshotUsers(match func(models.User) bool) []models.User {
	out := []models.User{}
	for _, u := range m.users {
		if match(u) {
			out = append(out, u.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID() < out[j].UserID() })
	return out
}

// ============================================
// RIDES
// ============================================

// CreateRide stores a new ride, rejecting duplicate ids.
func (m *MemoryRepository) CreateRide(_ context.Context, ride *models.Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.rides[ride.ID]; exists {
		return apperrors.NewAlreadyExists(apperrors.KindRide, ride.ID)
	}
	m.rides[ride.ID] = ride.Clone()
	return nil
}

// GetRideByID returns a snapshot of the ride, or nil when absent.
func (m *MemoryRepository) GetRideByID(_ context.Context, id string) (*models.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, nil
	}
	return ride.Clone(), nil
}

// GetAllRides returns snapshots of every ride, sorted by id.
func (m *MemoryRepository) GetAllRides(_ context.Context) ([]*models.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotRides(func(*models.Ride) bool { return true }), nil
}

// GetRidesByStatus returns snapshots of the rides in the given status.
func (m *MemoryRepository) GetRidesByStatus(_ context.Context, status models.RideStatus) ([]*models.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotRides(func(r *models.Ride) bool { return r.Status == status }), nil
}

// GetRidesByPassenger returns snapshots of the rides owned by a passenger.
func (m *MemoryRepository) GetRidesByPassenger(_ context.Context, passengerID string) ([]*models.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotRides(func(r *models.Ride) bool { return r.PassengerID == passengerID }), nil
}

// GetRidesByDriver returns snapshots of the rides bound to a driver.
func (m *MemoryRepository) GetRidesByDriver(_ context.Context, driverID string) ([]*models.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotRides(func(r *models.Ride) bool { return r.DriverID == driverID }), nil
}

// UpdateRide replaces the stored record wholesale. Missing ids fail with
// NotFound.
func (m *MemoryRepository) UpdateRide(_ context.Context, id string, ride *models.Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.rides[id]; !exists {
		return apperrors.NewNotFound(apperrors.KindRide, id)
	}
	m.rides[id] = ride.Clone()
	return nil
}

// DeleteRide removes the record, reporting whether it existed.
func (m *MemoryRepository) DeleteRide(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.rides[id]; !exists {
		return false, nil
	}
	delete(m.rides, id)
	return true, nil
}

// snapshotRides clones every ride matching the filter, ID-sorted. Callers
// must hold at least the read lock.
func (m *MemoryRepository) snapshotRides(match func(*models.Ride) bool) []*models.Ride {
	out := []*models.Ride{}
	for _, r := range m.rides {
		if match(r) {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ============================================
// STATISTICS
// ============================================

// GetStatistics tallies the derived counts from current state.
func (m *MemoryRepository) GetStatistics(_ context.Context) (Statistics, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	rides := make([]*models.Ride, 0, len(m.rides))
	for _, r := range m.rides {
		rides = append(rides, r)
	}
	return tallyStatistics(users, rides), nil
}
