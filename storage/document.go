package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"

	"godrive/apperrors"
	"godrive/database"
	"godrive/models"
)

// DocumentRepository persists each entity as one JSONB document in Postgres.
// The table's BIGSERIAL pk is the physical key; the entity id lives in its
// own TEXT column as the logical key, the way the documents were keyed in
// earlier deployments of this system. Updates rewrite the whole document so
// the replace discipline matches the in-memory backend exactly.
type DocumentRepository struct {
	db database.DBPool
}

// NewDocumentRepository creates a document store over the given pool.
func NewDocumentRepository(db database.DBPool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// EnsureSchema creates the two document tables and their lookup indexes if
// they do not exist yet. Called once by the owning process after connect.
func (d *DocumentRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			pk  BIGSERIAL PRIMARY KEY,
			id  TEXT NOT NULL UNIQUE,
			doc JSONB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_role ON users ((doc->>'role'))`,
		`CREATE TABLE IF NOT EXISTS rides (
			pk  BIGSERIAL PRIMARY KEY,
			id  TEXT NOT NULL UNIQUE,
			doc JSONB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rides_status ON rides ((doc->>'status'))`,
		`CREATE INDEX IF NOT EXISTS idx_rides_passenger ON rides ((doc->>'passengerId'))`,
		`CREATE INDEX IF NOT EXISTS idx_rides_driver ON rides ((doc->>'driverId'))`,
	}
	for _, stmt := range statements {
		if _, err := d.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure document schema: %w", err)
		}
	}
	log.Println("Document store schema ensured (users, rides)")
	return nil
}

// ============================================
// USERS
// ============================================

// CreateUser inserts the user document, rejecting duplicate logical ids.
func (d *DocumentRepository) CreateUser(ctx context.Context, user models.User) error {
	doc, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user document: %w", err)
	}
	tag, err := d.db.Exec(ctx,
		`INSERT INTO users (id, doc) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		user.UserID(), doc,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewAlreadyExists(apperrors.KindUser, user.UserID())
	}
	return nil
}

// GetUserByID fetches and decodes one user document, or nil when absent.
func (d *DocumentRepository) GetUserByID(ctx context.Context, id string) (models.User, error) {
	var doc []byte
	err := d.db.QueryRow(ctx, `SELECT doc FROM users WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch user document: %w", err)
	}
	return models.UnmarshalUser(doc)
}

// GetAllUsers lists every user document, ordered by logical id.
func (d *DocumentRepository) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return d.queryUsers(ctx, `SELECT doc FROM users ORDER BY id`)
}

// GetUsersByRole lists the user documents holding the given role.
func (d *DocumentRepository) GetUsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	return d.queryUsers(ctx, `SELECT doc FROM users WHERE doc->>'role' = $1 ORDER BY id`, string(role))
}

// SearchUsersByName lists users whose full name contains the query,
// case-insensitively.
func (d *DocumentRepository) SearchUsersByName(ctx context.Context, name string) ([]models.User, error) {
	pattern := "%" + name + "%"
	return d.queryUsers(ctx,
		`SELECT doc FROM users WHERE (doc->>'firstName') || ' ' || (doc->>'lastName') ILIKE $1 ORDER BY id`,
		pattern,
	)
}

// UpdateUser rewrites the whole document. Missing ids fail with NotFound.
func (d *DocumentRepository) UpdateUser(ctx context.Context, id string, user models.User) error {
	doc, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user document: %w", err)
	}
	tag, err := d.db.Exec(ctx, `UPDATE users SET doc = $2 WHERE id = $1`, id, doc)
	if err != nil {
		return fmt.Errorf("failed to update user document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFound(apperrors.KindUser, id)
	}
	return nil
}

// DeleteUser removes the document, reporting whether it existed.
func (d *DocumentRepository) DeleteUser(ctx context.Context, id string) (bool, error) {
	tag, err := d.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete user document: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteAllUsers wipes the users collection, reporting how many documents
// were removed.
func (d *DocumentRepository) DeleteAllUsers(ctx context.Context) (int64, error) {
	tag, err := d.db.Exec(ctx, `DELETE FROM users`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user documents: %w", err)
	}
	return tag.RowsAffected(), nil
}

// queryUsers runs a doc-listing query and decodes each row through the role
// dispatch in models.UnmarshalUser.
func (d *DocumentRepository) queryUsers(ctx context.Context, sql string, args ...any) ([]models.User, error) {
	rows, err := d.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query user documents: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan user document: %w", err)
		}
		user, err := models.UnmarshalUser(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("user document iteration error: %w", err)
	}
	return users, nil
}

// ============================================
// RIDES
// ============================================

// CreateRide inserts the ride document, rejecting duplicate logical ids.
func (d *DocumentRepository) CreateRide(ctx context.Context, ride *models.Ride) error {
	doc, err := json.Marshal(ride)
	if err != nil {
		return fmt.Errorf("failed to encode ride document: %w", err)
	}
	tag, err := d.db.Exec(ctx,
		`INSERT INTO rides (id, doc) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		ride.ID, doc,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ride document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewAlreadyExists(apperrors.KindRide, ride.ID)
	}
	return nil
}

// GetRideByID fetches and decodes one ride document, or nil when absent.
func (d *DocumentRepository) GetRideByID(ctx context.Context, id string) (*models.Ride, error) {
	var doc []byte
	err := d.db.QueryRow(ctx, `SELECT doc FROM rides WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch ride document: %w", err)
	}
	var ride models.Ride
	if err := json.Unmarshal(doc, &ride); err != nil {
		return nil, fmt.Errorf("failed to decode ride document: %w", err)
	}
	return &ride, nil
}

// GetAllRides lists every ride document, ordered by logical id.
func (d *DocumentRepository) GetAllRides(ctx context.Context) ([]*models.Ride, error) {
	return d.queryRides(ctx, `SELECT doc FROM rides ORDER BY id`)
}

// GetRidesByStatus lists the ride documents in the given status.
func (d *DocumentRepository) GetRidesByStatus(ctx context.Context, status models.RideStatus) ([]*models.Ride, error) {
	return d.queryRides(ctx, `SELECT doc FROM rides WHERE doc->>'status' = $1 ORDER BY id`, string(status))
}

// GetRidesByPassenger lists the ride documents owned by a passenger.
func (d *DocumentRepository) GetRidesByPassenger(ctx context.Context, passengerID string) ([]*models.Ride, error) {
	return d.queryRides(ctx, `SELECT doc FROM rides WHERE doc->>'passengerId' = $1 ORDER BY id`, passengerID)
}

// GetRidesByDriver lists the ride documents bound to a driver.
func (d *DocumentRepository) GetRidesByDriver(ctx context.Context, driverID string) ([]*models.Ride, error) {
	return d.queryRides(ctx, `SELECT doc FROM rides WHERE doc->>'driverId' = $1 ORDER BY id`, driverID)
}

// UpdateRide rewrites the whole document. Missing ids fail with NotFound.
func (d *DocumentRepository) UpdateRide(ctx context.Context, id string, ride *models.Ride) error {
	doc, err := json.Marshal(ride)
	if err != nil {
		return fmt.Errorf("failed to encode ride document: %w", err)
	}
	tag, err := d.db.Exec(ctx, `UPDATE rides SET doc = $2 WHERE id = $1`, id, doc)
	if err != nil {
		return fmt.Errorf("failed to update ride document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFound(apperrors.KindRide, id)
	}
	return nil
}

// DeleteRide removes the document, reporting whether it existed.
func (d *DocumentRepository) DeleteRide(ctx context.Context, id string) (bool, error) {
	tag, err := d.db.Exec(ctx, `DELETE FROM rides WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete ride document: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// queryRides runs a doc-listing query and decodes each row.
func (d *DocumentRepository) queryRides(ctx context.Context, sql string, args ...any) ([]*models.Ride, error) {
	rows, err := d.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ride documents: %w", err)
	}
	defer rows.Close()

	rides := []*models.Ride{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan ride document: %w", err)
		}
		var ride models.Ride
		if err := json.Unmarshal(doc, &ride); err != nil {
			return nil, fmt.Errorf("failed to decode ride document: %w", err)
		}
		rides = append(rides, &ride)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ride document iteration error: %w", err)
	}
	return rides, nil
}

// ============================================
// STATISTICS
// ============================================

// GetStatistics pulls full snapshots and tallies the counts fresh, the same
// derivation the in-memory backend uses.
func (d *DocumentRepository) GetStatistics(ctx context.Context) (Statistics, error) {
	users, err := d.GetAllUsers(ctx)
	if err != nil {
		return Statistics{}, err
	}
	rides, err := d.GetAllRides(ctx)
	if err != nil {
		return Statistics{}, err
	}
	return tallyStatistics(users, rides), nil
}
