package models

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"time"

	"godrive/apperrors"
)

// Role identifies which variant of User a record is. It is fixed at
// construction and never changes afterwards.
type Role string

const (
	RoleDriver        Role = "DRIVER"
	RolePassenger     Role = "PASSENGER"
	RoleAdministrator Role = "ADMINISTRATOR"
)

// emailPattern is the basic address check applied whenever an email is set.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Address is the structured postal part of a contact.
type Address struct {
	Street    string   `json:"street"`
	City      string   `json:"city"`
	Country   string   `json:"country"`
	ZipCode   string   `json:"zipCode"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Contact groups the ways to reach a user.
type Contact struct {
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Address Address `json:"address"`
}

// GeoPoint is an opaque last-known position. It is stored and echoed back,
// never used for any computation.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Rating is one review left for a driver or passenger after a ride.
type Rating struct {
	RideID  string    `json:"rideId"`
	Rating  int       `json:"rating"` // 1 to 5
	Comment string    `json:"comment"`
	Date    time.Time `json:"date"`
}

// UserBase holds the fields common to every user variant. Role-specific
// structs embed it, so the persisted document stays flat.
type UserBase struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Contact      Contact   `json:"contact"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	IsActive     bool      `json:"isActive"`
	ProfilePhoto string    `json:"profilePhoto,omitempty"`
}

// User is the capability contract every role variant implements. Callers go
// through these methods (and the variant's own mutators) rather than poking
// at another variant's fields, so role-specific invariants stay local.
type User interface {
	// UserID returns the unique, immutable id.
	UserID() string
	// UserRole returns the role fixed at construction.
	UserRole() Role
	// Base exposes the common fields for mutation through the base setters.
	Base() *UserBase
	// Permissions derives the permission list for this variant.
	Permissions() []string
	// DisplayInfo builds a display-safe projection: a fresh map holding no
	// references to internal state.
	DisplayInfo() map[string]any
	// Clone returns a deep, independent copy.
	Clone() User
}

func newUserBase(id, firstName, lastName, email string, contact Contact, role Role) UserBase {
	return UserBase{
		ID:        id,
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Contact:   contact,
		Role:      role,
		CreatedAt: time.Now(),
		IsActive:  true,
	}
}

// UserID returns the unique id.
func (b *UserBase) UserID() string { return b.ID }

// UserRole returns the role fixed at construction.
func (b *UserBase) UserRole() Role { return b.Role }

// Base returns the common fields.
func (b *UserBase) Base() *UserBase { return b }

// FullName joins first and last name for display.
func (b *UserBase) FullName() string {
	return fmt.Sprintf("%s %s", b.FirstName, b.LastName)
}

// SetEmail updates the email after checking it against the basic address
// pattern. The stored value is left untouched on failure.
func (b *UserBase) SetEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return apperrors.NewInvalidArgument("email", "malformed email address")
	}
	b.Email = email
	return nil
}

// SetContact replaces the contact block.
func (b *UserBase) SetContact(contact Contact) { b.Contact = contact }

// Activate marks the account active.
func (b *UserBase) Activate() { b.IsActive = true }

// Deactivate marks the account inactive.
func (b *UserBase) Deactivate() { b.IsActive = false }

// SetProfilePhoto stores the photo URL.
func (b *UserBase) SetProfilePhoto(url string) { b.ProfilePhoto = url }

// baseDisplayInfo builds the common half of a display projection.
func (b *UserBase) baseDisplayInfo() map[string]any {
	return map[string]any{
		"id":           b.ID,
		"fullName":     b.FullName(),
		"email":        b.Email,
		"contact":      b.Contact,
		"role":         b.Role,
		"createdAt":    b.CreatedAt.Format(time.RFC3339),
		"isActive":     b.IsActive,
		"profilePhoto": b.ProfilePhoto,
	}
}

// averageRating returns the arithmetic mean of the rating values rounded to
// 2 decimal places, or 0 when there are no ratings.
func averageRating(ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(ratings))
	return math.Round(avg*100) / 100
}

// validateRating rejects rating values outside 1..5.
func validateRating(r Rating) error {
	if r.Rating < 1 || r.Rating > 5 {
		return apperrors.NewInvalidArgument("rating", "rating must be between 1 and 5")
	}
	return nil
}

// ============================================
// DRIVER
// ============================================

// Driver is a user who accepts and performs rides. TotalRides and Earnings
// only ever grow, and only through ride completion.
type Driver struct {
	UserBase
	DriverID          string    `json:"driverId"`
	LicenseNumber     string    `json:"licenseNumber"`
	Vehicle           Vehicle   `json:"vehicle"`
	Ratings           []Rating  `json:"ratings"`
	TotalRides        int       `json:"totalRides"`
	AvailableForRides bool      `json:"availableForRides"`
	Earnings          float64   `json:"earnings"`
	CurrentLocation   *GeoPoint `json:"currentLocation,omitempty"`
}

// Vehicle describes the car a driver operates.
type Vehicle struct {
	Plate string `json:"plate"`
	Brand string `json:"brand"`
	Model string `json:"model"`
	Year  int    `json:"year"`
	Color string `json:"color"`
	Type  string `json:"type"` // SEDAN, SUV, HATCHBACK, VAN, MOTORCYCLE
}

// NewDriver constructs a Driver with an empty rating history, zero earnings
// and availability switched on.
func NewDriver(id, firstName, lastName, email string, contact Contact, driverID, licenseNumber string, vehicle Vehicle) *Driver {
	return &Driver{
		UserBase:          newUserBase(id, firstName, lastName, email, contact, RoleDriver),
		DriverID:          driverID,
		LicenseNumber:     licenseNumber,
		Vehicle:           vehicle,
		Ratings:           []Rating{},
		AvailableForRides: true,
	}
}

// Permissions lists what a driver may do.
func (d *Driver) Permissions() []string {
	return []string{
		"view_ride_requests",
		"accept_rides",
		"start_ride",
		"complete_ride",
		"view_earnings",
		"update_location",
		"set_availability",
	}
}

// DisplayInfo builds the display-safe projection of the driver.
func (d *Driver) DisplayInfo() map[string]any {
	info := d.baseDisplayInfo()
	info["driverId"] = d.DriverID
	info["licenseNumber"] = d.LicenseNumber
	info["vehicle"] = d.Vehicle
	info["averageRating"] = d.AverageRating()
	info["totalRides"] = d.TotalRides
	info["isAvailable"] = d.AvailableForRides
	info["earnings"] = d.Earnings
	return info
}

// AddRating appends a rating after range-checking it.
func (d *Driver) AddRating(r Rating) error {
	if err := validateRating(r); err != nil {
		return err
	}
	d.Ratings = append(d.Ratings, r)
	return nil
}

// AverageRating computes the mean rating, 0 when unrated.
func (d *Driver) AverageRating() float64 { return averageRating(d.Ratings) }

// IncrementRides bumps the completed-ride counter.
func (d *Driver) IncrementRides() { d.TotalRides++ }

// AddEarnings accumulates earnings from a completed ride. Earnings never
// decrease, so negative amounts are rejected.
func (d *Driver) AddEarnings(amount float64) error {
	if amount < 0 {
		return apperrors.NewInvalidArgument("amount", "earnings amount cannot be negative")
	}
	d.Earnings += amount
	return nil
}

// SetAvailability toggles whether the driver is taking rides.
func (d *Driver) SetAvailability(available bool) { d.AvailableForRides = available }

// UpdateLocation stores the last reported position, last write wins.
func (d *Driver) UpdateLocation(latitude, longitude float64) {
	d.CurrentLocation = &GeoPoint{Latitude: latitude, Longitude: longitude}
}

// UpdateVehicle replaces the vehicle description.
func (d *Driver) UpdateVehicle(v Vehicle) { d.Vehicle = v }

// RatingsCopy returns an independent copy of the rating history.
func (d *Driver) RatingsCopy() []Rating {
	out := make([]Rating, len(d.Ratings))
	copy(out, d.Ratings)
	return out
}

// Clone returns a deep copy of the driver.
func (d *Driver) Clone() User {
	dup := *d
	dup.Ratings = d.RatingsCopy()
	if d.CurrentLocation != nil {
		loc := *d.CurrentLocation
		dup.CurrentLocation = &loc
	}
	return &dup
}

// ============================================
// PASSENGER
// ============================================

// Passenger is a user who requests rides, holds a wallet and keeps a payment
// history. RidesCount only grows, and only through ride completion.
type Passenger struct {
	UserBase
	PassengerID     string    `json:"passengerId"`
	Ratings         []Rating  `json:"ratings"`
	RidesCount      int       `json:"ridesCount"`
	FavoriteDrivers []string  `json:"favoriteDrivers"`
	PaymentHistory  []Payment `json:"paymentHistory"`
	WalletBalance   float64   `json:"walletBalance"`
	CurrentLocation *GeoPoint `json:"currentLocation,omitempty"`
}

// NewPassenger constructs a Passenger with an empty wallet and history.
func NewPassenger(id, firstName, lastName, email string, contact Contact, passengerID string) *Passenger {
	return &Passenger{
		UserBase:        newUserBase(id, firstName, lastName, email, contact, RolePassenger),
		PassengerID:     passengerID,
		Ratings:         []Rating{},
		FavoriteDrivers: []string{},
		PaymentHistory:  []Payment{},
	}
}

// Permissions lists what a passenger may do.
func (p *Passenger) Permissions() []string {
	return []string{
		"request_ride",
		"view_available_drivers",
		"rate_driver",
		"view_ride_history",
		"add_funds",
		"manage_payment_methods",
		"save_favorite_drivers",
	}
}

// DisplayInfo builds the display-safe projection of the passenger.
func (p *Passenger) DisplayInfo() map[string]any {
	info := p.baseDisplayInfo()
	info["passengerId"] = p.PassengerID
	info["averageRating"] = p.AverageRating()
	info["totalRides"] = p.RidesCount
	info["favoriteDriversCount"] = len(p.FavoriteDrivers)
	info["walletBalance"] = p.WalletBalance
	return info
}

// AddRating appends a rating after range-checking it.
func (p *Passenger) AddRating(r Rating) error {
	if err := validateRating(r); err != nil {
		return err
	}
	p.Ratings = append(p.Ratings, r)
	return nil
}

// AverageRating computes the mean rating, 0 when unrated.
func (p *Passenger) AverageRating() float64 { return averageRating(p.Ratings) }

// IncrementRides bumps the completed-ride counter.
func (p *Passenger) IncrementRides() { p.RidesCount++ }

// AddFavoriteDriver records a driver id, ignoring duplicates.
func (p *Passenger) AddFavoriteDriver(driverID string) {
	for _, id := range p.FavoriteDrivers {
		if id == driverID {
			return
		}
	}
	p.FavoriteDrivers = append(p.FavoriteDrivers, driverID)
}

// RemoveFavoriteDriver drops a driver id from the favorites, if present.
func (p *Passenger) RemoveFavoriteDriver(driverID string) {
	kept := p.FavoriteDrivers[:0]
	for _, id := range p.FavoriteDrivers {
		if id != driverID {
			kept = append(kept, id)
		}
	}
	p.FavoriteDrivers = kept
}

// AddPayment appends to the payment history. WALLET payments debit the
// wallet balance; there is deliberately no floor check, so the balance can
// go negative.
func (p *Passenger) AddPayment(payment Payment) {
	p.PaymentHistory = append(p.PaymentHistory, payment)
	if payment.Method == PaymentMethodWallet {
		p.WalletBalance -= payment.Amount
	}
}

// AddFunds tops up the wallet. Non-positive amounts are rejected and leave
// the balance unchanged.
func (p *Passenger) AddFunds(amount float64) error {
	if amount <= 0 {
		return apperrors.NewInvalidArgument("amount", "amount must be greater than 0")
	}
	p.WalletBalance += amount
	return nil
}

// UpdateLocation stores the last reported position, last write wins.
func (p *Passenger) UpdateLocation(latitude, longitude float64) {
	p.CurrentLocation = &GeoPoint{Latitude: latitude, Longitude: longitude}
}

// RatingsCopy returns an independent copy of the rating history.
func (p *Passenger) RatingsCopy() []Rating {
	out := make([]Rating, len(p.Ratings))
	copy(out, p.Ratings)
	return out
}

// FavoriteDriversCopy returns an independent copy of the favorites set.
func (p *Passenger) FavoriteDriversCopy() []string {
	out := make([]string, len(p.FavoriteDrivers))
	copy(out, p.FavoriteDrivers)
	return out
}

// PaymentHistoryCopy returns an independent copy of the payment history.
func (p *Passenger) PaymentHistoryCopy() []Payment {
	out := make([]Payment, len(p.PaymentHistory))
	copy(out, p.PaymentHistory)
	return out
}

// Clone returns a deep copy of the passenger.
func (p *Passenger) Clone() User {
	dup := *p
	dup.Ratings = p.RatingsCopy()
	dup.FavoriteDrivers = p.FavoriteDriversCopy()
	dup.PaymentHistory = p.PaymentHistoryCopy()
	if p.CurrentLocation != nil {
		loc := *p.CurrentLocation
		dup.CurrentLocation = &loc
	}
	return &dup
}

// ============================================
// ADMINISTRATOR
// ============================================

// Administrator is a back-office user. Its permission set is derived from
// the access level; nothing beyond the fields below is persisted.
type Administrator struct {
	UserBase
	AdminID       string   `json:"adminId"`
	Department    string   `json:"department"`
	AccessLevel   int      `json:"accessLevel"` // 1 to 5
	ManagedCities []string `json:"managedCities"`
}

// NewAdministrator constructs an Administrator. A zero accessLevel falls
// back to the default level 2.
func NewAdministrator(id, firstName, lastName, email string, contact Contact, adminID, department string, accessLevel int) *Administrator {
	if accessLevel == 0 {
		accessLevel = 2
	}
	return &Administrator{
		UserBase:      newUserBase(id, firstName, lastName, email, contact, RoleAdministrator),
		AdminID:       adminID,
		Department:    department,
		AccessLevel:   accessLevel,
		ManagedCities: []string{},
	}
}

// Permissions derives the permission list: the base set, extended from
// access level 3 upwards.
func (a *Administrator) Permissions() []string {
	base := []string{
		"view_all_users",
		"view_all_rides",
		"manage_drivers",
		"manage_passengers",
		"view_reports",
		"handle_disputes",
	}
	if a.AccessLevel >= 3 {
		return append(base,
			"manage_admins",
			"system_settings",
			"financial_reports",
			"ban_users",
			"full_access",
		)
	}
	return base
}

// DisplayInfo builds the display-safe projection of the administrator.
func (a *Administrator) DisplayInfo() map[string]any {
	info := a.baseDisplayInfo()
	info["adminId"] = a.AdminID
	info["department"] = a.Department
	info["accessLevel"] = a.AccessLevel
	info["managedCities"] = a.ManagedCitiesCopy()
	info["permissions"] = len(a.Permissions())
	return info
}

// SetAccessLevel changes the access level, enforcing the 1..5 range.
func (a *Administrator) SetAccessLevel(level int) error {
	if level < 1 || level > 5 {
		return apperrors.NewInvalidArgument("accessLevel", "access level must be between 1 and 5")
	}
	a.AccessLevel = level
	return nil
}

// AddManagedCity records a city, ignoring duplicates.
func (a *Administrator) AddManagedCity(city string) {
	for _, c := range a.ManagedCities {
		if c == city {
			return
		}
	}
	a.ManagedCities = append(a.ManagedCities, city)
}

// RemoveManagedCity drops a city from the managed set, if present.
func (a *Administrator) RemoveManagedCity(city string) {
	kept := a.ManagedCities[:0]
	for _, c := range a.ManagedCities {
		if c != city {
			kept = append(kept, c)
		}
	}
	a.ManagedCities = kept
}

// ManagedCitiesCopy returns an independent copy of the managed cities.
func (a *Administrator) ManagedCitiesCopy() []string {
	out := make([]string, len(a.ManagedCities))
	copy(out, a.ManagedCities)
	return out
}

// Clone returns a deep copy of the administrator.
func (a *Administrator) Clone() User {
	dup := *a
	dup.ManagedCities = a.ManagedCitiesCopy()
	return &dup
}

// ============================================
// DOCUMENT DECODING
// ============================================

// UnmarshalUser decodes a persisted user document into the concrete variant
// named by its role field. This is the single role dispatch point for the
// document store.
func UnmarshalUser(data []byte) (User, error) {
	var probe struct {
		Role Role `json:"role"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to read user role: %w", err)
	}

	switch probe.Role {
	case RoleDriver:
		var d Driver
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("failed to decode driver document: %w", err)
		}
		return &d, nil
	case RolePassenger:
		var p Passenger
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode passenger document: %w", err)
		}
		return &p, nil
	case RoleAdministrator:
		var a Administrator
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("failed to decode administrator document: %w", err)
		}
		return &a, nil
	default:
		return nil, fmt.Errorf("unknown user role %q in stored document", probe.Role)
	}
}
