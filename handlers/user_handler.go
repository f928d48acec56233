package handlers

import (
	"log"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"godrive/models"
	"godrive/observability"
	"godrive/services"
)

// UserHandler serves the user-facing part of the API: drivers, passengers,
// administrators, generic user lookup and the statistics block.
type UserHandler struct {
	rideService  *services.RideService
	queryService *services.QueryService
	metrics      *observability.Metrics
}

// NewUserHandler creates a UserHandler instance.
func NewUserHandler(rideService *services.RideService, queryService *services.QueryService, metrics *observability.Metrics) *UserHandler {
	return &UserHandler{
		rideService:  rideService,
		queryService: queryService,
		metrics:      metrics,
	}
}

// SetupUserRoutes registers all user routes on the API group.
func SetupUserRoutes(api fiber.Router, h *UserHandler) {
	api.Get("/statistics", h.GetStatistics)

	api.Get("/users", h.ListUsers)
	api.Get("/users/:id", h.GetUser)
	api.Delete("/users", h.DeleteAllUsers)
	api.Delete("/users/:id", h.DeleteUser)

	api.Post("/drivers", h.CreateDriver)
	api.Get("/drivers", h.ListDrivers)
	api.Get("/drivers/available", h.ListAvailableDrivers)
	api.Put("/drivers/:id/location", h.UpdateDriverLocation)
	api.Put("/drivers/:id/availability", h.SetDriverAvailability)
	api.Post("/drivers/:id/ratings", h.RateDriver)
	api.Get("/drivers/:id/rides", h.ListDriverRides)

	api.Post("/passengers", h.CreatePassenger)
	api.Get("/passengers", h.ListPassengers)
	api.Post("/passengers/:id/add-funds", h.AddFunds)
	api.Post("/passengers/:id/favorite-drivers", h.AddFavoriteDriver)
	api.Delete("/passengers/:id/favorite-drivers/:driverId", h.RemoveFavoriteDriver)
	api.Get("/passengers/:id/rides", h.ListPassengerRides)
	api.Put("/passengers/:id/location", h.UpdatePassengerLocation)

	api.Post("/administrators", h.CreateAdministrator)

	log.Println("User routes registered")
}

// GetStatistics handles GET /api/statistics.
func (h *UserHandler) GetStatistics(c *fiber.Ctx) error {
	stats, err := h.queryService.GetStatistics(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to compute statistics")
	}
	return c.JSON(stats)
}

// ListUsers handles GET /api/users. An optional ?name= query switches to a
// case-insensitive full-name search.
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	if name := c.Query("name"); name != "" {
		users, err := h.queryService.SearchUsersByName(c.Context(), name)
		if err != nil {
			return respondError(c, err, "Failed to search users")
		}
		return c.JSON(users)
	}

	users, err := h.queryService.ListAllUsers(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to list users")
	}
	return c.JSON(users)
}

// GetUser handles GET /api/users/:id.
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id := c.Params("id")
	user, err := h.queryService.GetUserInfo(c.Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to fetch user")
	}
	if user == nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": "User not found",
		})
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /api/users/:id.
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	deleted, err := h.rideService.DeleteUser(c.Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to delete user")
	}
	if !deleted {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": "User not found",
		})
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "User deleted successfully",
		"id":      id,
	})
}

// DeleteAllUsers handles DELETE /api/users.
func (h *UserHandler) DeleteAllUsers(c *fiber.Ctx) error {
	count, err := h.rideService.DeleteAllUsers(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to delete users")
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "All users deleted",
		"count":   count,
	})
}

// ============================================
// DRIVERS
// ============================================

// CreateDriver handles POST /api/drivers.
func (h *UserHandler) CreateDriver(c *fiber.Ctx) error {
	var req models.CreateDriverRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}

	driver, err := h.rideService.CreateDriver(c.Context(), req)
	if err != nil {
		return respondError(c, err, "Failed to create driver")
	}

	h.metrics.UsersCreated.WithLabelValues(string(models.RoleDriver)).Inc()
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": "Driver created successfully",
		"data":    driver.DisplayInfo(),
	})
}

// ListDrivers handles GET /api/drivers.
func (h *UserHandler) ListDrivers(c *fiber.Ctx) error {
	drivers, err := h.queryService.ListAllDrivers(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to list drivers")
	}
	return c.JSON(drivers)
}

// ListAvailableDrivers handles GET /api/drivers/available.
func (h *UserHandler) ListAvailableDrivers(c *fiber.Ctx) error {
	drivers, err := h.queryService.ListAvailableDrivers(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to list available drivers")
	}
	return c.JSON(drivers)
}

// UpdateDriverLocation handles PUT /api/drivers/:id/location.
func (h *UserHandler) UpdateDriverLocation(c *fiber.Ctx) error {
	id := c.Params("id")
	var req models.UpdateLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}

	if err := h.rideService.UpdateDriverLocation(c.Context(), id, req); err != nil {
		return respondError(c, err, "Failed to update driver location")
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Location updated successfully",
	})
}

// SetDriverAvailability handles PUT /api/drivers/:id/availability.
func (h *UserHandler) SetDriverAvailability(c *fiber.Ctx) error {
	id := c.Params("id")
	var req models.SetAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}

	if err := h.rideService.SetDriverAvailability(c.Context(), id, req); err != nil {
		return respondError(c, err, "Failed to update driver availability")
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Availability updated successfully",
	})
}

// RateDriver handles POST /api/drivers/:id/ratings.
func (h *UserHandler) RateDriver(c *fiber.Ctx) error {
	id := c.Params("id")
	var req models.RateDriverRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}

	if err := h.rideService.RateDriver(c.Context(), id, req); err != nil {
		return respondError(c, err, "Failed to rate driver")
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": "Rating added successfully",
	})
}

// ListDriverRides handles GET /api/drivers/:id/rides.
func (h *UserHandler) ListDriverRides(c *fiber.Ctx) error {
	id := c.Params("id")
	rides, err := h.queryService.ListRidesByDriver(c.Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to list driver rides")
	}
	return c.JSON(rides)
}

// ============================================
// PASSENGERS
// ============================================

// CreatePassenger handles POST /api/passengers.
func (h *UserHandler) CreatePassenger(c *fiber.Ctx) error {
	var req models.CreatePassengerRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}

	passenger, err := h.rideService.CreatePassenger(c.Context(), req)
	if err != nil {
		return respondError(c, err, "Failed to create passenger")
	}

	h.metrics.UsersCreated.WithLabelValues(string(models.RolePassenger)).Inc()
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": "Passenger created successfully",
		"data":    passenger.DisplayInfo(),
	})
}

// ListPassengers handles GET /api/passengers.
func (h *UserHandler) ListPassengers(c *fiber.Ctx) error {
	passengers, err := h.queryService.ListAllPassengers(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to list passengers")
	}
	return c.JSON(passengers)
}

// AddFunds handles POST /api/passengers/:id/add-funds.
func (h *UserHandler) AddFunds(c *fiber.Ctx) error {
	id := c.Params("id")
	var req models.AddFundsRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}

	if err := h.rideService.AddFundsToPassenger(c.Context(), id, req); err != nil {
		return respondError(c, err, "Failed to add funds")
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Funds added successfully",
	})
}

// AddFavoriteDriver handles POST /api/passengers/:id/favorite-drivers.
func (h *UserHandler) AddFavoriteDriver(c *fiber.Ctx) error {
	id := c.Params("id")
	var req models.FavoriteDriverRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}

	if err := h.rideService.AddFavoriteDriver(c.Context(), id, req); err != nil {
		return respondError(c, err, "Failed to add favorite driver")
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Favorite driver added successfully",
	})
}

// RemoveFavoriteDriver handles DELETE /api/passengers/:id/favorite-drivers/:driverId.
func (h *UserHandler) RemoveFavoriteDriver(c *fiber.Ctx) error {
	id := c.Params("id")
	driverID := c.Params("driverId")

	if err := h.rideService.RemoveFavoriteDriver(c.Context(), id, driverID); err != nil {
		return respondError(c, err, "Failed to remove favorite driver")
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Favorite driver removed successfully",
	})
}

// ListPassengerRides handles GET /api/passengers/:id/rides.
func (h *UserHandler) ListPassengerRides(c *fiber.Ctx) error {
	id := c.Params("id")
	rides, err := h.queryService.ListRidesByPassenger(c.Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to list passenger rides")
	}
	return c.JSON(rides)
}

// UpdatePassengerLocation handles PUT /api/passengers/:id/location.
func (h *UserHandler) UpdatePassengerLocation(c *fiber.Ctx) error {
	id := c.Params("id")
	var req models.UpdateLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}

	if err := h.rideService.UpdatePassengerLocation(c.Context(), id, req); err != nil {
		return respondError(c, err, "Failed to update passenger location")
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Location updated successfully",
	})
}

// ============================================
// ADMINISTRATORS
// ============================================

// CreateAdministrator handles POST /api/administrators.
func (h *UserHandler) CreateAdministrator(c *fiber.Ctx) error {
	var req models.CreateAdministratorRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}

	admin, err := h.rideService.CreateAdministrator(c.Context(), req)
	if err != nil {
		return respondError(c, err, "Failed to create administrator")
	}

	h.metrics.UsersCreated.WithLabelValues(string(models.RoleAdministrator)).Inc()
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": "Administrator created successfully",
		"data":    admin.DisplayInfo(),
	})
}
