package handlers

import (
	"log"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"godrive/models"
	"godrive/observability"
	"godrive/services"
)

// RideHandler serves the ride lifecycle endpoints.
type RideHandler struct {
	rideService  *services.RideService
	queryService *services.QueryService
	metrics      *observability.Metrics
}

// NewRideHandler creates a RideHandler instance.
func NewRideHandler(rideService *services.RideService, queryService *services.QueryService, metrics *observability.Metrics) *RideHandler {
	return &RideHandler{
		rideService:  rideService,
		queryService: queryService,
		metrics:      metrics,
	}
}

// SetupRideRoutes registers all ride routes on the API group.
func SetupRideRoutes(api fiber.Router, h *RideHandler) {
	api.Post("/rides", h.CreateRide)
	api.Get("/rides", h.ListRides)
	api.Get("/rides/available", h.ListAvailableRides)
	api.Get("/rides/:id", h.GetRide)
	api.Post("/rides/:id/accept", h.AcceptRide)
	api.Post("/rides/:id/start", h.StartRide)
	api.Post("/rides/:id/complete", h.CompleteRide)
	api.Post("/rides/:id/cancel", h.CancelRide)
	api.Delete("/rides/:id", h.DeleteRide)

	log.Println("Ride routes registered")
}

// CreateRide handles POST /api/rides.
func (h *RideHandler) CreateRide(c *fiber.Ctx) error {
	var req models.CreateRideRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}

	ride, err := h.rideService.CreateRide(c.Context(), req)
	if err != nil {
		return respondError(c, err, "Failed to create ride")
	}

	h.metrics.RidesCreated.Inc()
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": "Ride created successfully",
		"data":    ride,
	})
}

// ListRides handles GET /api/rides.
func (h *RideHandler) ListRides(c *fiber.Ctx) error {
	rides, err := h.queryService.ListAllRides(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to list rides")
	}
	return c.JSON(rides)
}

// ListAvailableRides handles GET /api/rides/available. A ride is available
// while it is still in REQUESTED state.
func (h *RideHandler) ListAvailableRides(c *fiber.Ctx) error {
	rides, err := h.queryService.ListAvailableRides(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to list available rides")
	}
	return c.JSON(rides)
}

// GetRide handles GET /api/rides/:id.
func (h *RideHandler) GetRide(c *fiber.Ctx) error {
	id := c.Params("id")
	ride, err := h.queryService.GetRideInfo(c.Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to fetch ride")
	}
	if ride == nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": "Ride not found",
		})
	}
	return c.JSON(ride)
}

// AcceptRide handles POST /api/rides/:id/accept.
func (h *RideHandler) AcceptRide(c *fiber.Ctx) error {
	id := c.Params("id")
	var req models.AcceptRideRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}

	ride, err := h.rideService.AcceptRide(c.Context(), id, req)
	if err != nil {
		return respondError(c, err, "Failed to accept ride")
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Ride accepted successfully",
		"data":    ride,
	})
}

// StartRide handles POST /api/rides/:id/start.
func (h *RideHandler) StartRide(c *fiber.Ctx) error {
	id := c.Params("id")

	ride, err := h.rideService.StartRide(c.Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to start ride")
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Ride started successfully",
		"data":    ride,
	})
}

// CompleteRide handles POST /api/rides/:id/complete.
func (h *RideHandler) CompleteRide(c *fiber.Ctx) error {
	id := c.Params("id")
	var req models.CompleteRideRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}

	ride, err := h.rideService.CompleteRide(c.Context(), id, req)
	if err != nil {
		return respondError(c, err, "Failed to complete ride")
	}

	h.metrics.RidesCompleted.Inc()
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Ride completed successfully",
		"data":    ride,
	})
}

// CancelRide handles POST /api/rides/:id/cancel.
func (h *RideHandler) CancelRide(c *fiber.Ctx) error {
	id := c.Params("id")
	var req models.CancelRideRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}

	ride, err := h.rideService.CancelRide(c.Context(), id, req)
	if err != nil {
		return respondError(c, err, "Failed to cancel ride")
	}

	h.metrics.RidesCancelled.Inc()
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Ride cancelled successfully",
		"data":    ride,
	})
}

// DeleteRide handles DELETE /api/rides/:id.
func (h *RideHandler) DeleteRide(c *fiber.Ctx) error {
	id := c.Params("id")
	deleted, err := h.rideService.DeleteRide(c.Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to delete ride")
	}
	if !deleted {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": "Ride not found",
		})
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Ride deleted successfully",
		"id":      id,
	})
}
