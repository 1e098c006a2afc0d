package session

import (
	"errors"

	"github.com/eldavido7/taxi-tracker/internal/shared/geo"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	// Session status is what viewers poll to learn a trip has ended; a cached
	// response would keep serving "active".
	r.Use(func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "no-store")
		return c.Next()
	})

	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req Session
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		req.UserID, _ = c.Locals("user_id").(string)

		sess, err := svc.Create(c.Context(), req)
		if errors.Is(err, ErrMissingFields) || errors.Is(err, geo.ErrBadLatLng) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(sess)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		sessions, err := svc.ListByUser(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if sessions == nil {
			sessions = []Session{}
		}
		return c.JSON(sessions)
	})

	// Viewer access is capability-based: holding the session id is enough.
	r.Get("/:id", func(c *fiber.Ctx) error {
		sess, err := svc.Get(c.Context(), c.Params("id"))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(sess)
	})

	r.Post("/:id/end", authMiddleware, func(c *fiber.Ctx) error {
		var req struct {
			DistanceKm  *float64 `json:"distance_km"`
			DurationSec *int64   `json:"duration_sec"`
		}
		if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		userID, _ := c.Locals("user_id").(string)

		sess, err := svc.End(c.Context(), c.Params("id"), userID, req.DistanceKm, req.DurationSec)
		switch {
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		case errors.Is(err, ErrAlreadyEnded):
			return fiber.NewError(fiber.StatusConflict, "session already ended")
		case errors.Is(err, ErrNotOwner):
			return fiber.NewError(fiber.StatusForbidden, "session owned by another user")
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(sess)
	})
}
