package tracking

import (
	"errors"
	"strings"

	"github.com/eldavido7/taxi-tracker/internal/presence"
	"github.com/eldavido7/taxi-tracker/internal/session"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	// Liveness data must never be served from a cache.
	r.Use(func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "no-store")
		return c.Next()
	})

	r.Post("/location", func(c *fiber.Ctx) error {
		var req ReportRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		key := keyFrom(req.SessionID, req.DriverID)
		if key.Zero() {
			return fiber.NewError(fiber.StatusBadRequest, ErrMissingKey.Error())
		}
		if req.Latitude == nil || req.Longitude == nil {
			return fiber.NewError(fiber.StatusBadRequest, ErrMissingCoord.Error())
		}

		p, err := svc.Report(c.Context(), key, *req.Latitude, *req.Longitude, bearerFromHeader(c.Get("Authorization")))
		switch {
		case errors.Is(err, ErrUnauthorized):
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		case errors.Is(err, presence.ErrInvalidCoordinate), errors.Is(err, presence.ErrEmptyKey):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(p)
	})

	r.Get("/location", func(c *fiber.Ctx) error {
		key := keyFrom(c.Query("session_id"), c.Query("driver_id"))
		if key.Zero() {
			return fiber.NewError(fiber.StatusBadRequest, ErrMissingKey.Error())
		}

		result, err := svc.Poll(c.Context(), key)
		switch {
		case errors.Is(err, presence.ErrNotFound), errors.Is(err, session.ErrNotFound):
			return fiber.NewError(fiber.StatusNotFound, "position not found")
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(result)
	})

	r.Delete("/location", func(c *fiber.Ctx) error {
		key := keyFrom(c.Query("session_id"), c.Query("driver_id"))
		if key.Zero() {
			return fiber.NewError(fiber.StatusBadRequest, ErrMissingKey.Error())
		}

		err := svc.Stop(c.Context(), key)
		switch {
		case errors.Is(err, presence.ErrNotFound), errors.Is(err, session.ErrNotFound):
			return fiber.NewError(fiber.StatusNotFound, "position not found")
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// keyFrom picks the canonical key: session id wins when both are supplied.
func keyFrom(sessionID, driverID string) Key {
	if sessionID != "" {
		return SessionKey(sessionID)
	}
	if driverID != "" {
		return DriverKey(driverID)
	}
	return Key{}
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
