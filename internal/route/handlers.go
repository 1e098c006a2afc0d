package route

import (
	"errors"

	"github.com/eldavido7/taxi-tracker/internal/shared/geo"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/directions", func(c *fiber.Ctx) error {
		code, body, err := svc.Directions(c.Query("origin"), c.Query("destination"))
		if errors.Is(err, ErrMissingPoints) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "directions upstream unavailable")
		}

		c.Set(fiber.HeaderCacheControl, "no-store")
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Status(code).Send(body)
	})

	r.Get("/estimate", func(c *fiber.Ctx) error {
		km, err := svc.Estimate(c.Query("origin"), c.Query("destination"))
		if errors.Is(err, ErrMissingPoints) || errors.Is(err, geo.ErrBadLatLng) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"distance_km": km})
	})
}
