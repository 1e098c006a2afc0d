package driver

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	qrcode "github.com/skip2/go-qrcode"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler, appURL string) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req Driver
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		req.UserID, _ = c.Locals("user_id").(string)

		d, err := svc.Create(c.Context(), req)
		if errors.Is(err, ErrMissingFields) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(d)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		drivers, err := svc.ListByUser(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if drivers == nil {
			drivers = []Driver{}
		}
		return c.JSON(drivers)
	})

	// Public: viewers landing from a QR scan look the driver up by id.
	r.Get("/:id", func(c *fiber.Ctx) error {
		p, err := svc.Profile(c.Context(), c.Params("id"))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "driver not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(p)
	})

	r.Get("/:id/qr", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := svc.Get(c.Context(), id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "driver not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		png, err := qrcode.Encode(appURL+"/track?driverId="+id, qrcode.Medium, 256)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(png)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req Driver
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		d, err := svc.Update(c.Context(), c.Params("id"), req)
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "driver not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(d)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		err := svc.Delete(c.Context(), c.Params("id"))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "driver not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
