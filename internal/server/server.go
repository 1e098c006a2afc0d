package server

import (
	"log"

	"github.com/eldavido7/taxi-tracker/internal/auth"
	"github.com/eldavido7/taxi-tracker/internal/config"
	"github.com/eldavido7/taxi-tracker/internal/driver"
	"github.com/eldavido7/taxi-tracker/internal/mail"
	"github.com/eldavido7/taxi-tracker/internal/presence"
	"github.com/eldavido7/taxi-tracker/internal/route"
	"github.com/eldavido7/taxi-tracker/internal/session"
	"github.com/eldavido7/taxi-tracker/internal/stream"
	"github.com/eldavido7/taxi-tracker/internal/tracking"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Stream   *stream.Hub
	Presence *presence.Store
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:      app,
		Cfg:      cfg,
		DB:       db,
		Redis:    redisClient,
		Stream:   stream.NewHub(redisClient),
		Presence: presence.NewStore(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	var mailer auth.Mailer
	if s.Cfg.SMTPHost != "" {
		sender, err := mail.NewSender(s.Cfg.SMTPHost, s.Cfg.SMTPPort, s.Cfg.SMTPUser, s.Cfg.SMTPPass, s.Cfg.MailFrom)
		if err != nil {
			log.Printf("smtp disabled: %v", err)
		} else {
			mailer = sender
		}
	}

	authSvc := auth.NewService(s.Cfg.JWTSecret, s.DB, mailer, s.Cfg.AppURL)
	sessionSvc := session.NewService(s.DB)
	trackingSvc := tracking.NewService(s.Presence, sessionSvc, authSvc, s.Stream, s.Cfg.TrackingRequireAuth)

	auth.RegisterRoutes(s.App.Group("/auth"), authSvc)
	session.RegisterRoutes(s.App.Group("/sessions"), sessionSvc, jwtMiddleware)
	tracking.RegisterRoutes(s.App.Group("/tracking"), trackingSvc)
	driver.RegisterRoutes(s.App.Group("/drivers"), driver.NewService(s.DB, s.Presence), jwtMiddleware, s.Cfg.AppURL)
	route.RegisterRoutes(s.App.Group("/route"), route.NewService(s.Cfg.GoogleMapsKey))
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
