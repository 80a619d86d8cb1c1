// server/http/app.go
package http

import (
	"errors"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vinizap/notas/server/domain"
)

const requestIDKey = "requestid"

type Options struct {
	// CORSOrigins is a comma separated origin list, "*" allows any.
	CORSOrigins string
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewApp wires the note handlers behind the middleware chain.
func NewApp(s *Server, opts Options) (*fiber.App, error) {
	doc, err := loadOpenAPI()
	if err != nil {
		return nil, err
	}

	origins := opts.CORSOrigins
	if origins == "" {
		origins = "*"
	}

	app := fiber.New(fiber.Config{
		AppName:               "notas",
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          errorHandler(s.log),
	})

	app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: requestIDKey,
	}))
	app.Use(accessLog(s.log))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	app.Get("/", s.HandleListNotes)
	app.Post("/", s.HandleCreateNote)
	app.Put("/", s.HandleUpdateNote)
	app.Delete("/", s.HandleDeleteNote)
	app.Get("/openapi.json", func(c *fiber.Ctx) error {
		return c.JSON(doc)
	})

	return app, nil
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}

// errorHandler maps the domain error taxonomy onto status codes. Storage
// failures are logged in full but reported to the client generically.
func errorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			fe *fiber.Error
			se *domain.StorageError
		)
		code, msg := fiber.StatusInternalServerError, "internal server error"

		switch {
		case errors.Is(err, domain.ErrMalformed):
			code, msg = fiber.StatusBadRequest, err.Error()
		case errors.Is(err, domain.ErrNotFound):
			code, msg = fiber.StatusNotFound, err.Error()
		case errors.As(err, &fe):
			code, msg = fe.Code, fe.Message
		case errors.As(err, &se):
			msg = "storage failure"
			log.Error().Err(err).Str("request_id", requestID(c)).Str("op", se.Op).Msg("storage failure")
		default:
			log.Error().Err(err).Str("request_id", requestID(c)).Msg("unhandled error")
		}

		return c.Status(code).JSON(errorResponse{Error: msg})
	}
}
