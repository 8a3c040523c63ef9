package http

import (
	"context"
	"errors"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/config"
	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/observability"
	apperrors "github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/pkg/util"
)

const requestIDContextKey = "requestid"

// RegisterMiddlewares attaches the global middleware chain. Order matters:
// the error handler sits before the limiter so limiter rejections pass
// through the same error envelope as everything else.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, cfg *config.Config) {
	app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: requestIDContextKey,
	}))
	app.Use(requestContextMiddleware())

	if timeout := cfg.App.RequestTimeout(); timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))

	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HTTP.AllowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	if cfg.HTTP.RateLimitPerMinute > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.HTTP.RateLimitPerMinute,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				return strings.HasPrefix(c.Path(), "/health")
			},
			LimitReached: func(c *fiber.Ctx) error {
				return apperrors.NewRateLimited()
			},
		}))
	}
}

// requestContextMiddleware copies the correlation id into the user
// context so services and audit events can log it.
func requestContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := c.Locals(requestIDContextKey).(string); ok && id != "" {
			c.SetUserContext(observability.WithRequestID(c.UserContext(), id))
		}
		return c.Next()
	}
}

// requestTimeoutMiddleware bounds each request's user context, which in
// turn bounds the outbound roster and Zoom calls made underneath it.
func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				var domainErr *apperrors.DomainError
				var fiberErr *fiber.Error
				if errors.As(err, &fiberErr) {
					// Routing-level errors (404, 405, oversized bodies)
					// keep their status but adopt the envelope.
					domainErr = apperrors.NewDomainError("REQUEST_FAILED", fiberErr.Message, fiberErr.Code, nil)
				} else {
					domainErr = apperrors.ToDomainError(err)
				}
				if metrics != nil {
					metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				}
				response := fiber.Map{"error": fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}}
				if len(domainErr.Details) > 0 {
					response["error"].(fiber.Map)["details"] = domainErr.Details
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed",
						zap.String("request_id", observability.RequestIDFromContext(c.UserContext())),
						zap.Error(domainErr),
					)
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(response)
				err = nil
			}
		}()
		return c.Next()
	}
}
