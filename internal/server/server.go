package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"golang.org/x/time/rate"

	"github.com/ontoforge/ontology-core/internal/config"
	"github.com/ontoforge/ontology-core/pkg/apperror"
	"github.com/ontoforge/ontology-core/pkg/auth"
	"github.com/ontoforge/ontology-core/pkg/logger"
)

var Module = fx.Module("server",
	fx.Provide(NewEcho),
	fx.Invoke(StartServer),
)

// NewEcho creates and configures an Echo instance.
func NewEcho(cfg *config.Config, log *slog.Logger) *echo.Echo {
	e := echo.New()

	e.Debug = cfg.Debug
	e.HideBanner = true
	e.HidePort = !cfg.Debug

	e.HTTPErrorHandler = apperror.HTTPErrorHandler(log)

	e.Pre(middleware.RemoveTrailingSlash())

	e.Use(
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOriginFunc: func(origin string) (bool, error) {
				return true, nil
			},
			AllowCredentials: true,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, auth.OrganizationHeader},
		}),

		middleware.RequestID(),

		middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			Skipper: func(c echo.Context) bool {
				path := c.Request().URL.Path
				return path == "/health" || path == "/healthz" || path == "/ready" || path == "/metrics"
			},
			LogURI:       true,
			LogStatus:    true,
			LogLatency:   true,
			LogError:     true,
			LogMethod:    true,
			LogRequestID: true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				attrs := []any{
					slog.String("method", v.Method),
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
					slog.Duration("latency", v.Latency),
					slog.String("request_id", v.RequestID),
				}
				if v.Error != nil {
					attrs = append(attrs, logger.Error(v.Error))
					log.Error("request failed", attrs...)
				} else {
					log.Info("request", attrs...)
				}
				return nil
			},
		}),

		middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))),

		middleware.RecoverWithConfig(middleware.RecoverConfig{
			LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
				log.Error("panic recovered",
					logger.Error(err),
					slog.String("stack", string(stack)),
				)
				return nil
			},
		}),
	)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}

// StartServer starts the HTTP server with graceful shutdown.
func StartServer(lc fx.Lifecycle, e *echo.Echo, cfg *config.Config, log *slog.Logger) {
	log = log.With(logger.Scope("server"))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.ServerAddress, cfg.ServerPort),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("starting HTTP server",
				slog.String("address", server.Addr),
				slog.String("environment", cfg.Environment),
			)

			go func() {
				if err := e.StartServer(server); err != nil && err != http.ErrServerClosed {
					log.Error("server error", logger.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down HTTP server")

			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
			defer cancel()

			return e.Shutdown(shutdownCtx)
		},
	})
}
