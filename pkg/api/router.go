package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ezshare/ezshare/internal/logger"
	"github.com/ezshare/ezshare/pkg/api/handlers"
	"github.com/ezshare/ezshare/pkg/api/middleware"
	"github.com/ezshare/ezshare/pkg/auth"
	"github.com/ezshare/ezshare/pkg/clipboard"
	"github.com/ezshare/ezshare/pkg/metrics"
	"github.com/ezshare/ezshare/pkg/models"
	"github.com/ezshare/ezshare/pkg/share"
	"github.com/ezshare/ezshare/pkg/store"
)

// Deps carries everything the router needs to build its handlers.
type Deps struct {
	Accounts  store.AccountStore
	Sessions  *auth.Registry
	Root      share.Root
	Clipboard clipboard.Service

	MaxUploadSize       int64
	ZipCompressionLevel int
	SessionLifetime     time.Duration
	CookieSecure        bool
}

// NewRouter creates and configures the chi router with all middleware and
// routes.
//
// Routes:
//   - GET  /health - Liveness probe
//   - GET  /metrics - Prometheus metrics
//   - POST /api/login - Login handshake (both round trips)
//   - POST /api/logout - Session destruction
//   - GET  /api/sessionRecovery - Session and permission refresh
//   - POST /api/changePassword - Credential rotation
//   - GET  /api/browse - Directory listing
//   - GET  /api/download - File or directory-zip download
//   - POST /api/upload - Multipart upload (upload permission)
//   - POST /api/paste - Client-to-host clipboard (clipboard permission)
//   - POST /api/copy - Host-to-client clipboard (clipboard permission)
//   - POST /api/register - Account creation (register permission)
func NewRouter(cfg APIConfig, deps Deps) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)

	authHandler := handlers.NewAuthHandler(deps.Accounts, deps.Sessions, deps.SessionLifetime, deps.CookieSecure)
	fileHandler := handlers.NewFileHandler(deps.Root, deps.MaxUploadSize, deps.ZipCompressionLevel)
	clipboardHandler := handlers.NewClipboardHandler(deps.Clipboard, deps.Root)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteJSONOK(w, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Login covers both handshake round trips and is the only
		// unauthenticated endpoint.
		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
			r.Post("/login", authHandler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(deps.Sessions))

			// JSON endpoints are bounded; download and upload stream for
			// as long as the transfer takes.
			r.Group(func(r chi.Router) {
				r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

				r.Post("/logout", authHandler.Logout)
				r.Get("/sessionRecovery", authHandler.SessionRecovery)
				r.Post("/changePassword", authHandler.ChangePassword)
				r.Get("/browse", fileHandler.Browse)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(func(p models.Permissions) bool { return p.Clipboard }))
					r.Post("/paste", clipboardHandler.Paste)
					r.Post("/copy", clipboardHandler.Copy)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(func(p models.Permissions) bool { return p.Register }))
					r.Post("/register", authHandler.Register)
				})
			})

			r.Get("/download", fileHandler.Download)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(func(p models.Permissions) bool { return p.Upload }))
				r.Post("/upload", fileHandler.Upload)
			})
		})
	})

	return r
}

// requestLogger logs requests using the internal logger and feeds the
// request counter.
//
// It logs:
//   - Request start (DEBUG level): method, path, remote addr
//   - Request completion (INFO level): method, path, status, duration
//   - Health and metrics requests are logged at DEBUG level to reduce noise
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := chimiddleware.GetReqID(r.Context())

		logger.Debug("API request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		// Wrap response writer to capture status code
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		metrics.RequestsTotal.WithLabelValues(strconv.Itoa(ww.Status()), r.Method).Inc()

		logArgs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", duration.String(),
		}

		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			logger.Debug("API request completed", logArgs...)
		} else {
			logger.Info("API request completed", logArgs...)
		}
	})
}
