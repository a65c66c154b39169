package httpapi

import (
	"net"
	"net/http"

	authkit "github.com/Hydrex75/authkit"
	"github.com/Hydrex75/authkit/middleware"
)

// Server defines a public type used by authkit APIs.
//
// Server instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Server struct {
	svc        *authkit.Service
	production bool
	metrics    http.Handler
}

// Config defines a public type used by authkit APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// Metrics, when non-nil, is mounted at GET /metrics.
	Metrics http.Handler
}

// NewServer describes the newserver operation and its observable behavior.
//
// NewServer may return an error when input validation, dependency calls, or security checks fail.
// NewServer does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewServer(svc *authkit.Service, cfg Config) *Server {
	return &Server{
		svc:        svc,
		production: svc.ProductionMode(),
		metrics:    cfg.Metrics,
	}
}

// Router builds the route table. Protected routes are wrapped in the
// middleware guards; handlers behind a guard can assume a verified context.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", s.handleLogin)

	mux.Handle("POST /auth/refresh", middleware.RefreshGuard(s.svc)(
		http.HandlerFunc(s.handleRefresh),
	))

	accessGuard := middleware.AccessGuard(s.svc)
	mux.Handle("POST /auth/logout", accessGuard(http.HandlerFunc(s.handleLogout)))
	mux.Handle("GET /auth/profile", accessGuard(http.HandlerFunc(s.handleProfile)))

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}

	return requestMetadata(mux)
}

// requestMetadata records the client IP and user agent on the request
// context so the service's audit events carry them.
func requestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ip = host
		}
		ctx := authkit.WithClientIP(r.Context(), ip)
		ctx = authkit.WithUserAgent(ctx, r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
