package middleware

import (
	"net/http"

	"github.com/upb/warehouse-api/utils"
	"go.uber.org/zap"
)

// Route identifies an endpoint by method and exact path
type Route struct {
	Method string
	Path   string
}

// Public routes served without an authenticated principal
var (
	RouteRegister = Route{Method: http.MethodPost, Path: "/api/v1/auth/register"}
	RouteLogin    = Route{Method: http.MethodPost, Path: "/api/v1/auth/login"}
	RouteHealth   = Route{Method: http.MethodGet, Path: "/healthz"}
	RouteReady    = Route{Method: http.MethodGet, Path: "/readyz"}
	RouteMetrics  = Route{Method: http.MethodGet, Path: "/metrics"}
)

// DefaultPublicRoutes returns the allow-list used by the API
func DefaultPublicRoutes() []Route {
	return []Route{RouteRegister, RouteLogin, RouteHealth, RouteReady, RouteMetrics}
}

// RoutePolicy is a static allow-list separating public routes from those
// that require an authenticated principal. CORS preflight requests are
// always public.
type RoutePolicy struct {
	public map[Route]struct{}
	logger *zap.Logger
}

// NewRoutePolicy creates a policy allowing the given routes anonymously
func NewRoutePolicy(logger *zap.Logger, public ...Route) *RoutePolicy {
	p := &RoutePolicy{
		public: make(map[Route]struct{}, len(public)),
		logger: logger,
	}
	for _, route := range public {
		p.public[route] = struct{}{}
	}
	return p
}

// IsPublic reports whether method and path may be served anonymously
func (p *RoutePolicy) IsPublic(method, path string) bool {
	if method == http.MethodOptions {
		return true
	}
	_, ok := p.public[Route{Method: method, Path: path}]
	return ok
}

// Enforce rejects requests to non-public routes that carry no AuthContext.
// When the principal could not be resolved because the store failed, the
// answer is 503 rather than 401. It must run after Authenticate.
func (p *RoutePolicy) Enforce(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p.IsPublic(r.Method, r.URL.Path) || GetAuthContext(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}

		if LookupFailed(r.Context()) {
			p.logger.Warn("rejected request after principal lookup failure",
				zap.String("request_id", GetRequestIDFromContext(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path))
			if err := utils.WriteError(w, http.StatusServiceUnavailable, "Authentication temporarily unavailable", nil); err != nil {
				p.logger.Error("failed to write service unavailable response", zap.Error(err))
			}
			return
		}

		p.logger.Debug("rejected unauthenticated request",
			zap.String("request_id", GetRequestIDFromContext(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))

		if err := utils.WriteUnauthorized(w, "Authentication required"); err != nil {
			p.logger.Error("failed to write unauthorized response", zap.Error(err))
		}
	})
}
