package http

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"driverent-backend/internal/config"
	"driverent-backend/internal/domain"
	"driverent-backend/internal/logger"
	"driverent-backend/internal/metrics"
	"driverent-backend/internal/security"
)

// badgeRoute prefixes the names of routes whose errors use the {ok:false}
// body.
const badgeRoute = "badge"

const requestIDHeader = "X-Request-ID"

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

func isBadgeRoute(r *http.Request) bool {
	route := mux.CurrentRoute(r)
	return route != nil && strings.HasPrefix(route.GetName(), badgeRoute)
}

// RequestIDMiddleware tags the request and its logger with an id, reusing the
// caller's X-Request-ID when present.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := logger.NewContext(r.Context(), "requestID", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// AccessLogMiddleware logs every request and records its latency.
func AccessLogMiddleware(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			route := routeTemplate(r)
			m.ObserveRequest(r.Method, route, rec.status, elapsed)
			logger.FromContext(r.Context()).Info("HTTP request",
				"method", r.Method,
				"route", route,
				"status", rec.status,
				"duration_ms", elapsed.Milliseconds(),
			)
		})
	}
}

type AuthMiddleware struct {
	tokenManager security.TokenManager
	errors       errorWriter
}

func NewAuthMiddleware(tm security.TokenManager, production bool) *AuthMiddleware {
	return &AuthMiddleware{tokenManager: tm, errors: errorWriter{production: production}}
}

// Handler authenticates requests to protected routes and stores the resolved
// principal in the request context.
func (a *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		level := config.GetSecurityLevel(r.Method, routeTemplate(r))

		// Public endpoint - skip auth
		if level == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractToken(r)
		if err == nil {
			var p domain.Principal
			p, err = a.tokenManager.ResolvePrincipal(token)
			if err == nil {
				ctx := withPrincipal(r.Context(), p)
				ctx = logger.NewContext(ctx, "principalID", p.ID, "role", p.Role)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			err = &domain.ErrUnauthorized{Message: "invalid token: " + err.Error()}
		}

		if isBadgeRoute(r) {
			a.errors.writeBadge(w, r, err)
			return
		}
		a.errors.write(w, r, err)
	})
}

func extractToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", &domain.ErrUnauthorized{Message: "authorization token is not provided"}
	}

	token := header
	// Remove Bearer prefix if present
	if len(token) > 7 && strings.ToUpper(token[0:7]) == "BEARER " {
		token = token[7:]
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", &domain.ErrUnauthorized{Message: "authorization token is empty"}
	}
	return token, nil
}

// ClientIPResolver derives the caller's address recorded as signature
// evidence. X-Forwarded-For is honoured only when the peer is a trusted
// proxy; the rightmost hop that is not itself a trusted proxy wins.
type ClientIPResolver struct {
	trusted []*net.IPNet
}

// NewClientIPResolver accepts proxy addresses as plain IPs or CIDR ranges.
func NewClientIPResolver(proxies []string) (*ClientIPResolver, error) {
	res := &ClientIPResolver{}
	for _, p := range proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.Contains(p, "/") {
			ip := net.ParseIP(p)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", p)
			}
			bits := 128
			if ip.To4() != nil {
				bits = 32
			}
			p = fmt.Sprintf("%s/%d", p, bits)
		}
		_, n, err := net.ParseCIDR(p)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", p, err)
		}
		res.trusted = append(res.trusted, n)
	}
	return res, nil
}

func (c *ClientIPResolver) isTrusted(host string) bool {
	if c == nil {
		return false
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, n := range c.trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the caller's address. A nil resolver trusts no proxy.
func (c *ClientIPResolver) ClientIP(r *http.Request) string {
	client := peerHost(r.RemoteAddr)
	if !c.isTrusted(client) {
		return client
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if net.ParseIP(hop) == nil {
			break
		}
		client = hop
		if !c.isTrusted(hop) {
			break
		}
	}
	return client
}

// peerHost strips the port from a RemoteAddr.
func peerHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
