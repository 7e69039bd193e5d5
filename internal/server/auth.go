package server

import (
	"crypto/subtle"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tasklink/internal/auth"
)

const adminTokenHeader = "X-Admin-Token"

// withAuth enforces the optional bearer API token on every route but /health,
// and the admin token on relationship type writes.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		if s.apiToken != "" && !validBearer(r.Header.Get("Authorization"), s.apiToken) {
			s.writeErrorReq(w, r, http.StatusUnauthorized, apiError{
				status:  http.StatusUnauthorized,
				code:    "unauthorized",
				errCode: ErrCodeUnauthorized,
				err:     fmt.Errorf("missing or invalid api token"),
			})
			return
		}

		if requiresAdmin(r) && !s.checkAdmin(w, r) {
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requiresAdmin reports whether r mutates the relationship type catalog.
func requiresAdmin(r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return false
	}
	return r.URL.Path == "/v1/relationship-types" || strings.HasPrefix(r.URL.Path, "/v1/relationship-types/")
}

// checkAdmin verifies X-Admin-Token against the configured bcrypt hash.
// Without a configured hash admin routes are open.
func (s *Server) checkAdmin(w http.ResponseWriter, r *http.Request) bool {
	if s.adminTokenHash == "" {
		return true
	}

	now := time.Now()
	key := requestClientIP(r)
	if wait := s.adminLimiter.RetryAfter(key, now); wait > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(wait.Round(time.Second).Seconds())))
		s.writeErrorReq(w, r, http.StatusTooManyRequests, apiError{
			status:  http.StatusTooManyRequests,
			code:    "resource_exhausted",
			errCode: ErrCodeResourceExhausted,
			err:     fmt.Errorf("too many failed admin token attempts; retry later"),
		})
		return false
	}

	token := strings.TrimSpace(r.Header.Get(adminTokenHeader))
	if token == "" || !auth.VerifyToken(s.adminTokenHash, token) {
		if s.adminLimiter.RegisterFailure(key, now) {
			s.log().Warn("admin token attempts blocked", "remote_addr", key)
		}
		s.writeErrorReq(w, r, http.StatusForbidden, apiError{
			status:  http.StatusForbidden,
			code:    "forbidden",
			errCode: ErrCodeForbidden,
			err:     fmt.Errorf("admin token required"),
		})
		return false
	}

	s.adminLimiter.Reset(key)
	return true
}

func validBearer(header, token string) bool {
	value, ok := strings.CutPrefix(strings.TrimSpace(header), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(value)), []byte(token)) == 1
}

func requestClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	remote := strings.TrimSpace(r.RemoteAddr)
	if remote == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(remote)
	if err == nil {
		return strings.TrimSpace(host)
	}
	return remote
}
