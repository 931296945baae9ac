package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"playverse/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

const AdminClaimsKey contextKey = "admin_claims"

// AdminClaims is the token payload issued to back-office operators.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AdminAuth guards back-office routes with an HS256 bearer token whose role claim matches.
type AdminAuth struct {
	secret []byte
	role   string
	log    *logger.Logger
}

func NewAdminAuth(secret, role string, log *logger.Logger) *AdminAuth {
	return &AdminAuth{secret: []byte(secret), role: role, log: log}
}

// Protect wraps a router handle.
func (a *AdminAuth) Protect(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, err := a.authenticate(r)
		if err != nil {
			a.log.Warn("Admin authorization failed",
				"request_id", RequestIDFromContext(r.Context()),
				"path", r.URL.Path,
				"error", err,
			)
			status := http.StatusUnauthorized
			body := `{"error":"Unauthorized","code":"UNAUTHORIZED"}`
			if errors.Is(err, errWrongRole) {
				status = http.StatusForbidden
				body = `{"error":"Forbidden","code":"FORBIDDEN"}`
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
			return
		}

		ctx := context.WithValue(r.Context(), AdminClaimsKey, claims)
		next(w, r.WithContext(ctx), ps)
	}
}

var (
	errMissingToken = errors.New("missing bearer token")
	errWrongRole    = errors.New("token role is not allowed")
)

func (a *AdminAuth) authenticate(r *http.Request) (*AdminClaims, error) {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, errMissingToken
	}

	claims := &AdminClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims.Role != a.role {
		return nil, errWrongRole
	}
	return claims, nil
}

// IssueAdminToken signs a token for the given subject. Used by operators' tooling and tests.
func IssueAdminToken(secret, role, subject string, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = subject
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{Role: role, RegisteredClaims: claims})
	return token.SignedString([]byte(secret))
}
