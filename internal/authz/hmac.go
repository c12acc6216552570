package authz

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"vibesrm/internal/domain"
	"vibesrm/internal/observability/metrics"
	obsmw "vibesrm/internal/observability/middleware"
)

type HMACValidator struct {
	secret []byte
	issuer string
}

func NewHMACValidator(secret, issuer string) *HMACValidator {
	return &HMACValidator{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// Middleware accepts HS256 bearer tokens whose sub claim is a user id and
// stores that id in the request context.
func (h *HMACValidator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := obsmw.RequestIDFromContext(r.Context())
		traceID := obsmw.TraceIDFromContext(r.Context())

		userID, err := h.authenticate(r.Header.Get("Authorization"))
		if err != nil {
			metrics.AuthenticationAttemptsTotal.WithLabelValues("failure").Inc()
			slog.Warn("auth rejected", "error", err, "request_id", reqID, "trace_id", traceID)
			writeUnauthorized(w, err.Error())
			return
		}
		metrics.AuthenticationAttemptsTotal.WithLabelValues("success").Inc()
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func (h *HMACValidator) authenticate(header string) (domain.UserID, error) {
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return uuid.Nil, fmt.Errorf("missing bearer token")
	}
	tokStr := strings.TrimSpace(header[len("Bearer "):])

	token, err := jwt.Parse(tokStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %T", token.Method)
		}
		return h.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid token claims")
	}
	if iss, _ := claims["iss"].(string); iss != "" && iss != h.issuer {
		return uuid.Nil, fmt.Errorf("issuer mismatch")
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("subject is not a user id")
	}
	return userID, nil
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="vibesrm"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = fmt.Fprintf(w, `{"error":%q}`, msg)
}

type userKey struct{}

func WithUserID(ctx context.Context, id domain.UserID) context.Context {
	return context.WithValue(ctx, userKey{}, id)
}

func UserIDFrom(ctx context.Context) (domain.UserID, bool) {
	v, ok := ctx.Value(userKey{}).(domain.UserID)
	return v, ok
}
