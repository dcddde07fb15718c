package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/badminton-community/models"
	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const userContextKey contextKey = "user"

// UserLookup loads the current state of an authenticated user.
type UserLookup interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// Authenticator verifies HS256 bearer tokens issued by the auth service and
// rejects banned users.
type Authenticator struct {
	secret []byte
	users  UserLookup
	logger *slog.Logger
}

func NewAuthenticator(secret string, users UserLookup, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{secret: []byte(secret), users: users, logger: logger}
}

func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := tokenFromRequest(r)
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}

		claims, err := a.parse(raw)
		if err != nil {
			a.logger.DebugContext(r.Context(), "token rejected", slog.Any("error", err))
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, claims)
		userID, err := GetUserIDFromContext(ctx)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
			return
		}

		if a.users != nil {
			user, err := a.users.GetByID(ctx, userID)
			if err != nil {
				a.logger.WarnContext(ctx, "authenticated user lookup failed", slog.Int("user_id", userID), slog.Any("error", err))
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unknown user")
				return
			}
			if user.Status == models.UserStatusBanned {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "account is banned")
				return
			}
			// Роль берётся из базы: понижение действует сразу, а не после истечения токена.
			claims[jwtClaimRole] = string(user.Role)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) parse(raw string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// tokenFromRequest reads the bearer token, falling back to the "token"
// query parameter used by websocket clients.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// RequireRole lets the request through only for the listed roles.
func RequireRole(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := GetUserRoleFromContext(r.Context())
			if err != nil {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "FORBIDDEN", "insufficient role")
		})
	}
}
