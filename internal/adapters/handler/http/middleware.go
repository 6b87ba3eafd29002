package http

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hanvote/regionvote/internal/core/domain"
)

type contextKey string

const identityKey contextKey = "identity"

const guestTokenHeader = "X-Guest-Token"

// IdentityMiddleware resolves the caller identity: a verified access-token
// cookie yields a user identity, otherwise an opaque guest-token header
// stands in. Requests with neither still pass through; handlers that need
// an identity reject them.
func IdentityMiddleware(jwtSecret []byte, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := domain.Identity{}

			if cookie, err := r.Cookie(cookieName); err == nil {
				if userID, email, ok := parseAccessToken(cookie.Value, jwtSecret); ok {
					identity.UserID = &userID
					identity.Email = email
				}
			}
			if identity.UserID == nil {
				identity.GuestToken = r.Header.Get(guestTokenHeader)
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseAccessToken(raw string, secret []byte) (uuid.UUID, string, bool) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", false
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", false
	}
	email, _ := claims["email"].(string)
	return userID, email, true
}

// identityFrom returns the identity resolved by the middleware; the zero
// identity when the middleware did not run.
func identityFrom(r *http.Request) domain.Identity {
	identity, _ := r.Context().Value(identityKey).(domain.Identity)
	return identity
}
