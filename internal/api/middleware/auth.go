package middleware

import (
	"context"
	"net/http"

	"contacthub/internal/app/service"
	"contacthub/internal/common"
	"contacthub/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const CurrentUserCtxKey contextKey = "currentUser"

// Authenticator resolves the bearer token into a principal and stores it
// in the request context. Every resolution failure answers with the same
// message regardless of cause.
func Authenticator(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := jwtauth.TokenFromHeader(r)
			if tokenString == "" {
				common.RespondWithError(w, http.StatusUnauthorized, "Could not validate credentials")
				return
			}

			user, err := auth.Resolve(r.Context(), tokenString)
			if err != nil {
				common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), CurrentUserCtxKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly gates a route on the admin role. Must run after Authenticator.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := CurrentUserFromContext(r.Context())
		if !ok {
			common.RespondWithError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		if _, err := service.RequireRole(user, model.RoleAdmin); err != nil {
			common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentUserFromContext returns the resolved principal for this request.
func CurrentUserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(CurrentUserCtxKey).(*model.User)
	return user, ok
}
