package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/guccio85/proximasuite-sub000/internal/handler/http/response"
)

// AuthRequired rejects requests whose verified token is missing or is not an
// access token. It expects jwtauth.Verifier to run first.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())

		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		if token == nil {
			response.HandleError(w, response.ErrInvalidToken)
			return
		}

		claims, err := token.AsMap(r.Context())
		if err != nil {
			response.HandleError(w, response.ErrInvalidToken)
			return
		}
		tokenType, ok := claims["type"].(string)
		if tokenType != "access" || !ok {
			response.HandleError(w, response.ErrInvalidToken)
			return
		}

		next.ServeHTTP(w, r)
	})
}
