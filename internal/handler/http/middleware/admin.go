package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/guccio85/proximasuite-sub000/internal/handler/http/response"
)

// AdminOnly guards planning mutations that only office staff may perform.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, response.ErrInvalidToken)
			return
		}

		admin, ok := claims["is_admin"].(bool)
		if !admin || !ok {
			response.HandleError(w, response.ErrAdminPrivilegeRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
