package bearer

import (
	"context"
	"net/http"
	"strings"

	resp "freelance_service/internal/lib/api/response"

	"github.com/go-chi/render"
)

type ctxKey struct{}

// Require rejects requests without an "Authorization: Bearer <token>" header
// and stores the token for Token. The token itself is verified by the
// handler's service.
func Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := FromHeader(r.Header.Get("Authorization"))
		if token == "" {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("Unauthorized"))

			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, token)))
	})
}

// Token returns the token stored by Require.
func Token(ctx context.Context) string {
	token, _ := ctx.Value(ctxKey{}).(string)
	return token
}

// FromHeader returns the second space separated part of an Authorization
// header value.
func FromHeader(h string) string {
	parts := strings.Fields(h)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return parts[1]
}
