package middleware

import (
	"net/http"
)

// TokenVerifier validates an access token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AccessGuard rejects requests without a valid x-access-token header with
// 401 and the verifier's error. On success the token subject is stored as
// the user id in the request context.
func AccessGuard(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := v.Verify(r.Header.Get(HeaderAccessToken))
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
