package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// BasicAuth rejects requests whose basic auth credentials do not match
// username and password. Both comparisons always run in constant time.
func BasicAuth(realm, username, password string) func(http.Handler) http.Handler {
	challenge := `Basic realm="` + realm + `", charset="UTF-8"`

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok {
				slog.Warn("auth: missing credentials",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				unauthorized(w, challenge, "missing credentials")
				return
			}

			if !validCredentials(user, pass, username, password) {
				slog.Warn("auth: invalid credentials",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
					"user", user,
				)
				unauthorized(w, challenge, "invalid credentials")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func validCredentials(user, pass, wantUser, wantPass string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(wantUser))
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(wantPass))
	return userOK&passOK == 1
}

func unauthorized(w http.ResponseWriter, challenge, reason string) {
	w.Header().Set("WWW-Authenticate", challenge)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + reason + `","message":"Authentication required","code":"AUTH001"}`))
}
