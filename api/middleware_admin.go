package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// AdminMiddleware gates the admin surface behind an admin-scoped JWT. Any
// failure answers 404 so the routes stay indistinguishable from unknown paths.
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		reqToken := r.Header.Get("Authorization")
		splitToken := strings.Split(reqToken, "Bearer ")
		if len(splitToken) != 2 {
			http.NotFound(w, r)
			return
		}

		jwtSecret := []byte(os.Getenv("JWT_SECRET"))
		if len(jwtSecret) == 0 {
			zap.S().Error("JWT_SECRET is not set")
			http.NotFound(w, r)
			return
		}

		token, err := jwt.Parse(splitToken[1], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			zap.S().Debugw("admin token rejected", "error", err)
			http.NotFound(w, r)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || claims["scope"] != "admin" {
			http.NotFound(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}
