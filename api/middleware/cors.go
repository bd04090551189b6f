package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// local dev, the dashboard, and per-franchise subdomains
var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"https://app.tableloop.io",
	"https://*.tableloop.io",
}

// CORS returns middleware that applies the API's allowed origin policy.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   defaultCORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
