package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var adminCORSOrigins = []string{
	"http://localhost:3000",          // local dev
	"https://app.dispatchday.io",     // admin dashboard
	"https://staging.dispatchday.io", // staging dashboard
	"https://dispatchday.vercel.app", // preview deployments
}

// CORS returns middleware for the admin API's allowed origin policy.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   adminCORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}

// StorefrontCORS allows any origin. Checkout widgets run on merchant domains
// we do not know in advance; the API key carries the actual trust.
func StorefrontCORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key", headerStoreID, headerAPIKey},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler
}
