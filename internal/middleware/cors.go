package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORSOptions restricts cross-origin access to a single origin.
type CORSOptions struct {
	AllowedOrigin    string
	AllowedMethods   []string
	AllowCredentials bool
}

// CORS applies opts to every request and answers preflight requests itself.
// Requests from any other origin are served without CORS headers.
func CORS(opts CORSOptions) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		// An empty AllowedOrigins list means any origin to rs/cors, so the
		// match is decided here instead.
		AllowOriginFunc: func(origin string) bool {
			return origin != "" && origin == opts.AllowedOrigin
		},
		AllowedMethods:       opts.AllowedMethods,
		AllowedHeaders:       []string{"*"},
		AllowCredentials:     opts.AllowCredentials,
		OptionsSuccessStatus: http.StatusNoContent,
	})
	return c.Handler
}
