package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/cors"
)

func CORS(origins []string) echo.MiddlewareFunc {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	})
	return echo.WrapMiddleware(c.Handler)
}
