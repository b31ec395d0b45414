package httpapi

import (
	"net/http"

	"github.com/goliatone/go-router"
)

const (
	corsAllowOrigin  = "*"
	corsAllowHeaders = "authorization, x-client-info, apikey, content-type"
)

// CORS stamps the browser headers on every response and answers preflight
// requests with 200 "ok".
func CORS() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			c.SetHeader("Access-Control-Allow-Origin", corsAllowOrigin)
			c.SetHeader("Access-Control-Allow-Headers", corsAllowHeaders)
			if c.Method() == http.MethodOptions {
				return c.Status(http.StatusOK).SendString("ok")
			}
			return next(c)
		}
	}
}

// Preflight answers OPTIONS requests on any path.
func Preflight(c router.Context) error {
	return c.Status(http.StatusOK).SendString("ok")
}
