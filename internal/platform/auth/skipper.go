package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// publicPaths lists route patterns reachable without a token.
var publicPaths = map[string]bool{
	"/health":               true,
	"/health/db":            true,
	"/api/v1/users/login":   true,
	"/api/v1/public/report": true,
}

// publicReads are public for GET only.
var publicReads = map[string]bool{
	"/api/v1/lab-info": true,
}

// AuthSkipper returns true for requests whose route should skip authentication.
func AuthSkipper(c echo.Context) bool {
	if publicPaths[c.Path()] {
		return true
	}
	return c.Request().Method == http.MethodGet && publicReads[c.Path()]
}

func IsPublicPath(path string) bool {
	return publicPaths[path]
}
