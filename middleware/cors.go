package middleware

import (
	"strings"
	"time"

	"solar-prediction-api/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	corsMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsHeaders = []string{"Origin", "Content-Type", "Authorization"}
	// Content-Disposition carries the report filename to browser downloads.
	corsExposed = []string{"Content-Length", "Content-Disposition"}
)

// SetupCORS allows every origin for "*" or an empty list. Explicit lists may carry
// credentials and ws:// origins for the live feed.
func SetupCORS(cfg config.CORSConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:    corsMethods,
		AllowHeaders:    corsHeaders,
		ExposeHeaders:   corsExposed,
		AllowWebSockets: true,
		MaxAge:          12 * time.Hour,
	}

	origins := ParseOrigins(cfg.AllowedOrigins)
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}
	return cors.New(c)
}

// ParseOrigins splits a comma separated origin list, dropping blanks and trailing slashes.
func ParseOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
