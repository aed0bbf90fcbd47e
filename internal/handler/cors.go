package handler

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the local UI pages to call the API. Origins must be
// listed explicitly; "*" allows any origin but without credentials.
func CORSMiddleware(allowedOrigins, allowedMethods, allowedHeaders []string) gin.HandlerFunc {
	wildcard := slices.Contains(allowedOrigins, "*")

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		header := c.Writer.Header()

		if origin != "" {
			header.Add("Vary", "Origin")

			switch {
			case slices.Contains(allowedOrigins, origin):
				header.Set("Access-Control-Allow-Origin", origin)
				header.Set("Access-Control-Allow-Credentials", "true")
			case wildcard:
				header.Set("Access-Control-Allow-Origin", "*")
			}
		}

		header.Set("Access-Control-Allow-Headers", strings.Join(allowedHeaders, ", "))
		header.Set("Access-Control-Allow-Methods", strings.Join(allowedMethods, ", "))

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
