// WebApp fallback proxy.
//
// The Telegram WebApp is served by a separate static file service. Anything
// that does not match an API route is forwarded there, so the bot backend
// can sit alone behind one public hostname.
package httpapi

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"supportdesk/internal/http/handlers"
)

// reservedPrefixes are backend-owned paths that must never be proxied.
var reservedPrefixes = []string{"/webhook", "/health", "/metrics", "/swagger"}

// webAppProxy returns the NoRoute handler: API-looking and reserved paths get
// a JSON 404, everything else is reverse-proxied to the WebApp origin. When
// no valid origin is configured the handler degrades to plain 404s.
func webAppProxy(baseURL, apiBasePath string) gin.HandlerFunc {
	notFound := func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	}

	target, err := url.Parse(baseURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		log.Warn().Str("webapp_base_url", baseURL).Msg("webapp proxy disabled: invalid base URL")
		return notFound
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	director := proxy.Director
	proxy.Director = func(req *http.Request) {
		director(req)
		req.Host = target.Host
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("webapp proxy upstream error")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"code":"bad_gateway","message":"webapp unavailable"}`))
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if isBackendPath(path, apiBasePath) {
			notFound(c)
			return
		}
		proxy.ServeHTTP(c.Writer, c.Request)
	}
}

// isBackendPath reports whether path belongs to the API surface rather than
// the static WebApp.
func isBackendPath(path, apiBasePath string) bool {
	if apiBasePath != "" && apiBasePath != "/" {
		if path == apiBasePath || strings.HasPrefix(path, apiBasePath+"/") {
			return true
		}
	}
	for _, p := range reservedPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
