package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// New returns a CORS middleware that honors a list of allowed origins. An
// empty list allows any origin. Entries of the form "https://*.strack.app"
// match every subdomain of strack.app over https. Download filenames are exposed.
func New(allowedOrigins []string) gin.HandlerFunc {
	policy := newOriginPolicy(allowedOrigins)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case origin != "" && policy.allows(origin):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		case origin == "" && policy.allowAll:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Vary", "Origin")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type originPolicy struct {
	allowAll bool
	exact    map[string]struct{}
	wildcards []wildcardOrigin
}

type wildcardOrigin struct {
	scheme string // "https://"
	suffix string // ".strack.app"
}

func newOriginPolicy(allowedOrigins []string) originPolicy {
	policy := originPolicy{
		allowAll: len(allowedOrigins) == 0,
		exact:    make(map[string]struct{}, len(allowedOrigins)),
	}
	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(origin, "/")
		if scheme, host, ok := strings.Cut(origin, "://*."); ok {
			policy.wildcards = append(policy.wildcards, wildcardOrigin{scheme: scheme + "://", suffix: "." + host})
			continue
		}
		policy.exact[origin] = struct{}{}
	}
	return policy
}

func (p originPolicy) allows(origin string) bool {
	if p.allowAll {
		return true
	}

	origin = strings.TrimRight(origin, "/")
	if _, ok := p.exact[origin]; ok {
		return true
	}
	for _, w := range p.wildcards {
		rest, ok := strings.CutPrefix(origin, w.scheme)
		if ok && len(rest) > len(w.suffix) && strings.HasSuffix(rest, w.suffix) {
			return true
		}
	}
	return false
}
