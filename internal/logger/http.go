package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// HTTPRequests is a RoundTripper that logs each outbound request with its
// status and duration.
type HTTPRequests struct {
	base  http.RoundTripper
	debug bool
}

// NewHTTPTransport wraps base with request logging. With debug enabled every
// request is logged, otherwise only failures.
func NewHTTPTransport(base http.RoundTripper, debug bool) *HTTPRequests {
	if base == nil {
		base = http.DefaultTransport
	}
	return &HTTPRequests{base: base, debug: debug}
}

func (t *HTTPRequests) RoundTrip(req *http.Request) (*http.Response, error) {
	started := time.Now()

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		log.Debug().
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Dur("duration", time.Since(started)).
			Err(err).
			Msg("http call failed")
		return nil, err
	}

	if t.debug {
		log.Debug().
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Int("status", resp.StatusCode).
			Dur("duration", time.Since(started)).
			Msg("http call")
	}

	return resp, nil
}

// GinRequests returns a gin middleware that logs each handled request.
func GinRequests(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()

		c.Next()

		event := logger.Info()
		if c.Writer.Status() >= 500 {
			event = logger.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(started)).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}
