package middleware

import (
	"net/http"
	"time"

	"comanda/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// abortInterno answers 500 with the generic message unless a handler already
// wrote a response. The cause only goes to the log.
func abortInterno(c *gin.Context) {
	if c.Writer.Written() {
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.Internal())
}

// ErrorHandler logs errors that handlers attached with c.Error and turns
// them into a 500 when nothing was written yet.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		errs := make([]error, 0, len(c.Errors))
		for _, e := range c.Errors {
			errs = append(errs, e.Err)
		}
		log.Error().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("rota", c.FullPath()).
			Str("method", c.Request.Method).
			Errs("erros", errs).
			Msg("erro não tratado")
		abortInterno(c)
	}
}

// Recovery turns a panic into a 500 and logs it with the request id.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			log.Error().
				Str("request_id", c.GetString(RequestIDKey)).
				Str("rota", c.FullPath()).
				Interface("panic", r).
				Msg("panic recuperado")
			abortInterno(c)
		}()
		c.Next()
	}
}

// Logger writes one line per request. Level follows the status: 5xx error,
// 4xx warn, everything else info. Health checks are only logged when they
// fail.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		inicio := time.Now()
		c.Next()

		status := c.Writer.Status()
		nivel := zerolog.InfoLevel
		switch {
		case status >= http.StatusInternalServerError:
			nivel = zerolog.ErrorLevel
		case status >= http.StatusBadRequest:
			nivel = zerolog.WarnLevel
		case c.Request.URL.Path == "/health":
			return
		}

		evt := log.WithLevel(nivel).
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(inicio)).
			Int("bytes", c.Writer.Size())
		if claims := GetClaims(c); claims != nil {
			evt = evt.Str("usuario_id", claims.UserID).Str("papel", claims.Papel)
		}
		evt.Msg("request")
	}
}
