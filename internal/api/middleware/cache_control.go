package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	cacheableResponse = "public, max-age=300"
	uncachedResponse  = "no-cache"
)

// CacheControl marks successful GET responses as cacheable for five minutes and
// everything else as no-cache. The header is decided when the body is first
// written, once the status is known.
func CacheControl() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", uncachedResponse)
		c.Writer = &cacheControlWriter{ResponseWriter: c.Writer, method: c.Request.Method}
		c.Next()
	}
}

type cacheControlWriter struct {
	gin.ResponseWriter
	method string
}

func (w *cacheControlWriter) decide() {
	if w.Written() {
		return
	}
	value := uncachedResponse
	if w.Status() == http.StatusOK && (w.method == http.MethodGet || w.method == http.MethodHead) {
		value = cacheableResponse
	}
	w.Header().Set("Cache-Control", value)
}

func (w *cacheControlWriter) WriteHeaderNow() {
	w.decide()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *cacheControlWriter) Write(data []byte) (int, error) {
	w.decide()
	return w.ResponseWriter.Write(data)
}

func (w *cacheControlWriter) WriteString(s string) (int, error) {
	w.decide()
	return w.ResponseWriter.WriteString(s)
}
