package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func requestContext(t *testing.T) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/slots", nil)
	return c
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	c := requestContext(t)
	c.Request.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	c.Request.Header.Set("X-Real-IP", "198.51.100.2")

	assert.Equal(t, "203.0.113.9", clientIP(c))
}

func TestClientIPFallsBackToRealIP(t *testing.T) {
	c := requestContext(t)
	c.Request.Header.Set("X-Real-IP", "198.51.100.2")

	assert.Equal(t, "198.51.100.2", clientIP(c))
}

func TestClientIPStripsPortFromRemoteAddr(t *testing.T) {
	c := requestContext(t)
	c.Request.RemoteAddr = "192.0.2.7:54021"

	assert.Equal(t, "192.0.2.7", clientIP(c))
}
