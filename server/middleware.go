package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/vinayakrana/Hotel-Chat-BE/agent/contract"
)

const (
	headerUserEmail = "X-User-Email"
	headerRequestID = "X-Request-ID"

	ctxKeyIdentity = "identity"
)

// RequestID assigns each request an id, honoring one supplied by the client.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(headerRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info().
			Str("request_id", c.GetString(headerRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	}
}

// Authenticate resolves the X-User-Email header to an identity and aborts
// with 401 when the caller is unknown. Identity is looked up per request,
// never cached.
func (s *Server) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetHeader(headerUserEmail)
		id, err := s.identities.Resolve(c.Request.Context(), email)
		if err != nil {
			if errors.Is(err, contractx.ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"detail": "Unauthorized: user '" + email + "' not found",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"detail": "Error resolving identity",
			})
			return
		}

		c.Set(ctxKeyIdentity, id)
		c.Next()
	}
}

func callerIdentity(c *gin.Context) contractx.Identity {
	id, _ := c.Get(ctxKeyIdentity)
	identity, _ := id.(contractx.Identity)
	return identity
}
