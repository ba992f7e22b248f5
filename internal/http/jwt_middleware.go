package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"anniversary-api/internal/metrics"
	"anniversary-api/internal/service"
)

const identityKey = "identity_id"

// Mensajes fijos: no revelan cual de los chequeos fallo.
const (
	msgMissingAuth   = "Authorization header is required"
	msgMalformedAuth = "Token is missing or malformed"
	msgInvalidToken  = "Invalid token"
)

// JWTAuthMiddleware valida el bearer token y guarda el id del usuario en el contexto.
func JWTAuthMiddleware(jwtSvc *service.JWTService, recorder metrics.AuthRecorder) gin.HandlerFunc {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return func(c *gin.Context) {
		if jwtSvc == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
			return
		}

		userID, err := jwtSvc.VerifyHeader(c.GetHeader("Authorization"))
		if err != nil {
			switch {
			case errors.Is(err, service.ErrMissingAuth):
				recorder.RecordTokenRejected("missing")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgMissingAuth})
			case errors.Is(err, service.ErrMalformedAuth):
				recorder.RecordTokenRejected("malformed")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgMalformedAuth})
			case errors.Is(err, service.ErrJWTExpired):
				recorder.RecordTokenRejected("expired")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgInvalidToken})
			default:
				recorder.RecordTokenRejected("invalid")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgInvalidToken})
			}
			return
		}

		c.Set(identityKey, userID)
		c.Next()
	}
}

// IdentityFrom devuelve el id verificado del usuario que hace la request.
func IdentityFrom(c *gin.Context) (int64, bool) {
	val, ok := c.Get(identityKey)
	if !ok {
		return 0, false
	}
	id, ok := val.(int64)
	return id, ok && id > 0
}

// requireIdentity corta la request si el middleware no resolvio identidad.
func requireIdentity(c *gin.Context) (int64, bool) {
	id, ok := IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User id is required"})
		return 0, false
	}
	return id, true
}
