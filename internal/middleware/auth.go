package middleware

import (
	"context"
	"net/http"
	"strings"

	"cochera/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	ClaimsKey = "claims"

	tokenAcceso = "access"
)

// JWTClaims are the custom claims embedded in every access token.
// TurnoID is the shift opened at login; admins carry none.
type JWTClaims struct {
	UserID   string  `json:"user_id"`
	Username string  `json:"username"`
	Nombre   string  `json:"nombre"`
	Rol      string  `json:"rol"`
	TurnoID  *string `json:"turno_id"`
	Tipo     string  `json:"tipo"`
	jwt.RegisteredClaims
}

// TokenStore answers whether a token id was revoked by a logout.
type TokenStore interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// TurnoChecker answers whether a shift is still the worker's open one.
type TurnoChecker interface {
	TurnoAbierto(ctx context.Context, trabajadorID, turnoID uuid.UUID) (bool, error)
}

// JWTAuth validates the Bearer token on every protected route. Refresh tokens
// are rejected here. When the revocation store is unreachable the token is
// accepted and the failure logged.
func JWTAuth(secret string, store TokenStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid || claims.Tipo != tokenAcceso {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalido o expirado"))
			return
		}

		if store != nil && claims.ID != "" {
			revoked, err := store.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				log.Warn().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("auth: revocation check failed")
			} else if revoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Sesion cerrada"))
				return
			}
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// TurnoVigente logs a worker out as soon as the shift in their token has been
// closed. Tokens without a shift pass through.
func TurnoVigente(checker TurnoChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || claims.TurnoID == nil {
			c.Next()
			return
		}

		trabajadorID, err1 := uuid.Parse(claims.UserID)
		turnoID, err2 := uuid.Parse(*claims.TurnoID)
		if err1 != nil || err2 != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
			return
		}

		abierto, err := checker.TurnoAbierto(c.Request.Context(), trabajadorID, turnoID)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if !abierto {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("El turno fue cerrado. Inicie sesión nuevamente."))
			return
		}
		c.Next()
	}
}

// RequireRole rejects requests whose JWT role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || !allowed[claims.Rol] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permisos insuficientes"))
			return
		}
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
func GetClaims(c *gin.Context) *JWTClaims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*JWTClaims)
	return claims
}
