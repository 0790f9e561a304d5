package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/barber-booking/internal/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/platform"
)

const ContextSession = "bookingSession"

// SessionMiddleware reads an optional bearer token. Without one the
// request is anonymous; a token that does not verify is rejected. The raw
// token rides on the request context so platform calls forward it.
func SessionMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Unauthorized(c, "invalid_authorization_header", "Authorization must be a bearer token.")
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(secret), nil
		})
		if secret == "" || err != nil || !token.Valid {
			httperr.Unauthorized(c, "invalid_token", "Your session has expired. Please sign in again.")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			httperr.Unauthorized(c, "invalid_token_claims", "Your session has expired. Please sign in again.")
			c.Abort()
			return
		}

		sub := claimString(claims, "sub")
		if sub == "" {
			httperr.Unauthorized(c, "invalid_token_payload", "Your session has expired. Please sign in again.")
			c.Abort()
			return
		}

		c.Set(ContextSession, &booking.Session{
			ID:    sub,
			Name:  claimString(claims, "name"),
			Email: claimString(claims, "email"),
			Role:  claimString(claims, "role"),
		})
		c.Request = c.Request.WithContext(platform.WithToken(c.Request.Context(), tokenString))

		c.Next()
	}
}

// SessionFrom returns the signed-in user, nil when anonymous.
func SessionFrom(c *gin.Context) *booking.Session {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil
	}
	s, _ := v.(*booking.Session)
	return s
}

// claimString accepts string and numeric ids.
func claimString(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}
