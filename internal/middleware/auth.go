package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ycmovement/membership-api/internal/models"
)

// Claims represents the JWT claims structure for admin sessions
type Claims struct {
	AdminID uint   `json:"admin_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// Auth returns a middleware that validates admin JWT tokens
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := ""

		if authHeader == "" {
			// Download links (card PDF, XLSX export) pass the token as a
			// query param since browsers cannot set headers on navigation
			tokenString = c.Query("token")
			if tokenString == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Authorization header is required",
				})
				return
			}
		} else {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Invalid authorization header format",
				})
				return
			}
			tokenString = parts[1]
		}

		claims, err := validateToken(tokenString, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": err.Error(),
			})
			return
		}

		c.Set("adminID", claims.AdminID)
		c.Set("adminEmail", claims.Email)
		c.Set("adminRole", claims.Role)
		c.Set("claims", claims)

		c.Next()
	}
}

// validateToken parses and validates a JWT token string
func validateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("token has expired")
		}
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// GetAdminID extracts the admin ID from the Gin context
func GetAdminID(c *gin.Context) uint {
	id, exists := c.Get("adminID")
	if !exists {
		return 0
	}
	return id.(uint)
}

// GetAdminEmail extracts the admin email from the Gin context
func GetAdminEmail(c *gin.Context) string {
	email, exists := c.Get("adminEmail")
	if !exists {
		return ""
	}
	return email.(string)
}

// GetAdminRole extracts the admin role from the Gin context
func GetAdminRole(c *gin.Context) string {
	role, exists := c.Get("adminRole")
	if !exists {
		return ""
	}
	return role.(string)
}

// RequireRole returns a middleware that requires at least the given admin
// role (viewer < editor < super).
func RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !models.RoleAtLeast(GetAdminRole(c), required) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "You do not have access to this section",
			})
			return
		}
		c.Next()
	}
}
