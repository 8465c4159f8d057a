package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prohmpiriya/career-passport/pkg/logger"
	"github.com/prohmpiriya/career-passport/pkg/response"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// Context keys for the authenticated caller
const (
	ContextKeyWallet  = "wallet_address"
	ContextKeySubject = "sub"
)

// JWTConfig holds configuration for JWT middleware
type JWTConfig struct {
	// Secret key for validating HMAC-signed tokens
	Secret string
	// Issuer, when set, must match the iss claim
	Issuer string
	// SkipPaths is a list of paths that should skip JWT validation
	SkipPaths []string
}

// JWTMiddleware validates a bearer token and exposes its wallet_address claim
func JWTMiddleware(config *JWTConfig) gin.HandlerFunc {
	parserOpts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if config.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(config.Issuer))
	}
	parser := jwt.NewParser(parserOpts...)

	return func(c *gin.Context) {
		for _, path := range config.SkipPaths {
			if c.Request.URL.Path == path {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header is required")
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if tokenString == "" {
			abortUnauthorized(c, "Token is empty")
			return
		}

		claims := jwt.MapClaims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return []byte(config.Secret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortUnauthorized(c, "Access token has expired")
				return
			}
			abortUnauthorized(c, "Invalid access token")
			return
		}
		if !token.Valid {
			abortUnauthorized(c, "Invalid access token")
			return
		}

		wallet, _ := claims["wallet_address"].(string)
		wallet = strings.ToLower(strings.TrimSpace(wallet))
		if wallet == "" {
			abortUnauthorized(c, "Missing wallet_address in token")
			return
		}
		subject, _ := claims.GetSubject()

		c.Set(ContextKeyWallet, wallet)
		c.Set(ContextKeySubject, subject)
		c.Request = c.Request.WithContext(logger.ContextWithWallet(c.Request.Context(), wallet))

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized(message))
}

// GetWalletAddress extracts the authenticated wallet from gin context
func GetWalletAddress(c *gin.Context) (string, bool) {
	wallet, exists := c.Get(ContextKeyWallet)
	if !exists {
		return "", false
	}
	w, ok := wallet.(string)
	return w, ok
}

// GetSubject extracts the token subject from gin context
func GetSubject(c *gin.Context) (string, bool) {
	sub, exists := c.Get(ContextKeySubject)
	if !exists {
		return "", false
	}
	s, ok := sub.(string)
	return s, ok
}
