package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/dmarych/web_shop/internal/models"
)

const userContextKey = "user"

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 24 * time.Hour

type Middleware struct {
	DB          *gorm.DB
	TokenSecret []byte
}

// Authenticate resolves the caller from the Authorization header and
// stashes the full user record in the request context.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := m.resolveUser(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication failed !"})
		}
		c.Set(userContextKey, user)
		return next(c)
	}
}

func (m *Middleware) resolveUser(c echo.Context) (*models.User, error) {
	raw := c.Request().Header.Get(echo.HeaderAuthorization)
	// Historical clients send the signed token under a "Basic" scheme
	// prefix; accept any scheme and take the token itself.
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil, errors.New("missing authorization header")
	}
	tokenStr := fields[len(fields)-1]

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.TokenSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("cannot parse claims")
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil, errors.New("token missing subject")
	}

	var user models.User
	if err := m.DB.First(&user, uint(sub)).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CallerFrom returns the authenticated user placed in the context by
// Authenticate, or nil.
func CallerFrom(c echo.Context) *models.User {
	if u, ok := c.Get(userContextKey).(*models.User); ok {
		return u
	}
	return nil
}

// SignToken issues the bearer token returned at login.
func SignToken(userID uint, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(TokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
