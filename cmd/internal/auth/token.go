package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

const identityKey = "identity"

var ErrInvalidToken = errors.New("invalid token")

// Claims carried by bearer tokens issued for the clinic.
type Claims struct {
	UserID int    `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func SignToken(secret []byte, id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: id.UserID,
		Role:   id.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(id.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken verifies an HS256 token and returns the identity it carries.
func ParseToken(secret []byte, raw string) (*Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	role, ok := ParseRole(claims.Role)
	if !ok || claims.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	return &Identity{UserID: claims.UserID, Role: role}, nil
}

// Middleware resolves the bearer token, when there is one, into an Identity on the echo context.
// Requests without a valid token continue anonymously; the services reject them.
func Middleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, found := strings.CutPrefix(header, "Bearer ")
			if found && raw != "" {
				id, err := ParseToken(secret, strings.TrimSpace(raw))
				if err != nil {
					log.Warnf("rejected bearer token on %s: %v", c.Path(), err)
				} else {
					c.Set(identityKey, id)
				}
			}
			return next(c)
		}
	}
}

// FromContext returns the caller identity, or nil for anonymous requests.
func FromContext(c echo.Context) *Identity {
	id, _ := c.Get(identityKey).(*Identity)
	return id
}
