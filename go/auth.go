package shipmentserver

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const claimsContextKey = "shipmentserver.claims"

// Claims is the bearer token payload. Tokens minted by older clients carry the
// caller in userId rather than sub; both are accepted.
type Claims struct {
	UserID         string `json:"userId,omitempty"`
	Role           string `json:"role"`
	OrganizationID string `json:"organizationId,omitempty"`
	jwt.RegisteredClaims
}

// CallerID returns the authenticated user id.
func (c *Claims) CallerID() string {
	if c == nil {
		return ""
	}
	if c.UserID != "" {
		return c.UserID
	}
	return c.RegisteredClaims.Subject
}

// Authenticator verifies HS256 bearer tokens.
type Authenticator struct {
	secret []byte
	now    func() time.Time
}

// NewAuthenticator builds an Authenticator for secret.
func NewAuthenticator(secret string) (*Authenticator, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &Authenticator{secret: []byte(secret), now: time.Now}, nil
}

// IssueToken signs a token for userID with role, valid for ttl.
func (a *Authenticator) IssueToken(userID, role string, ttl time.Duration) (string, error) {
	now := a.now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse validates raw and returns its claims.
func (a *Authenticator) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, err
	}
	if claims.CallerID() == "" {
		return nil, fmt.Errorf("token carries no subject")
	}
	return claims, nil
}

// RequireAuth rejects requests without a valid bearer token.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			unauthorized(c, "missing or invalid authorization header")
			return
		}
		claims, err := a.Parse(raw)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}
		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// OptionalAuth attaches claims when a bearer token is present. A present but
// invalid token is still rejected.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		a.RequireAuth()(c)
	}
}

// RequireRole allows the request through only when the caller holds one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := callerClaims(c)
		if claims == nil {
			forbidden(c, "insufficient role")
			return
		}
		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		forbidden(c, "insufficient role")
	}
}

func callerClaims(c *gin.Context) *Claims {
	value, ok := c.Get(claimsContextKey)
	if !ok {
		return nil
	}
	claims, _ := value.(*Claims)
	return claims
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
