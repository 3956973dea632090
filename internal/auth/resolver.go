package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/golang-jwt/jwt/v5"
)

// Resolver turns a bearer token into an Identity.
type Resolver interface {
	Resolve(token string) (*Identity, error)
}

// Claims is the payload of tokens issued for this service.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type JWTResolver struct {
	secret []byte
}

func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret)}
}

func (r *JWTResolver) Resolve(token string) (*Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}

	role, err := models.ParseUserRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrNotAuthenticated)
	}
	return &Identity{UserID: claims.Subject, Role: role}, nil
}

// Issue signs a token for id. Used by tooling and tests; the real issuer is external.
func (r *JWTResolver) Issue(id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
}

// CasdoorConfig mirrors the casdoor application settings.
type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Certificate  string
	Organization string
	Application  string
}

// CasdoorResolver validates casdoor-issued tokens. Admins map from IsAdmin; other accounts
// carry their interview role in the user tag.
type CasdoorResolver struct{}

func NewCasdoorResolver(cfg CasdoorConfig) *CasdoorResolver {
	casdoorsdk.InitConfig(cfg.Endpoint, cfg.ClientID, cfg.ClientSecret, cfg.Certificate, cfg.Organization, cfg.Application)
	return &CasdoorResolver{}
}

func (r *CasdoorResolver) Resolve(token string) (*Identity, error) {
	claims, err := casdoorsdk.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	role := models.RoleCandidate
	if claims.User.IsAdmin {
		role = models.RoleAdmin
	} else if tagged, err := models.ParseUserRole(strings.ToLower(claims.User.Tag)); err == nil {
		role = tagged
	}
	if claims.User.Id == "" {
		return nil, fmt.Errorf("%w: casdoor token has no user id", ErrNotAuthenticated)
	}
	return &Identity{UserID: claims.User.Id, Role: role}, nil
}
