package admin

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Roles allowed to call moderation endpoints.
const (
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// clockSkew is tolerated on exp/nbf/iat between the issuing and validating hosts.
const clockSkew = 30 * time.Second

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
	ErrInvalidClaims = errors.New("invalid claims")
)

// ModeratorClaims identifies the staff member behind a moderation request.
type ModeratorClaims struct {
	ModeratorID uuid.UUID `json:"moderator_id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	jwt.RegisteredClaims
}

// CanModerate reports whether the role may suspend and warn users.
func (c *ModeratorClaims) CanModerate() bool {
	return c.Role == RoleModerator || c.Role == RoleAdmin
}

// JWTService signs and checks HS256 moderator tokens.
type JWTService struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
	now       func() time.Time
}

func NewJWTService(secretKey, issuer string, ttl time.Duration) *JWTService {
	return &JWTService{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		ttl:       ttl,
		now:       time.Now,
	}
}

// GenerateToken signs a token whose subject is the moderator id.
func (s *JWTService) GenerateToken(moderatorID uuid.UUID, email, role string) (string, error) {
	now := s.now()
	claims := ModeratorClaims{
		ModeratorID: moderatorID,
		Email:       email,
		Role:        role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   moderatorID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
}

// ValidateToken checks signature, algorithm, issuer and lifetime, and that
// the subject names the same moderator as the moderator_id claim.
func (s *JWTService) ValidateToken(tokenString string) (*ModeratorClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(s.now),
	)

	claims := &ModeratorClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.ModeratorID == uuid.Nil || claims.Subject != claims.ModeratorID.String() {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}
