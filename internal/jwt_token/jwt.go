package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "certreg/pkg/domain"
	dErrors "certreg/pkg/domain-errors"
)

// IssuerTokenClaims are the claims carried by issuer access tokens. The
// subject is the issuer identity; authorization against the allow-list
// happens in the service layer, not here.
type IssuerTokenClaims struct {
	Identity string `json:"identity"`
	jwt.RegisteredClaims
}

// JWTService handles issuer token creation and validation.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewJWTService(signingKey string, issuer string, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// GenerateIssuerToken mints a signed token asserting the given identity.
func (s *JWTService) GenerateIssuerToken(identity id.Identity, expiresIn time.Duration) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, IssuerTokenClaims{
		Identity: identity.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// ValidateToken parses and verifies a signed issuer token.
func (s *JWTService) ValidateToken(tokenString string) (*IssuerTokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &IssuerTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*IssuerTokenClaims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.Identity == "" {
		// Older tokens carried the identity only in the subject claim.
		claims.Identity = claims.Subject
	}
	return claims, nil
}
