package jwttoken

import (
	authmw "certreg/pkg/platform/middleware/auth"
)

func ToMiddlewareClaims(claims *IssuerTokenClaims) *authmw.Claims {
	return &authmw.Claims{
		Identity: claims.Identity,
		JTI:      claims.ID,
	}
}

// JWTServiceAdapter bridges JWTService to the auth middleware's validator
// interface.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.Claims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
