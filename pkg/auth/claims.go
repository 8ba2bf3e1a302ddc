package auth

import (
	"github.com/angelmondragon/bufferstock-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	Operator string
	Role     enums.OperatorRole
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	Operator string             `json:"operator"`
	Role     enums.OperatorRole `json:"role"`
	jwt.RegisteredClaims
}
