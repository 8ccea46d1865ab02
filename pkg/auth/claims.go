package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dispatchday/dispatchday-backend/pkg/enums"
)

// AccessTokenPayload is the application data minted into an admin access token.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Role     enums.ActorRole
	StoreIDs []uuid.UUID
	JTI      string
}

// AccessTokenClaims is the full JWT claim set carried by admin API tokens.
// Merchants are scoped to the stores listed in StoreIDs; admins may omit it.
type AccessTokenClaims struct {
	UserID   uuid.UUID       `json:"uid"`
	Role     enums.ActorRole `json:"role"`
	StoreIDs []uuid.UUID     `json:"store_ids,omitempty"`
	jwt.RegisteredClaims
}

// CanAccessStore reports whether the token grants access to the given store.
func (c *AccessTokenClaims) CanAccessStore(storeID uuid.UUID) bool {
	if c.Role == enums.ActorRoleAdmin {
		return true
	}
	for _, id := range c.StoreIDs {
		if id == storeID {
			return true
		}
	}
	return false
}
