package shared

import "github.com/google/uuid"

// Role is a marketplace user role
type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
	// RoleSystem is used by background jobs and provider callbacks
	RoleSystem Role = "SYSTEM"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin, RoleSystem:
		return true
	}
	return false
}

// Actor is whoever performs an operation
type Actor struct {
	UserID   uuid.UUID
	Role     Role
	SellerID *uuid.UUID // set for seller users with a storefront
}

// SystemActor is the actor for scheduled and callback driven work
func SystemActor() Actor {
	return Actor{Role: RoleSystem}
}

// IsPrivileged reports admin or system actors
func (a Actor) IsPrivileged() bool {
	return a.Role == RoleAdmin || a.Role == RoleSystem
}

// OwnsStore reports whether the actor operates the given storefront
func (a Actor) OwnsStore(sellerID uuid.UUID) bool {
	return a.Role == RoleSeller && a.SellerID != nil && *a.SellerID == sellerID
}
