// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusDisabled marks an account that may not sign in.
const StatusDisabled = "disabled"

// User represents a platform account.
//
// Membership fields (ClanID/ClanRole, FederationID/FederationRole) are
// written only by the membership engine's cascade, never by feature code.
// A role field is empty iff the matching ID pointer is nil.
type User struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"name_ci"` // lowercase, diacritics-stripped
	Email  string             `bson:"email" json:"email"`
	Status string             `bson:"status,omitempty" json:"status,omitempty"`

	// Role is the platform role ("admin" or "user"), distinct from the
	// group-tier roles below.
	Role         string `bson:"role,omitempty" json:"role,omitempty"`
	PasswordHash string `bson:"password_hash,omitempty" json:"-"`

	ClanID       *primitive.ObjectID `bson:"clan_id,omitempty" json:"clan_id,omitempty"`
	ClanRole     Role                `bson:"clan_role,omitempty" json:"clan_role,omitempty"`
	FederationID *primitive.ObjectID `bson:"federation_id,omitempty" json:"federation_id,omitempty"`
	FederationRole Role              `bson:"federation_role,omitempty" json:"federation_role,omitempty"`

	Version int64 `bson:"version" json:"version"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Membership returns the group reference and role for the given tier.
func (u *User) Membership(kind GroupKind) (*primitive.ObjectID, Role) {
	if kind == KindFederation {
		return u.FederationID, u.FederationRole
	}
	return u.ClanID, u.ClanRole
}

// SetMembership overwrites the group reference and role for the given tier.
// Pass a nil id and empty role to clear it.
func (u *User) SetMembership(kind GroupKind, id *primitive.ObjectID, role Role) {
	if kind == KindFederation {
		u.FederationID = id
		u.FederationRole = role
		return
	}
	u.ClanID = id
	u.ClanRole = role
}
