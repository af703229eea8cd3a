// internal/domain/models/role.go
package models

// Role is the closed set of membership tiers shared by clans and
// federations. The empty string means "no membership".
type Role string

const (
	RoleLeader  Role = "leader"
	RoleOfficer Role = "officer"
	RoleMember  Role = "member"
)

// Valid reports whether r is one of the three defined tiers.
func (r Role) Valid() bool {
	return r == RoleLeader || r == RoleOfficer || r == RoleMember
}

// GroupKind distinguishes the two group variants. They share one document
// shape; a clan may additionally link to a parent federation, and a
// federation carries the list of its member clans.
type GroupKind string

const (
	KindClan       GroupKind = "clan"
	KindFederation GroupKind = "federation"
)

// Valid reports whether k is a known group kind.
func (k GroupKind) Valid() bool {
	return k == KindClan || k == KindFederation
}
