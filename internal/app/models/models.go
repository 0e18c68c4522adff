package models

// Role defines the role stored in the user_roles table
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ItemStatus is the lifecycle status shared by lost and found items
type ItemStatus string

const (
	ItemStatusPending  ItemStatus = "pending"
	ItemStatusApproved ItemStatus = "approved"
	ItemStatusRejected ItemStatus = "rejected"
	ItemStatusClaimed  ItemStatus = "claimed"
	ItemStatusResolved ItemStatus = "resolved"
)

// ItemStatuses lists every item status in lifecycle order
var ItemStatuses = []ItemStatus{
	ItemStatusPending,
	ItemStatusApproved,
	ItemStatusRejected,
	ItemStatusClaimed,
	ItemStatusResolved,
}

// Valid reports whether s is a known item status
func (s ItemStatus) Valid() bool {
	for _, known := range ItemStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ClaimStatus is the lifecycle status of an ownership claim
type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "pending"
	ClaimStatusApproved ClaimStatus = "approved"
	ClaimStatusRejected ClaimStatus = "rejected"
)

// Valid reports whether s is a known claim status
func (s ClaimStatus) Valid() bool {
	switch s {
	case ClaimStatusPending, ClaimStatusApproved, ClaimStatusRejected:
		return true
	}
	return false
}
