package models

type UserRole string

const (
	RoleViewer UserRole = "viewer"
	RoleEditor UserRole = "editor"
	RoleAdmin  UserRole = "admin"
)

var roleRank = map[UserRole]int{
	RoleViewer: 1,
	RoleEditor: 2,
	RoleAdmin:  3,
}

func IsValidRole(role UserRole) bool {
	_, ok := roleRank[role]
	return ok
}

// HasAtLeast reports whether role meets or exceeds the required tier.
func HasAtLeast(role, required UserRole) bool {
	return roleRank[role] >= roleRank[required]
}

type User struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"-"`
	Role         UserRole `json:"role"`
	IsActive     bool     `json:"is_active"`
}
