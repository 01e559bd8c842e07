package domain

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Roles lists the assignable role names.
var Roles = []string{RoleAdmin, RoleUser}
