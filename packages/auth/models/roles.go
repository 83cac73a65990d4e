package models

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

func GetDefaultRoles() Roles {
	return Roles{RoleUser}
}

func GetAllRoles() []string {
	return []string{RoleUser, RoleAdmin}
}
