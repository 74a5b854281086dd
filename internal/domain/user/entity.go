package user

import "time"

type Role string

const (
	RoleAdmin Role = "admin" // Manages the directory, leave decisions and operator accounts
	RoleUser  Role = "user"  // Records attendance and submits leave
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is an operator account. Employees tracked by the engine do not log in.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin checks if user can administer the directory
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
