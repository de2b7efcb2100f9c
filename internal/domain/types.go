package domain

// Caller carries the authenticated identity resolved by the auth middleware.
type Caller struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the caller may use admin operations.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)
