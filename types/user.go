package types

import "time"

// Role is the closed set of authorization levels a user can hold.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// Satisfies reports whether a user with role r may act at the required
// level. Admin satisfies every requirement.
func (r Role) Satisfies(required Role) bool {
	return r == required || r == RoleAdmin
}

// User represents an account in the system.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// Email is the user's email address.
	Email string `json:"email" db:"email"`

	// Role indicates the user's authorization level within the system.
	Role Role `json:"role" db:"role"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserUpdate carries a partial user update. Nil fields keep their
// stored value.
type UserUpdate struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Role     *Role   `json:"role"`
}

// UserStatistics is the admin rollup over the users table.
type UserStatistics struct {
	TotalUsers   int `json:"total_users"`
	Admins       int `json:"admins"`
	Teachers     int `json:"teachers"`
	Students     int `json:"students"`
	NewThisWeek  int `json:"new_this_week"`
	NewThisMonth int `json:"new_this_month"`
}
