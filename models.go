package userauth

import (
	"time"

	"github.com/uptrace/bun"
)

// RoleName is the name of a user's role
type RoleName = string

const (
	// RoleViewer is a read-only role
	RoleViewer RoleName = "viewer"
	// RoleAdmin is an administrative role
	RoleAdmin RoleName = "admin"
	// RoleSuperAdmin is the unrestricted role
	RoleSuperAdmin RoleName = "super_admin"
)

// AllRoleNames returns the predefined roles
func AllRoleNames() []RoleName {
	return []RoleName{RoleViewer, RoleAdmin, RoleSuperAdmin}
}

// ParseRoleName safely parses a string into a RoleName
func ParseRoleName(s string) (RoleName, bool) {
	switch RoleName(s) {
	case RoleViewer, RoleAdmin, RoleSuperAdmin:
		return RoleName(s), true
	default:
		return "", false
	}
}

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            int64       `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Username      string      `bun:"username,notnull,unique" json:"username,omitempty"`
	FirstName     string      `bun:"first_name" json:"first_name,omitempty"`
	LastName      string      `bun:"last_name" json:"last_name,omitempty"`
	Email         string      `bun:"email" json:"email,omitempty"`
	Phone         string      `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash  string      `bun:"password_hash" json:"-"`
	IsActive      bool        `bun:"is_active,notnull" json:"is_active"`
	Roles         []*UserRole `bun:"rel:has-many,join:id=user_id" json:"role,omitempty"`
	CreatedAt     *time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// UserRole is an optional, at-most-one-per-user role record. Not embedded
// in tokens; checked out-of-band.
type UserRole struct {
	bun.BaseModel `bun:"table:user_roles,alias:rol"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Name          RoleName   `bun:"name,notnull,unique:rol_name_user" json:"name"`
	Description   string     `bun:"description" json:"description,omitempty"`
	UserID        int64      `bun:"user_id,notnull,unique:rol_name_user" json:"user_id,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// UserResponse is the wire-facing shape of a user. Storage and transport
// shapes are mapped at the boundary, never conflated.
type UserResponse struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	FirstName string      `json:"first_name,omitempty"`
	LastName  string      `json:"last_name,omitempty"`
	Email     string      `json:"email,omitempty"`
	Phone     string      `json:"phone_number,omitempty"`
	IsActive  bool        `json:"is_active"`
	Roles     []*UserRole `json:"role,omitempty"`
}

// NewUserResponse maps a stored user to its wire shape.
func NewUserResponse(u *User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		IsActive:  u.IsActive,
		Roles:     u.Roles,
	}
}
