package domain

import (
	"errors"
	"strings"
)

var (
	ErrEmptyID      = errors.New("user id is required")
	ErrEmptyName    = errors.New("name is required")
	ErrInvalidEmail = errors.New("email must contain '@'")
	ErrInvalidRole  = errors.New("unknown role")
)

// Role gates privileged shipment operations.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleManager    Role = "MANAGER"
	RoleViewer     Role = "VIEWER"
	RoleCustomer   Role = "CUSTOMER"
)

// Roles lists every recognized role.
func Roles() []Role {
	return []Role{RoleSuperAdmin, RoleAdmin, RoleManager, RoleViewer, RoleCustomer}
}

// Valid reports whether r is a recognized role.
func (r Role) Valid() bool {
	for _, known := range Roles() {
		if r == known {
			return true
		}
	}
	return false
}

// User is a directory entry: an authenticated principal and the wallet it signs with.
type User struct {
	ID             string
	Email          string
	Name           string
	Role           Role
	WalletAddress  string
	OrganizationID string
}

// NewUser builds a user ensuring required invariants.
func NewUser(id, email, name string, role Role) (*User, error) {
	user := &User{
		ID:    strings.TrimSpace(id),
		Email: strings.ToLower(strings.TrimSpace(email)),
		Name:  strings.TrimSpace(name),
		Role:  role,
	}
	if user.Role == "" {
		user.Role = RoleViewer
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateWallet sets or clears the wallet address used for milestone attribution.
func (u *User) UpdateWallet(address string) {
	u.WalletAddress = strings.TrimSpace(address)
}

// AssignOrganization links the user to an enterprise or logistics provider.
func (u *User) AssignOrganization(organizationID string) {
	u.OrganizationID = strings.TrimSpace(organizationID)
}

// HasRole reports whether the user holds any of roles.
func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// Validate re-applies core invariants for persistence.
func (u *User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	if email := strings.TrimSpace(u.Email); email == "" || !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	if !u.Role.Valid() {
		return ErrInvalidRole
	}
	return nil
}
