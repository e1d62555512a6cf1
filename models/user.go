package models

// Role is the application role carried in the caller's access token
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RolePM        Role = "PM"        // project manager, works with auxiliary materials
	RoleAM        Role = "AM"        // account manager, works with finished materials
	RoleWarehouse Role = "WAREHOUSE" // posts pickup and delivery progress
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePM, RoleAM, RoleWarehouse:
		return true
	}
	return false
}

// DefaultOrderType returns the material type a role orders by default.
// ADMIN and WAREHOUSE have no default.
func (r Role) DefaultOrderType() MaterialType {
	switch r {
	case RolePM:
		return MaterialTypeAuxiliary
	case RoleAM:
		return MaterialTypeFinished
	}
	return ""
}

// CanCreateOrder reports whether the role may place an order of type t
func (r Role) CanCreateOrder(t MaterialType) bool {
	if r == RoleAdmin {
		return t.Valid()
	}
	return t.Valid() && r.DefaultOrderType() == t
}
