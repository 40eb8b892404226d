package service

import "github.com/templui/securedocs/internal/model"

// CapabilityChecker decides whether a user may manage documents, which
// lets them past the private, password and assignment gates.
type CapabilityChecker interface {
	Elevated(user *model.User) bool
}

// RoleCapabilities grants elevation to editors and administrators.
type RoleCapabilities struct{}

func (RoleCapabilities) Elevated(user *model.User) bool {
	if user == nil {
		return false
	}
	switch user.Role {
	case model.RoleEditor, model.RoleAdministrator:
		return true
	}
	return false
}
