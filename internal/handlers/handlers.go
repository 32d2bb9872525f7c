package handlers

import (
	"github.com/ycmovement/membership-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Reference    *ReferenceHandler
	Registration *RegistrationHandler
	Auth         *AuthHandler
	Member       *MemberHandler
	Audit        *AuditHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Reference:    NewReferenceHandler(svcs.Reference),
		Registration: NewRegistrationHandler(svcs.Registration),
		Auth:         NewAuthHandler(svcs.Auth),
		Member:       NewMemberHandler(svcs.Review, svcs.Export, svcs.Card),
		Audit:        NewAuditHandler(svcs.Audit),
	}
}
