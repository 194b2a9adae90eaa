package domain

import "fmt"

type Role string

const (
	RoleDriver Role = "motorista"
	RoleOwner  Role = "proprietario"
	RoleAdmin  Role = "admin"
)

// Principal is the authenticated caller, resolved once per request.
type Principal struct {
	ID   int32 `json:"id"`
	Role Role  `json:"role"`
}

func (p Principal) IsDriver() bool { return p.Role == RoleDriver }
func (p Principal) IsOwner() bool  { return p.Role == RoleOwner }
func (p Principal) IsAdmin() bool  { return p.Role == RoleAdmin }

// ParseRole maps a token role claim to a Role. The admin tiers "comum" and
// "super" both resolve to RoleAdmin.
func ParseRole(s string) (Role, error) {
	switch s {
	case string(RoleDriver):
		return RoleDriver, nil
	case string(RoleOwner):
		return RoleOwner, nil
	case string(RoleAdmin), "comum", "super":
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Party identifies one side of a request or contract for seen-flag
// bookkeeping.
type Party string

const (
	PartyDriver Party = "motorista"
	PartyOwner  Party = "proprietario"
)

func ParseParty(s string) (Party, error) {
	switch Party(s) {
	case PartyDriver, PartyOwner:
		return Party(s), nil
	default:
		return "", &ErrValidation{Field: "party", Message: fmt.Sprintf("invalid party %q", s)}
	}
}

// BadgeParty returns the side whose unseen rows count towards the principal's
// badge. Admins are counted on the owner side.
func (p Principal) BadgeParty() Party {
	if p.IsDriver() {
		return PartyDriver
	}
	return PartyOwner
}
