package api

import "github.com/duetlabs/duet/internal/credential"

// Wire vocabulary: the author role is "you", the viewer role is "her".
const (
	wireRoleAuthor = "you"
	wireRoleViewer = "her"

	// authorLabel is the fixed display label for the author side; only the
	// viewer label is configurable.
	authorLabel = "You"
)

// Generic PIN failure message. Identical for every resolution failure so the
// response cannot reveal which comparison failed.
const msgInvalidPIN = "Invalid PIN"

func wireRole(r credential.Role) string {
	switch r {
	case credential.RoleAuthor:
		return wireRoleAuthor
	case credential.RoleViewer:
		return wireRoleViewer
	default:
		return ""
	}
}

type verifyPINRequest struct {
	PIN string `json:"pin"`
}

type verifyPINResponse struct {
	Role  string `json:"role"`
	Token string `json:"token"`
}

type changePINRequest struct {
	OldPIN   string `json:"old_pin"`
	NewPIN   string `json:"new_pin"`
	NewLabel string `json:"label,omitempty"`
}

type changeLabelRequest struct {
	CurrentPIN string `json:"current_pin"`
	Label      string `json:"label"`
}

type labelsResponse struct {
	You string `json:"you"`
	Her string `json:"her"`
}

type entryRequest struct {
	Content string `json:"content"`
}
