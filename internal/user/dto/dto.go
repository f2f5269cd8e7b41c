package dto

import (
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type UserFilters struct {
	OrganizationID string
	Search         string
	Role           string
	Page           int
	PageSize       int
}

type Subscription struct {
	Status      string     `json:"status"`
	TrialEndsAt *time.Time `json:"trialEndsAt"`
	EndsAt      *time.Time `json:"endsAt"`
	DaysLeft    int        `json:"daysLeft"`
}

// Session is what login and /me return to the client.
type Session struct {
	Token        string              `json:"token,omitempty"`
	ExpiresAt    *time.Time          `json:"expiresAt,omitempty"`
	User         *model.User         `json:"user"`
	Organization *model.Organization `json:"organization"`
	Permissions  model.Permissions   `json:"permissions"`
	Subscription Subscription        `json:"subscription"`
}
