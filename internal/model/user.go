package model

import "time"

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

const (
	SubscriptionTrial   = "trial"
	SubscriptionActive  = "active"
	SubscriptionExpired = "expired"
)

type User struct {
	BaseModel
	OrganizationID string     `db:"organization_id" json:"organizationId"`
	Email          string     `db:"email" json:"email"`
	Name           string     `db:"name" json:"name"`
	PasswordHash   string     `db:"password_hash" json:"-"`
	Role           string     `db:"role" json:"role"`
	IsActive       bool       `db:"is_active" json:"isActive"`
	LastLoginAt    *time.Time `db:"last_login_at" json:"lastLoginAt"`
}

// Permissions are UI gating flags; the API does not enforce them.
type Permissions struct {
	ManageUsers     bool `json:"manageUsers"`
	ManageProducts  bool `json:"manageProducts"`
	ManageStock     bool `json:"manageStock"`
	ManageSuppliers bool `json:"manageSuppliers"`
	ViewReports     bool `json:"viewReports"`
	ManageSettings  bool `json:"manageSettings"`
}

func PermissionsFor(role string) Permissions {
	switch role {
	case RoleAdmin:
		return Permissions{true, true, true, true, true, true}
	case RoleManager:
		return Permissions{ManageProducts: true, ManageStock: true, ManageSuppliers: true, ViewReports: true}
	default:
		return Permissions{ManageStock: true}
	}
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleManager || role == RoleStaff
}

type Organization struct {
	BaseModel
	Name               string     `db:"name" json:"name"`
	SubscriptionStatus string     `db:"subscription_status" json:"subscriptionStatus"`
	TrialEndsAt        *time.Time `db:"trial_ends_at" json:"trialEndsAt"`
	SubscriptionEndsAt *time.Time `db:"subscription_ends_at" json:"subscriptionEndsAt"`
}

// EffectiveStatus applies the trial and subscription end dates to the stored status.
func (o *Organization) EffectiveStatus(now time.Time) string {
	switch o.SubscriptionStatus {
	case SubscriptionTrial:
		if o.TrialEndsAt != nil && now.After(*o.TrialEndsAt) {
			return SubscriptionExpired
		}
		return SubscriptionTrial
	case SubscriptionActive:
		if o.SubscriptionEndsAt != nil && now.After(*o.SubscriptionEndsAt) {
			return SubscriptionExpired
		}
		return SubscriptionActive
	default:
		return SubscriptionExpired
	}
}
