package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an identity mirrored from the OIDC provider.
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	ProviderID    *string   `json:"provider_id,omitempty"`
	Name          *string   `json:"name,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// JWTClaims holds the claims read from a verified access or ID token.
type JWTClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Exp   int64  `json:"exp"`
	Iat   int64  `json:"iat"`
	Iss   string `json:"iss"`
	Aud   string `json:"aud"`
}

// DefaultDailyMinutes is the time budget assumed when a profile has none.
const DefaultDailyMinutes = 60

// Profile carries the career choices a user made during onboarding.
type Profile struct {
	UserID              uuid.UUID `json:"user_id"`
	FullName            *string   `json:"full_name,omitempty"`
	RoleCategory        *string   `json:"role_category,omitempty"`
	SelectedRole        *string   `json:"selected_role,omitempty"`
	DailyTimeMinutes    *int      `json:"daily_time_minutes,omitempty"`
	OnboardingCompleted bool      `json:"onboarding_completed"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// HasRole reports whether a target role has been selected.
func (p *Profile) HasRole() bool {
	return p != nil && p.SelectedRole != nil && *p.SelectedRole != ""
}

// Role returns the selected role or fallback.
func (p *Profile) Role(fallback string) string {
	if p.HasRole() {
		return *p.SelectedRole
	}
	return fallback
}

// Category returns the role category or fallback.
func (p *Profile) Category(fallback string) string {
	if p != nil && p.RoleCategory != nil && *p.RoleCategory != "" {
		return *p.RoleCategory
	}
	return fallback
}

// DisplayName returns the full name or fallback.
func (p *Profile) DisplayName(fallback string) string {
	if p != nil && p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	return fallback
}

// Minutes returns the daily time budget, DefaultDailyMinutes when unset.
func (p *Profile) Minutes() int {
	if p != nil && p.DailyTimeMinutes != nil && *p.DailyTimeMinutes > 0 {
		return *p.DailyTimeMinutes
	}
	return DefaultDailyMinutes
}

// ProfileUpdate is a partial profile change; nil fields are left untouched.
type ProfileUpdate struct {
	FullName            *string `json:"full_name,omitempty" validate:"omitempty,max=200"`
	RoleCategory        *string `json:"role_category,omitempty" validate:"omitempty,max=100"`
	SelectedRole        *string `json:"selected_role,omitempty" validate:"omitempty,max=100"`
	DailyTimeMinutes    *int    `json:"daily_time_minutes,omitempty" validate:"omitempty,min=15,max=480"`
	OnboardingCompleted *bool   `json:"onboarding_completed,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.FullName == nil && u.RoleCategory == nil && u.SelectedRole == nil &&
		u.DailyTimeMinutes == nil && u.OnboardingCompleted == nil
}

// UserActivity records when a user last talked to the API. The daily
// pre-generation scheduler only considers recently active users.
type UserActivity struct {
	UserID             uuid.UUID `json:"user_id"`
	LastAPIInteraction time.Time `json:"last_api_interaction"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
