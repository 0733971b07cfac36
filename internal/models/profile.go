package models

import "time"

// ProfileKind tags the variant of profile a user carries.
// Each platform role owns exactly one profile shape.
type ProfileKind string

const (
	ProfileKindHost   ProfileKind = "host"
	ProfileKindAgency ProfileKind = "agency"
	ProfileKindBrand  ProfileKind = "brand"
	ProfileKindGifter ProfileKind = "gifter"
)

// ProfileKindForRole maps a platform role to its profile variant.
// Admin accounts carry no profile.
func ProfileKindForRole(r Role) (ProfileKind, bool) {
	switch r {
	case RoleHost:
		return ProfileKindHost, true
	case RoleAgency:
		return ProfileKindAgency, true
	case RoleBrand:
		return ProfileKindBrand, true
	case RoleGifter:
		return ProfileKindGifter, true
	}
	return "", false
}

// Profile is a tagged variant over the four profile kinds. Only the fields
// belonging to Kind are populated; the rest stay zero.
type Profile struct {
	UserID      string      `json:"user_id"`
	Kind        ProfileKind `json:"kind"`
	DisplayName string      `json:"display_name"`
	Bio         string      `json:"bio,omitempty"`

	// host
	StreamCategory string `json:"stream_category,omitempty"`

	// agency
	AgencyName string `json:"agency_name,omitempty"`

	// brand
	BrandWebsite string `json:"brand_website,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}
