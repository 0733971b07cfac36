package models

import "time"

// Session binds a user to one refresh-token-derived credential on one device.
// The plaintext refresh token is never stored; only its keyed hash is.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"-"`
	DeviceInfo       string    `json:"device_info,omitempty"`
	IPAddress        string    `json:"ip_address,omitempty"`
	UserAgent        string    `json:"user_agent,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	ExpiresAt        time.Time `json:"expires_at"`
	LastAccessedAt   time.Time `json:"last_accessed_at"`
}

// Active reports whether the session is still usable at the given instant.
func (s Session) Active(now time.Time) bool {
	return s.ExpiresAt.After(now)
}
