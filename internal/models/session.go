package models

import "time"

// Session holds the live token pair for an authenticated client.
// ExpiresAt is derived from the access token's exp claim, not stored
// independently. Absence of a Session means unauthenticated.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// expirySkew treats tokens about to expire as already expired so a request
// issued now does not race the server-side expiry check.
const expirySkew = 10 * time.Second

// IsExpired returns true if the access token has expired or is within the
// skew window of expiring. A zero ExpiresAt (undecodable token) counts as
// expired.
func (s *Session) IsExpired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return true
	}
	return now.Add(expirySkew).After(s.ExpiresAt)
}
