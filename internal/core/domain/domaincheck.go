package domain

import "time"

// DomainCandidate is a registrable domain name proposed by the assistant,
// not yet availability-checked. Domain is a bare name (example.com), never
// a URL or path.
type DomainCandidate struct {
	Domain      string `json:"domain"`
	Description string `json:"description,omitempty"`
}

// DomainResult is the authoritative per-domain record attached to a message.
//
// Available is a tri-state: nil means the check has not resolved yet (or
// could not resolve), true means registrable, false means taken.
// Exactly one DomainResult exists per distinct domain string within a
// message's result list.
type DomainResult struct {
	Domain      string     `json:"domain"`
	Available   *bool      `json:"available"`
	Checking    bool       `json:"checking"`
	Registrar   string     `json:"registrar,omitempty"`
	ExpiryDate  string     `json:"expiry_date,omitempty"`
	Error       string     `json:"error,omitempty"`
	Description string     `json:"description,omitempty"`
	Order       int        `json:"order"`
	CheckedAt   *time.Time `json:"checked_at,omitempty"`
}

// Resolved reports whether the availability verdict has been determined.
// A result with a recorded error but no verdict is not resolved.
func (r *DomainResult) Resolved() bool {
	return r.Available != nil
}

// Bool returns a pointer to b, for populating the Available tri-state.
func Bool(b bool) *bool {
	return &b
}
