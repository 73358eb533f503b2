// Package model defines the persistent entities shared by the Hearth bot's
// repositories and services. All entities are keyed by the community id of the
// chat community they belong to; there is no cross-community sharing.
package model

import "time"

// Ping modes used in the daily check-in. Stored verbatim so existing
// configurations keep working.
const (
	PingEveryone = "@everyone"
	PingHere     = "@here"
	PingNone     = "none"
)

// CommunityConfig is the per-community setup produced by the wizard.
// It is created once and replaced wholesale whenever setup is re-run.
type CommunityConfig struct {
	CommunityID      string
	PostChannelID    string
	SupportChannelID string
	VentChannelID    string
	Ping             string // one of PingEveryone, PingHere, PingNone
	CheckinTime      string // "HH:MM", local to Timezone
	Timezone         string // IANA zone name, e.g. "Europe/London"
}

// VentRecord is one audit-log entry for an anonymous vent. Username,
// display name and content are stored obfuscated; UserID stays plaintext
// because it exists only for moderator audit and is never shown publicly.
type VentRecord struct {
	ID          string // uuid, storage key only
	Timestamp   time.Time
	CommunityID string
	ChannelID   string
	UserID      string
	Username    string // obfuscated
	DisplayName string // obfuscated
	Fingerprint string // 16 hex chars, non-reversible
	Content     string // obfuscated
}

// AccessToken is a single-use moderator token for reading the vent audit log.
// It transitions unused -> used exactly once and is never reused.
type AccessToken struct {
	CommunityID string
	Token       string // 128-bit random, hex
	CreatedAt   time.Time
	Used        bool
	UsedBy      string
	UsedAt      time.Time
}

// AccessGrant records one successful token redemption.
type AccessGrant struct {
	CommunityID string
	UserID      string
	AccessedAt  time.Time
	Token       string
}

// StickyRef points at the current call-to-action message in a vent channel.
// Legacy rows persisted only the message id; those are normalized on first
// use (channel inferred from the community config) and written back in the
// full representation.
type StickyRef struct {
	MessageID string
	ChannelID string // empty for legacy rows
}

// IsLegacy reports whether the ref still uses the bare-message-id
// representation.
func (r StickyRef) IsLegacy() bool {
	return r.ChannelID == ""
}

// CheckinState tracks daily check-in idempotency for one community:
// the last local calendar date a check-in was posted, and the message to
// delete before posting the next one.
type CheckinState struct {
	CommunityID string
	LastDate    string // "YYYY-MM-DD" in the community's timezone
	MessageID   string
}
