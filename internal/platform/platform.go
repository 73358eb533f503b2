// Package platform defines the boundary to the chat platform: the event
// types the gateway delivers and the Messenger interface the bot uses to act
// on channels and messages. Message delivery, UI rendering and permission
// checks happen on the platform side; events arrive with the permission
// results already attached.
package platform

import (
	"context"
	"time"
)

// Custom ids for the interactive controls. The three button ids are visual
// variants of the same "vent anonymously" control.
const (
	ButtonCheckinVent   = "checkin_vent"
	ButtonAnonymousVent = "anonymous_vent"
	ButtonSimpleVent    = "simple_vent"

	ModalVent      = "vent_modal"
	SelectTimezone = "setup_timezone"
)

// MaxMessageLen is the platform's message length limit, also applied to the
// vent input field.
const MaxMessageLen = 2000

// Ref identifies one message in one channel.
type Ref struct {
	ChannelID string
	MessageID string
}

// Message is an inbound channel message.
type Message struct {
	ID          string
	ChannelID   string
	CommunityID string

	AuthorID          string
	AuthorUsername    string
	AuthorDisplayName string
	AuthorBot         bool
	AuthorAdmin       bool // administrator in this community
	AuthorManager     bool // has the manage-community permission

	Content string
}

// EmbedField is one name/value pair inside an Embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Embed is a rich message card.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Author      string       `json:"author,omitempty"`
	Footer      string       `json:"footer,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

// SelectOption is one entry of an attached selection control.
type SelectOption struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// Outgoing is the payload for a message the bot sends or edits.
type Outgoing struct {
	Content string
	Embed   *Embed

	// Button attaches the vent control variant with this custom id.
	Button string

	// SelectID plus Options attach a selection control.
	SelectID string
	Options  []SelectOption

	// TTL > 0 asks the platform to delete the message after the interval
	// (transient validation notices).
	TTL time.Duration
}

// Modal is the single-field long-text input opened from a vent button.
type Modal struct {
	CustomID    string `json:"custom_id"`
	Title       string `json:"title"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder,omitempty"`
	MaxLength   int    `json:"max_length,omitempty"`
	Required    bool   `json:"required"`
}

// Event is an inbound platform event. Concrete types: MessageEvent,
// ButtonEvent, ModalEvent, SelectEvent.
type Event interface {
	isEvent()
}

// MessageEvent wraps a new channel message.
type MessageEvent struct {
	Message
}

// ButtonEvent fires when a user presses an attached button.
type ButtonEvent struct {
	CommunityID string
	ChannelID   string
	UserID      string
	Username    string
	DisplayName string
	CustomID    string
	ReplyToken  string
}

// ModalEvent fires when a user submits a modal input.
type ModalEvent struct {
	CommunityID string
	ChannelID   string
	UserID      string
	Username    string
	DisplayName string
	CustomID    string
	Value       string
	ReplyToken  string
}

// SelectEvent fires when a user picks an option from a selection control.
type SelectEvent struct {
	CommunityID string
	ChannelID   string
	UserID      string
	CustomID    string
	Value       string
	ReplyToken  string
}

func (MessageEvent) isEvent() {}
func (ButtonEvent) isEvent()  {}
func (ModalEvent) isEvent()   {}
func (SelectEvent) isEvent()  {}

// Messenger is the outbound half of the platform boundary. Implementations
// perform network I/O; callers treat every method as a suspension point and
// re-validate shared state afterwards.
//
// Delete and Recent translate a platform-side "message/channel gone" into
// common.ErrNotFound so callers that treat a missing message as already
// done can swallow it.
type Messenger interface {
	// Send posts a message and returns its reference.
	Send(ctx context.Context, channelID string, out Outgoing) (Ref, error)

	// Edit replaces the content of an existing message.
	Edit(ctx context.Context, ref Ref, out Outgoing) error

	// Delete removes a message.
	Delete(ctx context.Context, ref Ref) error

	// React adds an emoji reaction to a message.
	React(ctx context.Context, ref Ref, emoji string) error

	// Recent returns up to limit of the channel's newest messages,
	// newest first.
	Recent(ctx context.Context, channelID string, limit int) ([]Message, error)

	// ChannelLive reports whether the channel still resolves to a live
	// handle.
	ChannelLive(ctx context.Context, channelID string) error

	// ResolveChannel turns a channel mention ("<#id>") or a plain name
	// (with or without leading '#') into a channel id inside the community.
	ResolveChannel(ctx context.Context, communityID, nameOrMention string) (string, error)

	// Direct sends a private message to a user.
	Direct(ctx context.Context, userID string, out Outgoing) error

	// OpenModal opens a modal input in response to an interaction.
	OpenModal(ctx context.Context, replyToken string, m Modal) error

	// Whisper replies to an interaction so only the acting user sees it.
	Whisper(ctx context.Context, replyToken, content string) error

	// Latency reports the current gateway round-trip estimate.
	Latency() time.Duration
}

// ChannelMention renders the channel reference the platform displays as a
// clickable channel link.
func ChannelMention(channelID string) string {
	return "<#" + channelID + ">"
}
