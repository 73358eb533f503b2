// Package platformtest provides an in-memory Messenger for tests: it keeps
// per-channel history (newest first) and records every outbound action so
// tests can assert on what the bot did.
package platformtest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hearthbot/hearth/internal/common"
	"github.com/hearthbot/hearth/internal/platform"
)

// Fake implements platform.Messenger in memory. Not safe for concurrent use;
// the bot's event handling is single-threaded and so are the tests.
type Fake struct {
	nextID int

	// History holds each channel's messages, newest first, mirroring
	// Messenger.Recent semantics.
	History map[string][]platform.Message

	// Channels maps community id -> channel name -> channel id, used by
	// ResolveChannel. Mentions resolve by id directly.
	Channels map[string]map[string]string

	// DeadChannels makes ChannelLive and Send fail for the listed ids.
	DeadChannels map[string]bool

	// SendErr, when set, fails the next Send and is then cleared.
	SendErr error

	// Sent keeps every successful Send payload per channel, oldest first,
	// for asserting on embeds and attached controls.
	Sent map[string][]platform.Outgoing

	Deleted   []platform.Ref
	Reactions map[platform.Ref][]string
	Directs   map[string][]platform.Outgoing
	Whispers  map[string][]string
	Modals    map[string][]platform.Modal
	Edits     map[platform.Ref]platform.Outgoing
}

func NewFake() *Fake {
	return &Fake{
		History:      map[string][]platform.Message{},
		Channels:     map[string]map[string]string{},
		DeadChannels: map[string]bool{},
		Sent:         map[string][]platform.Outgoing{},
		Reactions:    map[platform.Ref][]string{},
		Directs:      map[string][]platform.Outgoing{},
		Whispers:     map[string][]string{},
		Modals:       map[string][]platform.Modal{},
		Edits:        map[platform.Ref]platform.Outgoing{},
	}
}

// AddIncoming places a user message at the head of a channel's history and
// returns it, so tests can feed the same value into the bot's handlers.
func (f *Fake) AddIncoming(channelID, communityID, authorID, content string) platform.Message {
	f.nextID++
	msg := platform.Message{
		ID:          fmt.Sprintf("msg-%d", f.nextID),
		ChannelID:   channelID,
		CommunityID: communityID,
		AuthorID:    authorID,
		Content:     content,
	}
	f.History[channelID] = append([]platform.Message{msg}, f.History[channelID]...)
	return msg
}

// LastSent returns the newest bot-authored message in the channel, if any.
func (f *Fake) LastSent(channelID string) (platform.Message, bool) {
	for _, m := range f.History[channelID] {
		if m.AuthorBot {
			return m, true
		}
	}
	return platform.Message{}, false
}

func (f *Fake) Send(ctx context.Context, channelID string, out platform.Outgoing) (platform.Ref, error) {
	if f.SendErr != nil {
		err := f.SendErr
		f.SendErr = nil
		return platform.Ref{}, err
	}
	if f.DeadChannels[channelID] {
		return platform.Ref{}, common.ErrNotFound
	}
	f.nextID++
	msg := platform.Message{
		ID:        fmt.Sprintf("msg-%d", f.nextID),
		ChannelID: channelID,
		AuthorBot: true,
		Content:   out.Content,
	}
	if out.Embed != nil {
		msg.Content = out.Embed.Description
	}
	f.History[channelID] = append([]platform.Message{msg}, f.History[channelID]...)
	f.Sent[channelID] = append(f.Sent[channelID], out)
	return platform.Ref{ChannelID: channelID, MessageID: msg.ID}, nil
}

func (f *Fake) Edit(ctx context.Context, ref platform.Ref, out platform.Outgoing) error {
	f.Edits[ref] = out
	return nil
}

func (f *Fake) Delete(ctx context.Context, ref platform.Ref) error {
	history := f.History[ref.ChannelID]
	for i, m := range history {
		if m.ID == ref.MessageID {
			f.History[ref.ChannelID] = append(history[:i:i], history[i+1:]...)
			f.Deleted = append(f.Deleted, ref)
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *Fake) React(ctx context.Context, ref platform.Ref, emoji string) error {
	f.Reactions[ref] = append(f.Reactions[ref], emoji)
	return nil
}

func (f *Fake) Recent(ctx context.Context, channelID string, limit int) ([]platform.Message, error) {
	if f.DeadChannels[channelID] {
		return nil, common.ErrNotFound
	}
	history := f.History[channelID]
	if len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

func (f *Fake) ChannelLive(ctx context.Context, channelID string) error {
	if f.DeadChannels[channelID] {
		return common.ErrNotFound
	}
	return nil
}

func (f *Fake) ResolveChannel(ctx context.Context, communityID, nameOrMention string) (string, error) {
	s := strings.TrimSpace(nameOrMention)
	if strings.HasPrefix(s, "<#") && strings.HasSuffix(s, ">") {
		return s[2 : len(s)-1], nil
	}
	name := strings.TrimPrefix(s, "#")
	if id, ok := f.Channels[communityID][name]; ok {
		return id, nil
	}
	return "", common.ErrNotFound
}

func (f *Fake) Direct(ctx context.Context, userID string, out platform.Outgoing) error {
	f.Directs[userID] = append(f.Directs[userID], out)
	return nil
}

func (f *Fake) OpenModal(ctx context.Context, replyToken string, m platform.Modal) error {
	f.Modals[replyToken] = append(f.Modals[replyToken], m)
	return nil
}

func (f *Fake) Whisper(ctx context.Context, replyToken, content string) error {
	f.Whispers[replyToken] = append(f.Whispers[replyToken], content)
	return nil
}

func (f *Fake) Latency() time.Duration {
	return 42 * time.Millisecond
}
