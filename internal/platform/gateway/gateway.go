// Package gateway implements the platform boundary against the chat
// platform's HTTP API and websocket event stream. Inbound events arrive as
// JSON frames over one websocket connection; all actions are plain HTTP
// calls authenticated with the bot session token.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hearthbot/hearth/internal/common"
	"github.com/hearthbot/hearth/internal/logging"
	"github.com/hearthbot/hearth/internal/platform"
)

const (
	dialTimeout  = 10 * time.Second
	pingInterval = 30 * time.Second
	eventBuffer  = 64
)

// Client talks to the chat platform. It satisfies platform.Messenger and
// feeds inbound events into the channel returned by Events.
type Client struct {
	apiBase string
	wsURL   string
	token   string
	http    *http.Client
	logger  logging.Logger

	conn    *websocket.Conn
	events  chan platform.Event
	latency atomic.Int64 // nanoseconds
}

// New returns a Client. Connect must be called before Events.
func New(apiBase, wsURL, token string, logger logging.Logger) *Client {
	return &Client{
		apiBase: apiBase,
		wsURL:   wsURL,
		token:   token,
		http:    &http.Client{},
		logger:  logger,
		events:  make(chan platform.Event, eventBuffer),
	}
}

// Connect dials the websocket and starts the read loop. The loop stops and
// the event channel closes when ctx is cancelled or the connection drops;
// reconnecting is the caller's decision, no retries happen here.
func (c *Client) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	header := http.Header{"Authorization": []string{"Bot " + c.token}}

	conn, _, err := dialer.DialContext(ctx, c.wsURL, header)
	if err != nil {
		return fmt.Errorf("failed to dial gateway: %w", err)
	}
	c.conn = conn

	conn.SetPongHandler(func(appData string) error {
		if sent, err := time.Parse(time.RFC3339Nano, appData); err == nil {
			c.latency.Store(int64(time.Since(sent)))
		}
		return nil
	})

	go c.readLoop(ctx)
	go c.pingLoop(ctx)

	return nil
}

// Events returns the inbound event stream. Closed when the connection ends.
func (c *Client) Events() <-chan platform.Event {
	return c.events
}

func (c *Client) readLoop(ctx context.Context) {
	defer close(c.events)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Error(ctx, "gateway read failed", "error", err)
			}
			return
		}
		ev, err := decodeEvent(data)
		if err != nil {
			c.logger.Warn(ctx, "dropping undecodable frame", "error", err)
			continue
		}
		if ev == nil {
			continue // frame type we do not handle
		}
		select {
		case c.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			stamp := time.Now().Format(time.RFC3339Nano)
			deadline := time.Now().Add(dialTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, []byte(stamp), deadline); err != nil {
				return
			}
		case <-ctx.Done():
			_ = c.conn.Close()
			return
		}
	}
}

// Latency reports the last measured gateway round trip.
func (c *Client) Latency() time.Duration {
	return time.Duration(c.latency.Load())
}

// frame is the websocket envelope: a type tag and a raw payload.
type frame struct {
	Type string          `json:"t"`
	Data json.RawMessage `json:"d"`
}

type wireAuthor struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Bot         bool   `json:"bot"`
	Admin       bool   `json:"admin"`
	Manager     bool   `json:"manager"`
}

type wireMessage struct {
	ID          string     `json:"id"`
	ChannelID   string     `json:"channel_id"`
	CommunityID string     `json:"community_id"`
	Author      wireAuthor `json:"author"`
	Content     string     `json:"content"`
}

type wireInteraction struct {
	CommunityID string     `json:"community_id"`
	ChannelID   string     `json:"channel_id"`
	User        wireAuthor `json:"user"`
	CustomID    string     `json:"custom_id"`
	Value       string     `json:"value"`
	ReplyToken  string     `json:"reply_token"`
}

// decodeEvent turns one websocket frame into a platform event. A nil event
// with nil error means the frame type is not one the bot consumes.
func decodeEvent(data []byte) (platform.Event, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("bad frame: %w", err)
	}

	switch f.Type {
	case "message":
		var m wireMessage
		if err := json.Unmarshal(f.Data, &m); err != nil {
			return nil, fmt.Errorf("bad message frame: %w", err)
		}
		return platform.MessageEvent{Message: platform.Message{
			ID:                m.ID,
			ChannelID:         m.ChannelID,
			CommunityID:       m.CommunityID,
			AuthorID:          m.Author.ID,
			AuthorUsername:    m.Author.Username,
			AuthorDisplayName: m.Author.DisplayName,
			AuthorBot:         m.Author.Bot,
			AuthorAdmin:       m.Author.Admin,
			AuthorManager:     m.Author.Manager,
			Content:           m.Content,
		}}, nil

	case "button", "modal", "select":
		var i wireInteraction
		if err := json.Unmarshal(f.Data, &i); err != nil {
			return nil, fmt.Errorf("bad %s frame: %w", f.Type, err)
		}
		switch f.Type {
		case "button":
			return platform.ButtonEvent{
				CommunityID: i.CommunityID,
				ChannelID:   i.ChannelID,
				UserID:      i.User.ID,
				Username:    i.User.Username,
				DisplayName: i.User.DisplayName,
				CustomID:    i.CustomID,
				ReplyToken:  i.ReplyToken,
			}, nil
		case "modal":
			return platform.ModalEvent{
				CommunityID: i.CommunityID,
				ChannelID:   i.ChannelID,
				UserID:      i.User.ID,
				Username:    i.User.Username,
				DisplayName: i.User.DisplayName,
				CustomID:    i.CustomID,
				Value:       i.Value,
				ReplyToken:  i.ReplyToken,
			}, nil
		default:
			return platform.SelectEvent{
				CommunityID: i.CommunityID,
				ChannelID:   i.ChannelID,
				UserID:      i.User.ID,
				CustomID:    i.CustomID,
				Value:       i.Value,
				ReplyToken:  i.ReplyToken,
			}, nil
		}

	default:
		return nil, nil
	}
}

// --- outbound HTTP API ---

type outgoingBody struct {
	Content   string                  `json:"content,omitempty"`
	Embed     *platform.Embed         `json:"embed,omitempty"`
	Button    string                  `json:"button,omitempty"`
	SelectID  string                  `json:"select_id,omitempty"`
	Options   []platform.SelectOption `json:"options,omitempty"`
	TTLMillis int64                   `json:"ttl_ms,omitempty"`
}

func encodeOutgoing(out platform.Outgoing) outgoingBody {
	return outgoingBody{
		Content:   out.Content,
		Embed:     out.Embed,
		Button:    out.Button,
		SelectID:  out.SelectID,
		Options:   out.Options,
		TTLMillis: out.TTL.Milliseconds(),
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return common.ErrNotFound
	case resp.StatusCode >= 400:
		return fmt.Errorf("platform returned %s", resp.Status)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) Send(ctx context.Context, channelID string, out platform.Outgoing) (platform.Ref, error) {
	var created struct {
		ID string `json:"id"`
	}
	path := fmt.Sprintf("/channels/%s/messages", channelID)
	if err := c.do(ctx, http.MethodPost, path, encodeOutgoing(out), &created); err != nil {
		return platform.Ref{}, err
	}
	return platform.Ref{ChannelID: channelID, MessageID: created.ID}, nil
}

func (c *Client) Edit(ctx context.Context, ref platform.Ref, out platform.Outgoing) error {
	path := fmt.Sprintf("/channels/%s/messages/%s", ref.ChannelID, ref.MessageID)
	return c.do(ctx, http.MethodPatch, path, encodeOutgoing(out), nil)
}

func (c *Client) Delete(ctx context.Context, ref platform.Ref) error {
	path := fmt.Sprintf("/channels/%s/messages/%s", ref.ChannelID, ref.MessageID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) React(ctx context.Context, ref platform.Ref, emoji string) error {
	path := fmt.Sprintf("/channels/%s/messages/%s/reactions/%s",
		ref.ChannelID, ref.MessageID, url.PathEscape(emoji))
	return c.do(ctx, http.MethodPut, path, nil, nil)
}

func (c *Client) Recent(ctx context.Context, channelID string, limit int) ([]platform.Message, error) {
	var wire []wireMessage
	path := fmt.Sprintf("/channels/%s/messages?limit=%d", channelID, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &wire); err != nil {
		return nil, err
	}
	msgs := make([]platform.Message, 0, len(wire))
	for _, m := range wire {
		msgs = append(msgs, platform.Message{
			ID:                m.ID,
			ChannelID:         m.ChannelID,
			CommunityID:       m.CommunityID,
			AuthorID:          m.Author.ID,
			AuthorUsername:    m.Author.Username,
			AuthorDisplayName: m.Author.DisplayName,
			AuthorBot:         m.Author.Bot,
			Content:           m.Content,
		})
	}
	return msgs, nil
}

func (c *Client) ChannelLive(ctx context.Context, channelID string) error {
	return c.do(ctx, http.MethodGet, "/channels/"+channelID, nil, nil)
}

func (c *Client) ResolveChannel(ctx context.Context, communityID, nameOrMention string) (string, error) {
	var resolved struct {
		ID string `json:"id"`
	}
	path := fmt.Sprintf("/communities/%s/channels/resolve?q=%s",
		communityID, url.QueryEscape(nameOrMention))
	if err := c.do(ctx, http.MethodGet, path, nil, &resolved); err != nil {
		return "", err
	}
	return resolved.ID, nil
}

func (c *Client) Direct(ctx context.Context, userID string, out platform.Outgoing) error {
	path := fmt.Sprintf("/users/%s/messages", userID)
	return c.do(ctx, http.MethodPost, path, encodeOutgoing(out), nil)
}

func (c *Client) OpenModal(ctx context.Context, replyToken string, m platform.Modal) error {
	path := fmt.Sprintf("/interactions/%s/modal", url.PathEscape(replyToken))
	return c.do(ctx, http.MethodPost, path, m, nil)
}

func (c *Client) Whisper(ctx context.Context, replyToken, content string) error {
	path := fmt.Sprintf("/interactions/%s/reply", url.PathEscape(replyToken))
	body := struct {
		Content   string `json:"content"`
		Ephemeral bool   `json:"ephemeral"`
	}{Content: content, Ephemeral: true}
	return c.do(ctx, http.MethodPost, path, body, nil)
}
