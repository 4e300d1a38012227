// Package session implements the per-client state machine described in
// spec.md section 4.2: identity, auth flags, I/O buffers, and
// channel-membership back-references.
package session

import (
	"errors"

	"github.com/google/uuid"

	"github.com/klaxonwire/goircd/internal/channel"
	"github.com/klaxonwire/goircd/internal/message"
)

// RegisterOutcome reports the result of a registration-completion
// attempt triggered by NICK or USER.
type RegisterOutcome int

const (
	// NotReady means the user still lacks a nickname or a username, or
	// is already registered.
	NotReady RegisterOutcome = iota
	// Welcomed means registration just completed successfully.
	Welcomed
	// PasswordMismatch means registration was attempted but the stored
	// password did not match the server's configured password.
	PasswordMismatch
)

// ErrAlreadyRegistered is returned by SetPassword once the session has
// completed registration; PASS is rejected after that point.
var ErrAlreadyRegistered = errors.New("session already registered")

// User is a single connected client's session state.
type User struct {
	id      int
	host    string
	traceID string

	password string
	nickname string
	username string
	realname string

	hasNick    bool
	hasUser    bool
	registered bool
	quitting   bool

	framer message.Framer
	outbuf []byte

	channels map[string]*channel.Channel
}

// New creates a fresh, unregistered session for a newly-accepted
// connection. id must be unique and stable for the session's lifetime;
// host is fixed at connect time and never changes.
func New(id int, host string) *User {
	return &User{
		id:       id,
		host:     host,
		traceID:  uuid.NewString(),
		nickname: "*",
		channels: make(map[string]*channel.Channel),
	}
}

func (u *User) ID() int           { return u.id }
func (u *User) Host() string      { return u.host }
func (u *User) TraceID() string   { return u.traceID }
func (u *User) Nickname() string  { return u.nickname }
func (u *User) Username() string  { return u.username }
func (u *User) Realname() string  { return u.realname }
func (u *User) Password() string  { return u.password }
func (u *User) Registered() bool  { return u.registered }
func (u *User) Quitting() bool    { return u.quitting }
func (u *User) MarkQuitting()     { u.quitting = true }

// SourceString returns the canonical "nick!user@host" sender identifier
// attached to messages fanned out to other clients.
func (u *User) SourceString() string {
	return message.FormatHostmask(u.nickname, u.username, u.host)
}

// SetPassword stores pwd as the session's pending password. It is only
// permitted before registration completes.
func (u *User) SetPassword(pwd string) error {
	if u.registered {
		return ErrAlreadyRegistered
	}
	u.password = pwd
	return nil
}

// SetNickname records a validated, already-uniqueness-checked nickname.
func (u *User) SetNickname(nick string) {
	u.nickname = nick
	u.hasNick = true
}

// SetUser records the username and realname supplied by USER.
func (u *User) SetUser(username, realname string) {
	u.username = username
	u.realname = realname
	u.hasUser = true
}

// TryRegister checks whether the session now has both a nickname and a
// username and, if so, validates the stored password against the
// server's configured password, transitioning to Registered on success.
// Calling it before both are set is a no-op that reports NotReady.
func (u *User) TryRegister(serverPassword string) RegisterOutcome {
	if u.registered || !u.hasNick || !u.hasUser {
		return NotReady
	}
	if u.password != serverPassword {
		return PasswordMismatch
	}
	u.registered = true
	return Welcomed
}

// FeedInput appends freshly received bytes to the input buffer.
func (u *User) FeedInput(b []byte) {
	u.framer.Feed(b)
}

// NextMessage extracts and parses the next complete line from the input
// buffer, discarding empty lines, and reports whether one was
// available. It never returns more than one Message per call.
func (u *User) NextMessage() (*message.Message, bool) {
	for {
		line, ok := u.framer.Next()
		if !ok {
			return nil, false
		}
		if m := message.Parse(line); m != nil {
			return m, true
		}
	}
}

// ClearInput discards any buffered, not-yet-framed input. Used by QUIT
// so nothing further is processed for a session once it is closing.
func (u *User) ClearInput() {
	u.framer = message.Framer{}
}

// Enqueue appends a raw wire-ready line to the output buffer. It
// satisfies channel.Member so a User can be a Channel member directly.
func (u *User) Enqueue(line string) {
	u.outbuf = append(u.outbuf, []byte(line)...)
}

// EnqueueMessage renders m and appends it to the output buffer.
func (u *User) EnqueueMessage(m *message.Message) {
	u.outbuf = append(u.outbuf, m.Bytes()...)
}

// DrainOutput returns and clears the accumulated output buffer, for the
// acceptor to write to the socket.
func (u *User) DrainOutput() []byte {
	out := u.outbuf
	u.outbuf = nil
	return out
}

// HasPendingOutput reports whether output remains to be drained.
func (u *User) HasPendingOutput() bool {
	return len(u.outbuf) > 0
}

// Channels returns the user's current channel-membership back-references.
func (u *User) Channels() map[string]*channel.Channel {
	return u.channels
}

// InChannel reports whether the user is a member of the named channel.
func (u *User) InChannel(name string) bool {
	_, ok := u.channels[name]
	return ok
}

// JoinChannel records a membership back-reference. The caller is
// responsible for also calling Channel.AddUser.
func (u *User) JoinChannel(c *channel.Channel) {
	u.channels[c.Name] = c
}

// LeaveChannel removes a membership back-reference. The caller is
// responsible for also calling Channel.DeleteUser.
func (u *User) LeaveChannel(name string) {
	delete(u.channels, name)
}

// NotifyChannels fans msg out to every member of every channel the user
// belongs to, delivering to each distinct member at most once. When
// excludeSelf is false and the user belongs to no channel, msg is
// echoed directly back to the user instead (the NICK-while-channel-less
// case from spec.md section 4.2).
func (u *User) NotifyChannels(msg string, excludeSelf bool) {
	delivered := make(map[int]bool)
	if excludeSelf {
		delivered[u.id] = true
	}
	any := false
	for _, c := range u.channels {
		for _, m := range c.Members() {
			if delivered[m.ID()] {
				continue
			}
			delivered[m.ID()] = true
			m.Enqueue(msg)
			any = true
		}
	}
	if !any && !excludeSelf {
		u.Enqueue(msg)
	}
}
