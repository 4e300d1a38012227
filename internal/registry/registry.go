// Package registry implements the process-wide indices described in
// spec.md section 4.4: fd->User, nickname->User, and name->Channel. It
// is the sole owner of every User and Channel record; the User<->Channel
// cross-references it wires up are non-owning back-pointers.
package registry

import (
	"errors"
	"strings"

	"github.com/klaxonwire/goircd/internal/channel"
	"github.com/klaxonwire/goircd/internal/session"
	"github.com/klaxonwire/goircd/internal/validate"
)

// ErrNicknameInUse is returned by Rename when the requested nickname is
// already held by a different session.
var ErrNicknameInUse = errors.New("nickname in use")

// ErrChannelExists is returned by AddChannel when the name is already
// registered.
var ErrChannelExists = errors.New("channel already exists")

// ErrInvalidChannelName is returned by AddChannel when the validator
// rejects the name.
var ErrInvalidChannelName = errors.New("invalid channel name")

// Registry is the single owned aggregate threaded through the
// dispatcher. It is not safe for concurrent use: spec.md section 5
// gives it exactly one caller, the core dispatch loop.
type Registry struct {
	hostname string
	password string

	nextID int

	byID     map[int]*session.User
	byNick   map[string]*session.User
	channels map[string]*channel.Channel
}

// New creates an empty Registry configured with the server's advertised
// hostname and connection password.
func New(hostname, password string) *Registry {
	return &Registry{
		hostname: hostname,
		password: password,
		byID:     make(map[int]*session.User),
		byNick:   make(map[string]*session.User),
		channels: make(map[string]*channel.Channel),
	}
}

// Hostname returns the server's advertised hostname, used as the
// prefix on every reply this server originates.
func (r *Registry) Hostname() string { return r.hostname }

// Password returns the server's configured connection password.
func (r *Registry) Password() string { return r.password }

// Connect allocates a fresh, unregistered session for a newly-accepted
// connection and indexes it by a freshly minted connection id.
func (r *Registry) Connect(host string) *session.User {
	r.nextID++
	u := session.New(r.nextID, host)
	r.byID[u.ID()] = u
	return u
}

// UserCount returns the number of currently connected sessions,
// registered or not.
func (r *Registry) UserCount() int { return len(r.byID) }

// ChannelCount returns the number of channels currently tracked (every
// tracked channel has at least one member; empty channels are
// destroyed immediately).
func (r *Registry) ChannelCount() int { return len(r.channels) }

// FindByID looks up a session by connection id.
func (r *Registry) FindByID(id int) (*session.User, bool) {
	u, ok := r.byID[id]
	return u, ok
}

// FindByNickname looks up a session by nickname, compared
// case-insensitively.
func (r *Registry) FindByNickname(nick string) (*session.User, bool) {
	u, ok := r.byNick[strings.ToLower(nick)]
	return u, ok
}

// Rename atomically updates the nickname index for u to newNick,
// failing without effect if newNick is already claimed by a different
// session.
func (r *Registry) Rename(u *session.User, newNick string) error {
	key := strings.ToLower(newNick)
	if existing, ok := r.byNick[key]; ok && existing != u {
		return ErrNicknameInUse
	}
	if u.Nickname() != "*" {
		delete(r.byNick, strings.ToLower(u.Nickname()))
	}
	u.SetNickname(newNick)
	r.byNick[key] = u
	return nil
}

// FindChannel looks up a channel by name.
func (r *Registry) FindChannel(name string) (*channel.Channel, bool) {
	c, ok := r.channels[name]
	return c, ok
}

// AddChannel validates and creates a new, empty channel.
func (r *Registry) AddChannel(name string) (*channel.Channel, error) {
	if !validate.ChannelName(name) {
		return nil, ErrInvalidChannelName
	}
	if _, ok := r.channels[name]; ok {
		return nil, ErrChannelExists
	}
	c := channel.New(name)
	r.channels[name] = c
	return c, nil
}

// DeleteChannel removes a channel record outright, regardless of
// membership. Callers use this once a channel's member map is empty.
func (r *Registry) DeleteChannel(name string) {
	delete(r.channels, name)
}

// LeaveChannel removes u from c, destroying c if it becomes empty and
// broadcasting a NEW_OPERATOR notice if u's departure emptied the
// operator set and another member took it over. It reports whether c
// was destroyed.
func (r *Registry) LeaveChannel(u *session.User, c *channel.Channel) (destroyed bool) {
	empty, promoted := c.DeleteUser(u.ID())
	u.LeaveChannel(c.Name)

	if empty {
		r.DeleteChannel(c.Name)
		return true
	}
	if promoted != nil {
		c.Broadcast(":"+r.hostname+" NOTICE "+c.Name+" :NEW_OPERATOR "+promoted.Nickname()+"\r\n", 0)
	}
	return false
}

// Disconnect tears a session down: it is removed from every channel it
// belongs to (destroying any that become empty), then dropped from both
// indices. It never touches the underlying socket, which the acceptor
// owns.
func (r *Registry) Disconnect(id int) {
	u, ok := r.byID[id]
	if !ok {
		return
	}

	for _, c := range u.Channels() {
		r.LeaveChannel(u, c)
	}

	delete(r.byID, id)
	if u.Nickname() != "*" {
		delete(r.byNick, strings.ToLower(u.Nickname()))
	}
}
