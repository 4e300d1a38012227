// Package channel implements a named IRC channel: its membership set,
// its operator subset, and fan-out broadcast to members.
package channel

import "strings"

// Member is the narrow view a Channel needs of a connected user. It is
// satisfied by session.User without this package importing session,
// keeping the User<->Channel back-reference one-directional at the
// package level (session imports channel, not the reverse).
type Member interface {
	ID() int
	Nickname() string
	Enqueue(line string)
}

// Channel is a named membership set with an operator subset.
// Invariant: Operators is non-empty whenever Members is non-empty, and
// Operators is always a subset of the member ids.
type Channel struct {
	Name      string
	members   map[int]Member
	operators map[int]bool
}

// New creates an empty channel with the given name.
func New(name string) *Channel {
	return &Channel{
		Name:      name,
		members:   make(map[int]Member),
		operators: make(map[int]bool),
	}
}

// AddUser inserts m into the member map. The first user to join an
// empty channel becomes its operator.
func (c *Channel) AddUser(m Member) {
	if len(c.members) == 0 {
		c.operators[m.ID()] = true
	}
	c.members[m.ID()] = m
}

// DeleteUser removes id from the channel. It reports whether the
// channel is now empty (and should be destroyed by the caller), and
// returns the newly-promoted operator, if the operator set was emptied
// by this departure and another member remains to take it over.
func (c *Channel) DeleteUser(id int) (empty bool, promoted Member) {
	delete(c.members, id)
	delete(c.operators, id)

	if len(c.members) == 0 {
		return true, nil
	}
	if len(c.operators) > 0 {
		return false, nil
	}

	minID := -1
	for mid := range c.members {
		if minID == -1 || mid < minID {
			minID = mid
		}
	}
	c.operators[minID] = true
	return false, c.members[minID]
}

// FindByID returns the member with the given connection id, if present.
func (c *Channel) FindByID(id int) (Member, bool) {
	m, ok := c.members[id]
	return m, ok
}

// FindByNickname returns the member with the given nickname, compared
// case-insensitively, if present.
func (c *Channel) FindByNickname(nick string) (Member, bool) {
	for _, m := range c.members {
		if strings.EqualFold(m.Nickname(), nick) {
			return m, true
		}
	}
	return nil, false
}

// IsUserOper reports whether id is in the operator set.
func (c *Channel) IsUserOper(id int) bool {
	return c.operators[id]
}

// noIgnore is the sentinel meaning "exclude nobody" from a broadcast.
// Connection ids are assigned starting at 1 by the Registry, so 0 never
// collides with a real member id.
const noIgnore = 0

// Broadcast appends msg to every member's output buffer, optionally
// skipping one connection id.
func (c *Channel) Broadcast(msg string, ignoreID int) {
	for id, m := range c.members {
		if ignoreID != noIgnore && id == ignoreID {
			continue
		}
		m.Enqueue(msg)
	}
}

// MemberCount returns the number of members currently in the channel.
func (c *Channel) MemberCount() int {
	return len(c.members)
}

// Members returns every member, ordered by ascending connection id so
// callers (e.g. NAMES replies) get a deterministic listing.
func (c *Channel) Members() []Member {
	ids := make([]int, 0, len(c.members))
	for id := range c.members {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	out := make([]Member, len(ids))
	for i, id := range ids {
		out[i] = c.members[id]
	}
	return out
}
