package channel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klaxonwire/goircd/internal/channel"
)

type fakeMember struct {
	id   int
	nick string
	out  []string
}

func (f *fakeMember) ID() int            { return f.id }
func (f *fakeMember) Nickname() string   { return f.nick }
func (f *fakeMember) Enqueue(line string) { f.out = append(f.out, line) }

func TestFirstJoinerBecomesOperator(t *testing.T) {
	c := channel.New("#x")
	alice := &fakeMember{id: 1, nick: "alice"}
	c.AddUser(alice)

	assert.True(t, c.IsUserOper(1))
	assert.Equal(t, 1, c.MemberCount())
}

func TestSecondJoinerIsNotOperator(t *testing.T) {
	c := channel.New("#x")
	c.AddUser(&fakeMember{id: 1, nick: "alice"})
	c.AddUser(&fakeMember{id: 2, nick: "bob"})

	assert.True(t, c.IsUserOper(1))
	assert.False(t, c.IsUserOper(2))
}

func TestDeleteLastMemberDestroysChannel(t *testing.T) {
	c := channel.New("#x")
	c.AddUser(&fakeMember{id: 1, nick: "alice"})

	empty, promoted := c.DeleteUser(1)
	assert.True(t, empty)
	assert.Nil(t, promoted)
}

func TestOperatorSuccessionPromotesLowestID(t *testing.T) {
	c := channel.New("#x")
	alice := &fakeMember{id: 1, nick: "alice"}
	bob := &fakeMember{id: 2, nick: "bob"}
	carol := &fakeMember{id: 3, nick: "carol"}
	c.AddUser(alice)
	c.AddUser(bob)
	c.AddUser(carol)

	empty, promoted := c.DeleteUser(1)
	assert.False(t, empty)
	require.NotNil(t, promoted)
	assert.Equal(t, 2, promoted.ID())
	assert.True(t, c.IsUserOper(2))
	assert.False(t, c.IsUserOper(1))
}

func TestDeleteNonOperatorLeavesOperatorSetUntouched(t *testing.T) {
	c := channel.New("#x")
	c.AddUser(&fakeMember{id: 1, nick: "alice"})
	c.AddUser(&fakeMember{id: 2, nick: "bob"})

	empty, promoted := c.DeleteUser(2)
	assert.False(t, empty)
	assert.Nil(t, promoted)
	assert.True(t, c.IsUserOper(1))
}

func TestFindByNicknameCaseInsensitive(t *testing.T) {
	c := channel.New("#x")
	c.AddUser(&fakeMember{id: 1, nick: "Alice"})

	m, ok := c.FindByNickname("alice")
	require.True(t, ok)
	assert.Equal(t, 1, m.ID())
}

func TestBroadcastSkipsIgnoredID(t *testing.T) {
	c := channel.New("#x")
	alice := &fakeMember{id: 1, nick: "alice"}
	bob := &fakeMember{id: 2, nick: "bob"}
	c.AddUser(alice)
	c.AddUser(bob)

	c.Broadcast("hi\r\n", 1)

	assert.Empty(t, alice.out)
	assert.Equal(t, []string{"hi\r\n"}, bob.out)
}

func TestMembersOrderedByID(t *testing.T) {
	c := channel.New("#x")
	c.AddUser(&fakeMember{id: 3, nick: "carol"})
	c.AddUser(&fakeMember{id: 1, nick: "alice"})
	c.AddUser(&fakeMember{id: 2, nick: "bob"})

	var ids []int
	for _, m := range c.Members() {
		ids = append(ids, m.ID())
	}
	assert.Equal(t, []int{1, 2, 3}, ids)
}
