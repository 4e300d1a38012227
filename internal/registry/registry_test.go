package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klaxonwire/goircd/internal/registry"
)

func TestConnectAssignsStableIncreasingIDs(t *testing.T) {
	r := registry.New("irc.local", "secret")
	a := r.Connect("host-a")
	b := r.Connect("host-b")

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Less(t, a.ID(), b.ID())
}

func TestRenameEnforcesCaseInsensitiveUniqueness(t *testing.T) {
	r := registry.New("irc.local", "secret")
	alice := r.Connect("host")
	bob := r.Connect("host")

	require.NoError(t, r.Rename(alice, "alice"))

	err := r.Rename(bob, "ALICE")
	assert.ErrorIs(t, err, registry.ErrNicknameInUse)

	found, ok := r.FindByNickname("Alice")
	require.True(t, ok)
	assert.Equal(t, alice.ID(), found.ID())
}

func TestRenameSelfToOwnNicknameSucceeds(t *testing.T) {
	r := registry.New("irc.local", "secret")
	alice := r.Connect("host")
	require.NoError(t, r.Rename(alice, "alice"))
	assert.NoError(t, r.Rename(alice, "Alice2"))
}

func TestAddChannelRejectsDuplicateAndInvalidNames(t *testing.T) {
	r := registry.New("irc.local", "secret")

	_, err := r.AddChannel("#x")
	require.NoError(t, err)

	_, err = r.AddChannel("#x")
	assert.ErrorIs(t, err, registry.ErrChannelExists)

	_, err = r.AddChannel("nothash")
	assert.ErrorIs(t, err, registry.ErrInvalidChannelName)
}

func TestDisconnectRemovesFromChannelsAndDestroysEmpty(t *testing.T) {
	r := registry.New("irc.local", "secret")
	alice := r.Connect("host")
	require.NoError(t, r.Rename(alice, "alice"))

	c, err := r.AddChannel("#x")
	require.NoError(t, err)
	c.AddUser(alice)
	alice.JoinChannel(c)

	r.Disconnect(alice.ID())

	_, ok := r.FindChannel("#x")
	assert.False(t, ok)
	_, ok = r.FindByID(alice.ID())
	assert.False(t, ok)
	_, ok = r.FindByNickname("alice")
	assert.False(t, ok)
}

func TestDisconnectPromotesOperatorAndKeepsChannel(t *testing.T) {
	r := registry.New("irc.local", "secret")
	alice := r.Connect("host")
	require.NoError(t, r.Rename(alice, "alice"))
	bob := r.Connect("host")
	require.NoError(t, r.Rename(bob, "bob"))

	c, err := r.AddChannel("#x")
	require.NoError(t, err)
	c.AddUser(alice)
	alice.JoinChannel(c)
	c.AddUser(bob)
	bob.JoinChannel(c)

	r.Disconnect(alice.ID())

	got, ok := r.FindChannel("#x")
	require.True(t, ok)
	assert.True(t, got.IsUserOper(bob.ID()))
	assert.Contains(t, string(bob.DrainOutput()), "NEW_OPERATOR bob")
}
