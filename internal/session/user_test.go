package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klaxonwire/goircd/internal/channel"
	"github.com/klaxonwire/goircd/internal/session"
)

func TestRegistrationRequiresNickAndUser(t *testing.T) {
	u := session.New(1, "host")
	require.NoError(t, u.SetPassword("secret"))
	assert.Equal(t, session.NotReady, u.TryRegister("secret"))

	u.SetNickname("alice")
	assert.Equal(t, session.NotReady, u.TryRegister("secret"))

	u.SetUser("alice", "Alice")
	assert.Equal(t, session.Welcomed, u.TryRegister("secret"))
	assert.True(t, u.Registered())
}

func TestRegistrationPasswordMismatch(t *testing.T) {
	u := session.New(1, "host")
	require.NoError(t, u.SetPassword("wrong"))
	u.SetNickname("alice")
	u.SetUser("alice", "Alice")

	assert.Equal(t, session.PasswordMismatch, u.TryRegister("secret"))
	assert.False(t, u.Registered())
}

func TestPasswordRejectedAfterRegistration(t *testing.T) {
	u := session.New(1, "host")
	u.SetNickname("alice")
	u.SetUser("alice", "Alice")
	require.Equal(t, session.Welcomed, u.TryRegister(""))

	err := u.SetPassword("late")
	assert.ErrorIs(t, err, session.ErrAlreadyRegistered)
}

func TestSourceString(t *testing.T) {
	u := session.New(1, "example.host")
	u.SetNickname("alice")
	u.SetUser("aliceu", "Alice Example")
	assert.Equal(t, "alice!aliceu@example.host", u.SourceString())
}

func TestNextMessageSkipsEmptyLines(t *testing.T) {
	u := session.New(1, "host")
	u.FeedInput([]byte("\r\nNICK alice\r\n"))

	m, ok := u.NextMessage()
	require.True(t, ok)
	assert.Equal(t, "NICK", m.Command)

	_, ok = u.NextMessage()
	assert.False(t, ok)
}

func TestOutputBufferDrain(t *testing.T) {
	u := session.New(1, "host")
	u.Enqueue("PING :x\r\n")
	assert.True(t, u.HasPendingOutput())
	assert.Equal(t, []byte("PING :x\r\n"), u.DrainOutput())
	assert.False(t, u.HasPendingOutput())
}

func TestNotifyChannelsEchoesWhenNoChannels(t *testing.T) {
	u := session.New(1, "host")
	u.SetNickname("alice")
	u.SetUser("alice", "Alice")

	u.NotifyChannels("NICK :bob\r\n", false)
	assert.Equal(t, []byte("NICK :bob\r\n"), u.DrainOutput())
}

func TestNotifyChannelsExcludesSelf(t *testing.T) {
	alice := session.New(1, "host")
	alice.SetNickname("alice")
	alice.SetUser("alice", "Alice")

	c := channel.New("#x")
	c.AddUser(alice)
	alice.JoinChannel(c)

	alice.NotifyChannels("QUIT :bye\r\n", true)
	assert.Empty(t, alice.DrainOutput())
}
