package numerics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/klaxonwire/goircd/internal/numerics"
)

func TestReplyShape(t *testing.T) {
	line := numerics.Reply("irc.local", numerics.ErrNoSuchNick, "alice", "bob", "No such nick/channel")
	assert.Equal(t, ":irc.local 401 alice bob :No such nick/channel\r\n", line)
}

func TestReplyWithSingleTrailingArg(t *testing.T) {
	line := numerics.Reply("irc.local", numerics.RplWelcome, "alice", "Welcome to the network alice")
	assert.Equal(t, ":irc.local 001 alice :Welcome to the network alice\r\n", line)
}
