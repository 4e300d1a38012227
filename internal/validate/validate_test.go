package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/klaxonwire/goircd/internal/validate"
)

func TestTruncateNick(t *testing.T) {
	assert.Equal(t, "abcdefghi", validate.TruncateNick("abcdefghijklmnop"))
	assert.Equal(t, "abc", validate.TruncateNick("abc"))
}

func TestTruncateChannelName(t *testing.T) {
	long := "#" + strings.Repeat("x", 40)
	assert.Len(t, validate.TruncateChannelName(long), validate.MaxChannelNameLength)
}

func TestNickname(t *testing.T) {
	assert.True(t, validate.Nickname("alice"))
	assert.True(t, validate.Nickname("Al_ice-9"))
	assert.False(t, validate.Nickname(""))
	assert.False(t, validate.Nickname("*"))
	assert.False(t, validate.Nickname("9alice"))
	assert.False(t, validate.Nickname("al ice"))
}

func TestChannelName(t *testing.T) {
	assert.True(t, validate.ChannelName("#general"))
	assert.False(t, validate.ChannelName("general"))
	assert.False(t, validate.ChannelName("#"))
	assert.False(t, validate.ChannelName("#a b"))
	assert.False(t, validate.ChannelName("#a,b"))
}
