// Package message implements the IRC wire codec: framing a byte stream
// into complete lines, parsing a line into a Message, and rendering a
// Message back to wire bytes.
package message

import "strings"

// maxLineBytes bounds a single framed line, terminator excluded. Lines
// longer than this are truncated rather than rejected outright.
const maxLineBytes = 512

// Message is the parsed form of one IRC protocol line: an optional
// sender prefix, an uppercase command keyword, and an ordered list of
// parameters.
type Message struct {
	Prefix  string
	Command string
	Params  []string
}

// New builds a Message from its parts, uppercasing the command the way
// the wire format requires.
func New(prefix, command string, params ...string) *Message {
	return &Message{
		Prefix:  prefix,
		Command: strings.ToUpper(command),
		Params:  params,
	}
}

// Parse turns a single line, with its terminator already stripped, into
// a Message. It returns nil for an empty line.
func Parse(line string) *Message {
	if line == "" {
		return nil
	}

	msg := &Message{}

	if line[0] == ':' {
		sp := strings.IndexByte(line, ' ')
		if sp < 0 {
			msg.Prefix = line[1:]
			line = ""
		} else {
			msg.Prefix = line[1:sp]
			line = strings.TrimLeft(line[sp+1:], " ")
		}
	}

	if line == "" {
		return nil
	}

	sp := strings.IndexByte(line, ' ')
	if sp < 0 {
		msg.Command = strings.ToUpper(line)
		return msg
	}
	msg.Command = strings.ToUpper(line[:sp])
	line = strings.TrimLeft(line[sp+1:], " ")

	for line != "" {
		if line[0] == ':' {
			msg.Params = append(msg.Params, line[1:])
			break
		}
		sp := strings.IndexByte(line, ' ')
		if sp < 0 {
			msg.Params = append(msg.Params, line)
			break
		}
		msg.Params = append(msg.Params, line[:sp])
		line = strings.TrimLeft(line[sp+1:], " ")
	}

	return msg
}

// String renders the Message as a wire line, terminated by CRLF.
func (m *Message) String() string {
	var b strings.Builder

	if m.Prefix != "" {
		b.WriteByte(':')
		b.WriteString(m.Prefix)
		b.WriteByte(' ')
	}
	b.WriteString(m.Command)

	for i, p := range m.Params {
		b.WriteByte(' ')
		if i == len(m.Params)-1 && needsTrailing(p) {
			b.WriteByte(':')
		}
		b.WriteString(p)
	}

	b.WriteString("\r\n")
	return b.String()
}

// Bytes renders the Message the same way as String, as a byte slice
// ready to be queued for a socket write.
func (m *Message) Bytes() []byte {
	return []byte(m.String())
}

func needsTrailing(p string) bool {
	return p == "" || strings.ContainsRune(p, ' ') || strings.HasPrefix(p, ":")
}

// SplitTargets splits a comma-separated target list (e.g. "#a,#b,nick")
// the way handlers split channel/nick lists. Empty tokens are dropped.
func SplitTargets(list string) []string {
	if list == "" {
		return nil
	}
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Framer accumulates bytes from a connection and extracts complete
// CRLF-terminated (or bare-LF-terminated) lines in arrival order,
// leaving any trailing partial line buffered for the next call.
type Framer struct {
	buf []byte
}

// Feed appends newly received bytes to the framer's buffer.
func (f *Framer) Feed(b []byte) {
	f.buf = append(f.buf, b...)
}

// Next extracts and returns the next complete line, without its
// terminator, and reports whether one was available. Overlong lines are
// truncated to maxLineBytes rather than causing an error.
func (f *Framer) Next() (string, bool) {
	idx := indexByte(f.buf, '\n')
	if idx < 0 {
		return "", false
	}

	line := f.buf[:idx]
	f.buf = f.buf[idx+1:]

	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	if len(line) > maxLineBytes {
		line = line[:maxLineBytes]
	}

	return string(line), true
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

// ParseHostmask splits a "nick!user@host" identifier into its parts.
func ParseHostmask(hostmask string) (nick, user, host string) {
	nick = hostmask
	if i := strings.IndexByte(hostmask, '!'); i >= 0 {
		nick = hostmask[:i]
		rest := hostmask[i+1:]
		if j := strings.IndexByte(rest, '@'); j >= 0 {
			user = rest[:j]
			host = rest[j+1:]
		} else {
			user = rest
		}
	}
	return
}

// FormatHostmask builds the canonical "nick!user@host" source string.
func FormatHostmask(nick, user, host string) string {
	return nick + "!" + user + "@" + host
}
