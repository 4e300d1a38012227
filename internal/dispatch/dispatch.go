// Package dispatch implements the keyword-to-handler command table and
// the pre-dispatch checks described in spec.md section 4.5. It knows
// nothing about what any individual command does; concrete handlers are
// registered by the composition root (internal/server), the way
// _examples/presbrey-pkg/irc/server/server.go registers its Hook table.
package dispatch

import (
	"strings"

	"github.com/klaxonwire/goircd/internal/bot"
	"github.com/klaxonwire/goircd/internal/message"
	"github.com/klaxonwire/goircd/internal/numerics"
	"github.com/klaxonwire/goircd/internal/registry"
	"github.com/klaxonwire/goircd/internal/session"
)

// Context bundles everything a handler needs to run one command.
type Context struct {
	Registry *registry.Registry
	User     *session.User
	Msg      *message.Message
	Bot      bot.Trigger
}

// Handler implements one IRC verb. Its return value tells the caller
// whether to keep processing further buffered messages for this
// session in the current cycle: false means the session is being torn
// down.
type Handler func(ctx *Context) bool

// unauthAllowed lists the verbs an unregistered session may still send,
// per spec.md section 4.5 step 2.
var unauthAllowed = map[string]bool{
	"PASS": true,
	"NICK": true,
	"USER": true,
	"PING": true,
	"QUIT": true,
}

// Dispatcher holds the command table.
type Dispatcher struct {
	handlers map[string]Handler
}

// New returns an empty Dispatcher; callers register handlers with
// Register.
func New() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]Handler)}
}

// Register maps a command keyword to its handler.
func (d *Dispatcher) Register(cmd string, h Handler) {
	d.handlers[strings.ToUpper(cmd)] = h
}

// Dispatch applies the pre-dispatch checks and, if they pass, invokes
// the registered handler. It reports whether the caller should keep
// processing further buffered messages for this session.
func (d *Dispatcher) Dispatch(ctx *Context) bool {
	m := ctx.Msg
	u := ctx.User

	if m.Prefix != "" && m.Prefix != u.Nickname() {
		return true
	}
	if !u.Registered() && !unauthAllowed[m.Command] {
		return true
	}

	h, ok := d.handlers[m.Command]
	if !ok {
		u.Enqueue(numerics.Reply(ctx.Registry.Hostname(), numerics.ErrUnknownCommand, u.Nickname(), m.Command, "Unknown command"))
		return true
	}

	return h(ctx)
}
