// Package bot defines the narrow interface PRIVMSG uses to hand a
// channel message off to an external trigger when its text begins with
// "!", per spec.md section 4.6/4.7. This is a collaborator, not part of
// the core: the dispatcher only ever depends on the Trigger interface.
package bot

// TriggerContext carries the information a Trigger needs to react to a
// "!"-prefixed channel message.
type TriggerContext struct {
	Channel string // channel name the message was sent to
	Source  string // sender's "nick!user@host" source string
	Command string // the text with its leading "!" stripped
}

// Trigger reacts to a "!"-prefixed channel message and optionally
// returns lines to send back to the channel as NOTICEs.
type Trigger interface {
	Handle(ctx TriggerContext) []string
}

// NoOp implements Trigger by doing nothing. It is the default when no
// bot integration is configured.
type NoOp struct{}

// Handle implements Trigger.
func (NoOp) Handle(TriggerContext) []string { return nil }

// Echo implements Trigger by echoing the invoked command name back to
// the channel, prefixed to make clear it came from the trigger and not
// from a real command processor. It exists as a demonstrable stand-in a
// deployer can replace with a real integration.
type Echo struct{}

// Handle implements Trigger.
func (Echo) Handle(ctx TriggerContext) []string {
	if ctx.Command == "" {
		return nil
	}
	return []string{"you said: !" + ctx.Command}
}
