// Package handlers implements the ten command verbs spec.md section 4.6
// describes, in the style of
// _examples/presbrey-pkg/irc/server/handlers.go: one function per verb,
// each taking a *dispatch.Context and reporting whether the session
// should keep processing further buffered input.
package handlers

import (
	"strings"

	"github.com/klaxonwire/goircd/internal/bot"
	"github.com/klaxonwire/goircd/internal/dispatch"
	"github.com/klaxonwire/goircd/internal/message"
	"github.com/klaxonwire/goircd/internal/numerics"
	"github.com/klaxonwire/goircd/internal/session"
	"github.com/klaxonwire/goircd/internal/validate"
)

// Register installs every handler in this package into d.
func Register(d *dispatch.Dispatcher) {
	d.Register("PASS", Pass)
	d.Register("NICK", Nick)
	d.Register("USER", User)
	d.Register("PING", Ping)
	d.Register("JOIN", Join)
	d.Register("PART", Part)
	d.Register("PRIVMSG", Privmsg)
	d.Register("NOTICE", Notice)
	d.Register("KICK", Kick)
	d.Register("QUIT", Quit)
}

func errorReply(ctx *dispatch.Context, numeric string, args ...string) {
	ctx.User.Enqueue(numerics.Reply(ctx.Registry.Hostname(), numeric, ctx.User.Nickname(), args...))
}

// Pass implements PASS: stash the supplied password for later
// comparison at registration time.
func Pass(ctx *dispatch.Context) bool {
	if len(ctx.Msg.Params) < 1 {
		errorReply(ctx, numerics.ErrNeedMoreParams, "PASS", "Not enough parameters")
		return true
	}
	if err := ctx.User.SetPassword(ctx.Msg.Params[0]); err != nil {
		errorReply(ctx, numerics.ErrAlreadyRegistered, "Unauthorized command (already registered)")
	}
	return true
}

// completeRegistration attempts to finish registration after NICK or
// USER supplies the piece it was missing, sending RPL_WELCOME on
// success or tearing the session down on a password mismatch.
func completeRegistration(ctx *dispatch.Context) bool {
	switch ctx.User.TryRegister(ctx.Registry.Password()) {
	case session.Welcomed:
		ctx.User.Enqueue(numerics.Reply(ctx.Registry.Hostname(), numerics.RplWelcome, ctx.User.Nickname(),
			"Welcome to the Internet Relay Network "+ctx.User.SourceString()))
		return true
	case session.PasswordMismatch:
		errorReply(ctx, numerics.ErrPasswdMismatch, "Password incorrect")
		ctx.User.Enqueue("ERROR :Closing Link: " + ctx.User.Nickname() + " (Password incorrect)\r\n")
		ctx.User.MarkQuitting()
		return false
	default:
		return true
	}
}

// Nick implements NICK: validate, enforce uniqueness, rename, and
// either complete registration or announce the change to every
// channel the user shares with others.
func Nick(ctx *dispatch.Context) bool {
	if len(ctx.Msg.Params) < 1 || ctx.Msg.Params[0] == "" {
		errorReply(ctx, numerics.ErrNoNicknameGiven, "No nickname given")
		return true
	}

	nick := validate.TruncateNick(ctx.Msg.Params[0])
	if !validate.Nickname(nick) {
		errorReply(ctx, numerics.ErrErroneusNickname, nick, "Erroneous nickname")
		return true
	}
	if existing, ok := ctx.Registry.FindByNickname(nick); ok && existing != ctx.User {
		errorReply(ctx, numerics.ErrNicknameInUse, nick, "Nickname is already in use")
		return true
	}

	wasRegistered := ctx.User.Registered()
	oldSource := ctx.User.SourceString()

	if err := ctx.Registry.Rename(ctx.User, nick); err != nil {
		errorReply(ctx, numerics.ErrNicknameInUse, nick, "Nickname is already in use")
		return true
	}

	if !wasRegistered {
		return completeRegistration(ctx)
	}

	ctx.User.NotifyChannels(":"+oldSource+" NICK :"+nick+"\r\n", false)
	return true
}

// User implements USER: record username/realname and attempt to
// complete registration.
func User(ctx *dispatch.Context) bool {
	if ctx.User.Registered() {
		errorReply(ctx, numerics.ErrAlreadyRegistered, "Unauthorized command (already registered)")
		return true
	}
	if len(ctx.Msg.Params) < 4 {
		errorReply(ctx, numerics.ErrNeedMoreParams, "USER", "Not enough parameters")
		return true
	}
	ctx.User.SetUser(ctx.Msg.Params[0], ctx.Msg.Params[3])
	return completeRegistration(ctx)
}

// Ping implements PING: answer with a PONG carrying the same token. A
// missing parameter is ERR_NEEDMOREPARAMS; a present but empty one is
// ERR_NOORIGIN.
func Ping(ctx *dispatch.Context) bool {
	if len(ctx.Msg.Params) < 1 {
		errorReply(ctx, numerics.ErrNeedMoreParams, "PING", "Not enough parameters")
		return true
	}
	if ctx.Msg.Params[0] == "" {
		errorReply(ctx, numerics.ErrNoOrigin, "No origin specified")
		return true
	}
	host := ctx.Registry.Hostname()
	ctx.User.Enqueue(":" + host + " PONG " + host + " :" + ctx.Msg.Params[0] + "\r\n")
	return true
}

// Join implements JOIN, including the "JOIN 0" part-all-channels form.
func Join(ctx *dispatch.Context) bool {
	if len(ctx.Msg.Params) < 1 {
		errorReply(ctx, numerics.ErrNeedMoreParams, "JOIN", "Not enough parameters")
		return true
	}

	if ctx.Msg.Params[0] == "0" {
		names := make([]string, 0, len(ctx.User.Channels()))
		for name := range ctx.User.Channels() {
			names = append(names, name)
		}
		for _, name := range names {
			partOne(ctx, name, "")
		}
		return true
	}

	for _, raw := range message.SplitTargets(ctx.Msg.Params[0]) {
		joinOne(ctx, raw)
	}
	return true
}

func joinOne(ctx *dispatch.Context, raw string) {
	if raw == "" || raw[0] != '#' {
		errorReply(ctx, numerics.ErrNoSuchChannel, raw, "No such channel")
		return
	}
	name := validate.TruncateChannelName(raw)
	if !validate.ChannelName(name) {
		errorReply(ctx, numerics.ErrErroneusChanName, name, "Illegal channel name")
		return
	}
	if ctx.User.InChannel(name) {
		return
	}

	c, ok := ctx.Registry.FindChannel(name)
	if !ok {
		// name is already validated and known not to exist, so AddChannel
		// cannot fail here.
		c, _ = ctx.Registry.AddChannel(name)
	}

	c.AddUser(ctx.User)
	ctx.User.JoinChannel(c)

	joinLine := ":" + ctx.User.SourceString() + " JOIN :" + name + "\r\n"
	c.Broadcast(joinLine, 0)

	names := make([]string, 0, c.MemberCount())
	for _, m := range c.Members() {
		prefix := ""
		if c.IsUserOper(m.ID()) {
			prefix = "@"
		}
		names = append(names, prefix+m.Nickname())
	}
	ctx.User.Enqueue(numerics.Reply(ctx.Registry.Hostname(), numerics.RplNamReply, ctx.User.Nickname(), "=", name, strings.Join(names, " ")))
	ctx.User.Enqueue(numerics.Reply(ctx.Registry.Hostname(), numerics.RplEndOfNames, ctx.User.Nickname(), name, "End of /NAMES list"))
}

// Part implements PART.
func Part(ctx *dispatch.Context) bool {
	if len(ctx.Msg.Params) < 1 {
		errorReply(ctx, numerics.ErrNeedMoreParams, "PART", "Not enough parameters")
		return true
	}
	reason := ""
	if len(ctx.Msg.Params) > 1 {
		reason = ctx.Msg.Params[1]
	}
	for _, name := range message.SplitTargets(ctx.Msg.Params[0]) {
		partOne(ctx, name, reason)
	}
	return true
}

func partOne(ctx *dispatch.Context, name, reason string) {
	c, ok := ctx.Registry.FindChannel(name)
	if !ok {
		errorReply(ctx, numerics.ErrNoSuchChannel, name, "No such channel")
		return
	}
	if !ctx.User.InChannel(name) {
		errorReply(ctx, numerics.ErrNotOnChannel, name, "You're not on that channel")
		return
	}

	line := ":" + ctx.User.SourceString() + " PART " + name
	if reason != "" {
		line += " :" + reason
	}
	line += "\r\n"

	ctx.User.Enqueue(line)
	c.Broadcast(line, ctx.User.ID())
	ctx.Registry.LeaveChannel(ctx.User, c)
}

// Privmsg implements PRIVMSG, including invoking the configured bot
// trigger for "!"-prefixed channel messages.
func Privmsg(ctx *dispatch.Context) bool {
	if len(ctx.Msg.Params) < 1 {
		errorReply(ctx, numerics.ErrNoRecipient, "No recipient given (PRIVMSG)")
		return true
	}
	if len(ctx.Msg.Params) < 2 || ctx.Msg.Params[1] == "" {
		errorReply(ctx, numerics.ErrNoTextToSend, "No text to send")
		return true
	}
	text := ctx.Msg.Params[1]
	for _, target := range message.SplitTargets(ctx.Msg.Params[0]) {
		deliverPrivmsg(ctx, target, text)
	}
	return true
}

func deliverPrivmsg(ctx *dispatch.Context, target, text string) {
	line := ":" + ctx.User.SourceString() + " PRIVMSG " + target + " :" + text + "\r\n"

	if strings.HasPrefix(target, "#") {
		c, ok := ctx.Registry.FindChannel(target)
		if !ok {
			errorReply(ctx, numerics.ErrNoSuchChannel, target, "No such channel")
			return
		}
		c.Broadcast(line, ctx.User.ID())

		if ctx.Bot != nil && strings.HasPrefix(text, "!") {
			trig := bot.TriggerContext{
				Channel: target,
				Source:  ctx.User.SourceString(),
				Command: strings.TrimPrefix(text, "!"),
			}
			for _, reply := range ctx.Bot.Handle(trig) {
				c.Broadcast(":"+ctx.Registry.Hostname()+" NOTICE "+target+" :"+reply+"\r\n", 0)
			}
		}
		return
	}

	dest, ok := ctx.Registry.FindByNickname(target)
	if !ok {
		errorReply(ctx, numerics.ErrNoSuchNick, target, "No such nick/channel")
		return
	}
	dest.Enqueue(line)
}

// Notice implements NOTICE: identical delivery to PRIVMSG, but missing
// or unknown targets never produce an error reply.
func Notice(ctx *dispatch.Context) bool {
	if len(ctx.Msg.Params) < 1 {
		return true
	}
	text := ""
	if len(ctx.Msg.Params) > 1 {
		text = ctx.Msg.Params[1]
	}
	for _, target := range message.SplitTargets(ctx.Msg.Params[0]) {
		if text == "" {
			errorReply(ctx, numerics.ErrNoTextToSend, "No text to send")
			continue
		}
		deliverNotice(ctx, target, text)
	}
	return true
}

func deliverNotice(ctx *dispatch.Context, target, text string) {
	line := ":" + ctx.User.SourceString() + " NOTICE " + target + " :" + text + "\r\n"
	if strings.HasPrefix(target, "#") {
		if c, ok := ctx.Registry.FindChannel(target); ok {
			c.Broadcast(line, ctx.User.ID())
		}
		return
	}
	if dest, ok := ctx.Registry.FindByNickname(target); ok {
		dest.Enqueue(line)
	}
}

// Kick implements KICK: only a channel operator may remove another
// member.
func Kick(ctx *dispatch.Context) bool {
	if len(ctx.Msg.Params) < 2 {
		errorReply(ctx, numerics.ErrNeedMoreParams, "KICK", "Not enough parameters")
		return true
	}

	chanName := ctx.Msg.Params[0]
	c, ok := ctx.Registry.FindChannel(chanName)
	if !ok {
		errorReply(ctx, numerics.ErrNoSuchChannel, chanName, "No such channel")
		return true
	}
	if !ctx.User.InChannel(chanName) {
		errorReply(ctx, numerics.ErrNotOnChannel, chanName, "You're not on that channel")
		return true
	}
	if !c.IsUserOper(ctx.User.ID()) {
		errorReply(ctx, numerics.ErrChanOPrivsNeeded, chanName, "You're not channel operator")
		return true
	}

	reason := ctx.User.Nickname()
	if len(ctx.Msg.Params) > 2 {
		reason = ctx.Msg.Params[2]
	}

	for _, nick := range message.SplitTargets(ctx.Msg.Params[1]) {
		target, ok := c.FindByNickname(nick)
		if !ok {
			errorReply(ctx, numerics.ErrUserNotInChannel, nick, chanName, "They aren't on that channel")
			continue
		}

		line := ":" + ctx.User.SourceString() + " KICK " + chanName + " " + target.Nickname() + " :" + reason + "\r\n"
		c.Broadcast(line, 0)

		if victim, ok := ctx.Registry.FindByID(target.ID()); ok {
			ctx.Registry.LeaveChannel(victim, c)
		}
	}
	return true
}

// Quit implements QUIT: announce departure to every channel the user
// belongs to and signal the caller to tear the session down.
func Quit(ctx *dispatch.Context) bool {
	reason := "Client Quit"
	if len(ctx.Msg.Params) > 0 && ctx.Msg.Params[0] != "" {
		reason = ctx.Msg.Params[0]
	}

	ctx.User.ClearInput()
	ctx.User.Enqueue("ERROR :Closing Link: " + ctx.User.Nickname() + " (" + reason + ")\r\n")
	ctx.User.NotifyChannels(":"+ctx.User.SourceString()+" QUIT :"+reason+"\r\n", true)
	ctx.User.MarkQuitting()
	return false
}
