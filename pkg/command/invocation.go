package command

import (
	"github.com/bwmarrin/discordgo"
	"github.com/haasonsaas/slashkit/pkg/bind"
	"github.com/haasonsaas/slashkit/pkg/param"
)

// Responder is the slice of the Discord session an invocation needs to
// answer an interaction. *discordgo.Session satisfies it; tests substitute
// a mock.
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Invocation carries one dispatched command interaction: the resolved
// command, the decoded parameter values and the means to respond.
type Invocation struct {
	// ID correlates log lines and metrics for this dispatch.
	ID string

	// Command is the resolved leaf command.
	Command *Command

	// Event is the raw interaction event.
	Event *discordgo.InteractionCreate

	session  Responder
	values   map[string]any
	resolved *discordgo.ApplicationCommandInteractionDataResolved
	options  []*discordgo.ApplicationCommandInteractionDataOption
}

// NewInvocation decodes the interaction options against the command's
// parameter descriptors and wraps them for the handler. opts must already
// be the leaf-level options (subcommand paths resolved by the router).
func NewInvocation(id string, session Responder, event *discordgo.InteractionCreate, cmd *Command, opts []*discordgo.ApplicationCommandInteractionDataOption, resolved *discordgo.ApplicationCommandInteractionDataResolved) *Invocation {
	inv := &Invocation{
		ID:       id,
		Command:  cmd,
		Event:    event,
		session:  session,
		values:   make(map[string]any, len(opts)),
		resolved: resolved,
		options:  opts,
	}

	for _, opt := range opts {
		d := cmd.parameter(opt.Name)
		if d == nil {
			continue
		}
		switch v := opt.Value.(type) {
		case float64:
			if d.Kind == param.KindInteger {
				inv.values[opt.Name] = int64(v)
			} else {
				inv.values[opt.Name] = v
			}
		default:
			inv.values[opt.Name] = opt.Value
		}
	}
	return inv
}

// Options returns a copy of the decoded parameter values by name.
func (inv *Invocation) Options() map[string]any {
	out := make(map[string]any, len(inv.values))
	for k, v := range inv.values {
		out[k] = v
	}
	return out
}

// Has reports whether the parameter was supplied.
func (inv *Invocation) Has(name string) bool {
	_, ok := inv.values[name]
	return ok
}

// String returns a str parameter value, or "" when absent.
func (inv *Invocation) String(name string) string {
	v, _ := inv.values[name].(string)
	return v
}

// Int returns an int parameter value, or 0 when absent.
func (inv *Invocation) Int(name string) int64 {
	switch v := inv.values[name].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}

// Float returns a number parameter value, or 0 when absent.
func (inv *Invocation) Float(name string) float64 {
	switch v := inv.values[name].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

// Bool returns a bool parameter value, or false when absent.
func (inv *Invocation) Bool(name string) bool {
	v, _ := inv.values[name].(bool)
	return v
}

// User returns a resolved user parameter, or nil when absent.
func (inv *Invocation) User(name string) *discordgo.User {
	id, _ := inv.values[name].(string)
	if id == "" || inv.resolved == nil {
		return nil
	}
	return inv.resolved.Users[id]
}

// Channel returns a resolved channel parameter, or nil when absent.
func (inv *Invocation) Channel(name string) *discordgo.Channel {
	id, _ := inv.values[name].(string)
	if id == "" || inv.resolved == nil {
		return nil
	}
	return inv.resolved.Channels[id]
}

// Role returns a resolved role parameter, or nil when absent.
func (inv *Invocation) Role(name string) *discordgo.Role {
	id, _ := inv.values[name].(string)
	if id == "" || inv.resolved == nil {
		return nil
	}
	return inv.resolved.Roles[id]
}

// Attachment returns a resolved attachment parameter, or nil when absent.
func (inv *Invocation) Attachment(name string) *discordgo.MessageAttachment {
	id, _ := inv.values[name].(string)
	if id == "" || inv.resolved == nil {
		return nil
	}
	return inv.resolved.Attachments[id]
}

// Args decodes the invocation into an annotated parameter struct. When the
// command was declared with WithArgs the cached binder is reused.
func (inv *Invocation) Args(v any) error {
	if inv.Command != nil && inv.Command.binder != nil {
		return inv.Command.binder.Decode(inv.options, inv.resolved, v)
	}
	return bind.Decode(inv.options, inv.resolved, v)
}

// Respond sends a plain text reply.
func (inv *Invocation) Respond(content string) error {
	return inv.respond(content, false)
}

// RespondEphemeral sends a reply only the invoking user can see.
func (inv *Invocation) RespondEphemeral(content string) error {
	return inv.respond(content, true)
}

func (inv *Invocation) respond(content string, ephemeral bool) error {
	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	}
	if ephemeral {
		resp.Data.Flags = discordgo.MessageFlagsEphemeral
	}
	if err := inv.session.InteractionRespond(inv.Event.Interaction, resp); err != nil {
		return ErrConnection("failed to respond to interaction", err)
	}
	return nil
}

// Defer acknowledges the interaction so a slow handler can follow up later.
func (inv *Invocation) Defer(ephemeral bool) error {
	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}
	if ephemeral {
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	if err := inv.session.InteractionRespond(inv.Event.Interaction, resp); err != nil {
		return ErrConnection("failed to defer interaction", err)
	}
	return nil
}

// Followup sends a follow-up message after Defer.
func (inv *Invocation) Followup(content string) error {
	_, err := inv.session.FollowupMessageCreate(inv.Event.Interaction, true, &discordgo.WebhookParams{
		Content: content,
	})
	if err != nil {
		return ErrConnection("failed to send follow-up", err)
	}
	return nil
}

// FollowupEphemeral sends a follow-up message only the invoking user can
// see.
func (inv *Invocation) FollowupEphemeral(content string) error {
	_, err := inv.session.FollowupMessageCreate(inv.Event.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		return ErrConnection("failed to send follow-up", err)
	}
	return nil
}
