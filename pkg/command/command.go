// Package command implements declaration and registration of slash
// commands. A Command ties a name and description to parameter descriptors
// (built with pkg/param or derived from a struct with pkg/bind) and a
// handler; the Registry collects them and produces the wire payload the
// platform registration machinery consumes.
package command

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/haasonsaas/slashkit/pkg/bind"
	"github.com/haasonsaas/slashkit/pkg/param"
)

// Platform limits for command declarations.
const (
	MaxOptions         = 25
	MaxSubcommandDepth = 2
)

// Handler executes a command invocation. Returning an abort error (see
// pkg/router) replies to the user without being treated as a failure.
type Handler func(ctx context.Context, inv *Invocation) error

// Autocompleter produces suggestions for a partially typed parameter value.
type Autocompleter func(ctx context.Context, value string) ([]param.Choice, error)

// Command is one declared slash command: identity, parameter metadata and
// execution. Nested subcommands are Commands themselves; a command carries
// either parameters or subcommands, never both.
type Command struct {
	Name        string
	Description string

	// GuildID scopes registration to one guild; empty means global.
	GuildID string

	// NSFW restricts the command to age-gated channels.
	NSFW bool

	// DMPermission, when set, controls whether the command is usable in
	// direct messages. Unset leaves the platform default (enabled).
	DMPermission *bool

	// Parameters are consumed once when the command is published.
	Parameters []*param.Descriptor

	// Subcommands nest under this command (at most two levels).
	Subcommands []*Command

	// Handler runs leaf invocations.
	Handler Handler

	autocompleters map[string]Autocompleter
	binder         *bind.Binder
}

// CommandOption configures a command under construction.
type CommandOption func(*Command) error

// WithParams attaches configurator-built descriptors.
func WithParams(descriptors ...*param.Descriptor) CommandOption {
	return func(c *Command) error {
		c.Parameters = append(c.Parameters, descriptors...)
		return nil
	}
}

// WithArgs derives the parameters from an annotated struct (see pkg/bind)
// and lets the handler decode invocations back into it with Invocation.Args.
func WithArgs(prototype any) CommandOption {
	return func(c *Command) error {
		binder, err := bind.ForType(prototype)
		if err != nil {
			return ErrInvalidInput(fmt.Sprintf("command %q", c.Name), err)
		}
		c.binder = binder
		c.Parameters = append(c.Parameters, binder.Descriptors()...)
		return nil
	}
}

// WithSubcommands nests commands under this one.
func WithSubcommands(subcommands ...*Command) CommandOption {
	return func(c *Command) error {
		c.Subcommands = append(c.Subcommands, subcommands...)
		return nil
	}
}

// WithGuild scopes registration to a single guild.
func WithGuild(guildID string) CommandOption {
	return func(c *Command) error {
		c.GuildID = guildID
		return nil
	}
}

// WithNSFW restricts the command to age-gated channels.
func WithNSFW() CommandOption {
	return func(c *Command) error {
		c.NSFW = true
		return nil
	}
}

// WithDMPermission controls whether the command is usable in direct
// messages.
func WithDMPermission(allowed bool) CommandOption {
	return func(c *Command) error {
		c.DMPermission = &allowed
		return nil
	}
}

// WithAutocomplete attaches an autocompleter to one of the parameters. The
// parameter must be declared with autocomplete enabled.
func WithAutocomplete(paramName string, fn Autocompleter) CommandOption {
	return func(c *Command) error {
		if c.autocompleters == nil {
			c.autocompleters = make(map[string]Autocompleter)
		}
		c.autocompleters[paramName] = fn
		return nil
	}
}

// New builds and validates a command. Required parameters are reordered
// ahead of optional ones, preserving declaration order within each class,
// because the platform rejects any other ordering.
func New(name, description string, handler Handler, opts ...CommandOption) (*Command, error) {
	c := &Command{
		Name:        name,
		Description: description,
		Handler:     handler,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.normalize()
	if err := c.validate(0); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNew is New for package-level declarations; it panics on invalid input.
func MustNew(name, description string, handler Handler, opts ...CommandOption) *Command {
	c, err := New(name, description, handler, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// normalize moves required parameters ahead of optional ones, stable in
// each class, at every nesting level.
func (c *Command) normalize() {
	if len(c.Parameters) > 1 {
		ordered := make([]*param.Descriptor, 0, len(c.Parameters))
		for _, d := range c.Parameters {
			if d.Required {
				ordered = append(ordered, d)
			}
		}
		for _, d := range c.Parameters {
			if !d.Required {
				ordered = append(ordered, d)
			}
		}
		c.Parameters = ordered
	}
	for _, sub := range c.Subcommands {
		sub.normalize()
	}
}

func (c *Command) validate(depth int) error {
	if !param.ValidName(c.Name) {
		return ErrInvalidInput(fmt.Sprintf("command name %q must be 1-%d chars of [a-z0-9_-]", c.Name, param.MaxNameLength), nil)
	}
	if l := len(c.Description); l == 0 || l > param.MaxDescriptionLength {
		return ErrInvalidInput(fmt.Sprintf("command %q: description must be 1-%d chars, got %d", c.Name, param.MaxDescriptionLength, l), nil)
	}

	if len(c.Parameters) > 0 && len(c.Subcommands) > 0 {
		return ErrInvalidInput(fmt.Sprintf("command %q: parameters and subcommands are mutually exclusive", c.Name), nil)
	}

	if len(c.Subcommands) > 0 {
		if depth >= MaxSubcommandDepth {
			return ErrInvalidInput(fmt.Sprintf("command %q: subcommands nested deeper than %d levels", c.Name, MaxSubcommandDepth), nil)
		}
		if len(c.Subcommands) > MaxOptions {
			return ErrInvalidInput(fmt.Sprintf("command %q: %d subcommands exceeds the limit of %d", c.Name, len(c.Subcommands), MaxOptions), nil)
		}
		seen := make(map[string]bool, len(c.Subcommands))
		for _, sub := range c.Subcommands {
			if seen[sub.Name] {
				return ErrInvalidInput(fmt.Sprintf("command %q: duplicate subcommand %q", c.Name, sub.Name), nil)
			}
			seen[sub.Name] = true
			if err := sub.validate(depth + 1); err != nil {
				return err
			}
		}
		return nil
	}

	// Leaf command.
	if c.Handler == nil {
		return ErrInvalidInput(fmt.Sprintf("command %q has no handler", c.Name), nil)
	}
	if len(c.Parameters) > MaxOptions {
		return ErrInvalidInput(fmt.Sprintf("command %q: %d parameters exceeds the limit of %d", c.Name, len(c.Parameters), MaxOptions), nil)
	}

	seen := make(map[string]bool, len(c.Parameters))
	for _, d := range c.Parameters {
		if err := d.Validate(); err != nil {
			return ErrInvalidInput(fmt.Sprintf("command %q", c.Name), err)
		}
		if seen[d.Name] {
			return ErrInvalidInput(fmt.Sprintf("command %q: duplicate parameter %q", c.Name, d.Name), nil)
		}
		seen[d.Name] = true
	}

	for name := range c.autocompleters {
		d := c.parameter(name)
		if d == nil {
			return ErrNotFound(fmt.Sprintf("command %q: autocompleter for unknown parameter %q", c.Name, name), nil)
		}
		if !d.Autocomplete {
			return ErrInvalidInput(fmt.Sprintf("command %q: parameter %q is not declared with autocomplete", c.Name, name), nil)
		}
	}
	for _, d := range c.Parameters {
		if d.Autocomplete && c.autocompleters[d.Name] == nil {
			return ErrInvalidInput(fmt.Sprintf("command %q: parameter %q declares autocomplete but has no autocompleter", c.Name, d.Name), nil)
		}
	}

	return nil
}

// parameter returns the descriptor with the given name, or nil.
func (c *Command) parameter(name string) *param.Descriptor {
	for _, d := range c.Parameters {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// Autocompleter returns the autocompleter for a parameter, or nil.
func (c *Command) Autocompleter(paramName string) Autocompleter {
	return c.autocompleters[paramName]
}

// Subcommand returns the direct subcommand with the given name, or nil.
func (c *Command) Subcommand(name string) *Command {
	for _, sub := range c.Subcommands {
		if sub.Name == name {
			return sub
		}
	}
	return nil
}

// ApplicationCommand converts the declaration into the wire payload. This
// is the single point where descriptors are consumed by registration.
func (c *Command) ApplicationCommand() *discordgo.ApplicationCommand {
	app := &discordgo.ApplicationCommand{
		Type:        discordgo.ChatApplicationCommand,
		Name:        c.Name,
		Description: c.Description,
		GuildID:     c.GuildID,
	}
	if c.NSFW {
		nsfw := true
		app.NSFW = &nsfw
	}
	app.DMPermission = c.DMPermission
	app.Options = c.options(0)
	return app
}

// options renders parameters or subcommands as wire options.
func (c *Command) options(depth int) []*discordgo.ApplicationCommandOption {
	if len(c.Subcommands) > 0 {
		out := make([]*discordgo.ApplicationCommandOption, 0, len(c.Subcommands))
		for _, sub := range c.Subcommands {
			typ := discordgo.ApplicationCommandOptionSubCommand
			if len(sub.Subcommands) > 0 {
				typ = discordgo.ApplicationCommandOptionSubCommandGroup
			}
			out = append(out, &discordgo.ApplicationCommandOption{
				Type:        typ,
				Name:        sub.Name,
				Description: sub.Description,
				Options:     sub.options(depth + 1),
			})
		}
		return out
	}

	out := make([]*discordgo.ApplicationCommandOption, 0, len(c.Parameters))
	for _, d := range c.Parameters {
		out = append(out, d.Option())
	}
	return out
}
