package command

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/haasonsaas/slashkit/pkg/param"
)

func nopHandler(ctx context.Context, inv *Invocation) error { return nil }

func TestNew_ReordersRequiredFirst(t *testing.T) {
	c, err := New("mute", "mute a misbehaving user", nopHandler,
		WithParams(
			param.MustNew("reason", param.KindString, "why?", param.Optional()),
			param.MustNew("user", param.KindUser, "who to mute"),
			param.MustNew("days", param.KindInteger, "for how long?", param.Optional()),
			param.MustNew("loud", param.KindBoolean, "announce it"),
		))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got := make([]string, 0, len(c.Parameters))
	for _, d := range c.Parameters {
		got = append(got, d.Name)
	}
	want := []string{"user", "loud", "reason", "days"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		make func() (*Command, error)
	}{
		{
			name: "uppercase name",
			make: func() (*Command, error) {
				return New("Mute", "mute", nopHandler)
			},
		},
		{
			name: "empty description",
			make: func() (*Command, error) {
				return New("mute", "", nopHandler)
			},
		},
		{
			name: "nil handler on leaf",
			make: func() (*Command, error) {
				return New("mute", "mute", nil)
			},
		},
		{
			name: "duplicate parameters",
			make: func() (*Command, error) {
				return New("mute", "mute", nopHandler, WithParams(
					param.MustNew("user", param.KindUser, "who"),
					param.MustNew("user", param.KindUser, "who again"),
				))
			},
		},
		{
			name: "parameters and subcommands",
			make: func() (*Command, error) {
				sub := MustNew("add", "add a thing", nopHandler)
				return New("thing", "things", nil,
					WithParams(param.MustNew("name", param.KindString, "a name")),
					WithSubcommands(sub))
			},
		},
		{
			name: "autocompleter without declaration",
			make: func() (*Command, error) {
				return New("tag", "show a tag", nopHandler,
					WithParams(param.MustNew("name", param.KindString, "tag name")),
					WithAutocomplete("name", func(ctx context.Context, value string) ([]param.Choice, error) {
						return nil, nil
					}))
			},
		},
		{
			name: "declared autocomplete without autocompleter",
			make: func() (*Command, error) {
				return New("tag", "show a tag", nopHandler,
					WithParams(param.MustNew("name", param.KindString, "tag name", param.Autocomplete())))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.make()
			if err == nil {
				t.Fatal("expected an error")
			}
			var cmdErr *Error
			if !errors.As(err, &cmdErr) {
				t.Errorf("expected a structured error, got %T", err)
			}
		})
	}
}

func TestNew_SubcommandDepth(t *testing.T) {
	leaf := MustNew("list", "list things", nopHandler)
	group := MustNew("admin", "admin things", nil, WithSubcommands(leaf))
	if _, err := New("things", "things", nil, WithSubcommands(group)); err != nil {
		t.Fatalf("two-level nesting should be valid: %v", err)
	}

	deepLeaf := MustNew("deep", "too deep", nopHandler)
	deepGroup := MustNew("inner", "inner", nil, WithSubcommands(deepLeaf))
	midGroup := MustNew("mid", "mid", nil, WithSubcommands(deepGroup))
	if _, err := New("things", "things", nil, WithSubcommands(midGroup)); err == nil {
		t.Fatal("expected three-level nesting to be rejected")
	}
}

func TestApplicationCommand(t *testing.T) {
	c := MustNew("slowmode", "configure slowmode", nopHandler,
		WithParams(
			param.MustNew("target", param.KindChannel, "the channel",
				param.ChannelTypes(discordgo.ChannelTypeGuildText)),
			param.MustNew("seconds", param.KindInteger, "interval",
				param.Min(0), param.Max(21600)),
		))

	app := c.ApplicationCommand()
	if app.Type != discordgo.ChatApplicationCommand {
		t.Errorf("unexpected command type %v", app.Type)
	}
	if len(app.Options) != 2 {
		t.Fatalf("expected 2 options, got %d", len(app.Options))
	}
	if app.Options[0].Type != discordgo.ApplicationCommandOptionChannel {
		t.Errorf("unexpected first option type %v", app.Options[0].Type)
	}
	if app.Options[1].MaxValue != 21600 {
		t.Errorf("expected max value 21600, got %v", app.Options[1].MaxValue)
	}
}

func TestApplicationCommand_Permissions(t *testing.T) {
	c := MustNew("spoil", "post spoilers", nopHandler, WithNSFW(), WithDMPermission(false))

	app := c.ApplicationCommand()
	if app.NSFW == nil || !*app.NSFW {
		t.Error("expected NSFW flag to be set")
	}
	if app.DMPermission == nil || *app.DMPermission {
		t.Error("expected DM permission to be disabled")
	}
}

func TestApplicationCommand_Subcommands(t *testing.T) {
	add := MustNew("add", "add a tag", nopHandler,
		WithParams(param.MustNew("name", param.KindString, "tag name")))
	remove := MustNew("remove", "remove a tag", nopHandler,
		WithParams(param.MustNew("name", param.KindString, "tag name")))
	c := MustNew("tag", "manage tags", nil, WithSubcommands(add, remove))

	app := c.ApplicationCommand()
	if len(app.Options) != 2 {
		t.Fatalf("expected 2 subcommand options, got %d", len(app.Options))
	}
	if app.Options[0].Type != discordgo.ApplicationCommandOptionSubCommand {
		t.Errorf("unexpected option type %v", app.Options[0].Type)
	}
	if len(app.Options[0].Options) != 1 {
		t.Errorf("expected nested parameter option, got %d", len(app.Options[0].Options))
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	cookie := MustNew("cookie", "who wants a cookie?", nopHandler)
	roll := MustNew("roll", "roll some dice", nopHandler)
	if err := reg.Register(roll, cookie); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := reg.Register(MustNew("cookie", "another cookie", nopHandler)); err == nil {
		t.Error("expected duplicate registration to fail")
	}

	got, err := reg.Get("roll")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != roll {
		t.Error("Get returned the wrong command")
	}

	if _, err := reg.Get("nope"); CodeOf(err) != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}

	list := reg.List()
	if len(list) != 2 || list[0].Name != "cookie" || list[1].Name != "roll" {
		t.Errorf("expected sorted [cookie roll], got %v", list)
	}

	apps := reg.ApplicationCommands()
	if len(apps) != 2 || apps[0].Name != "cookie" {
		t.Errorf("unexpected application command payloads: %v", apps)
	}
}

func TestRegistry_BatchIsAtomic(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(MustNew("cookie", "who wants a cookie?", nopHandler)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	roll := MustNew("roll", "roll some dice", nopHandler)
	dup := MustNew("cookie", "another cookie", nopHandler)
	if err := reg.Register(roll, dup); CodeOf(err) != ErrCodeConflict {
		t.Fatalf("expected a conflict error, got %v", err)
	}
	if reg.Len() != 1 {
		t.Errorf("failed batch should register nothing, got %d commands", reg.Len())
	}
	if _, err := reg.Get("roll"); CodeOf(err) != ErrCodeNotFound {
		t.Error("roll should not survive a failed batch")
	}

	twice := MustNew("ask", "ask a question", nopHandler)
	if err := reg.Register(twice, twice); CodeOf(err) != ErrCodeConflict {
		t.Errorf("expected duplicate within one batch to be rejected, got %v", err)
	}
	if reg.Len() != 1 {
		t.Errorf("expected registry unchanged, got %d commands", reg.Len())
	}
}

func TestErrorClassification(t *testing.T) {
	err := ErrRateLimit("throttled", nil)
	if !err.Retryable() {
		t.Error("rate limit errors should be retryable")
	}
	if ErrInvalidInput("bad", nil).Retryable() {
		t.Error("invalid input errors should not be retryable")
	}
	if CodeOf(errors.New("plain")) != ErrCodeInternal {
		t.Error("plain errors should classify as internal")
	}
}
