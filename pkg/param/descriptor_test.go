package param

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestNew_Defaults(t *testing.T) {
	d, err := New("days", KindInteger, "the amount of days to mute the user")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if !d.Required {
		t.Error("expected parameters to default to required")
	}
	if d.Kind.String() != "int" {
		t.Errorf("expected kind tag %q, got %q", "int", d.Kind.String())
	}
}

func TestNew_Constraints(t *testing.T) {
	d, err := New("dice", KindInteger, "with how much dice do you wanna roll?",
		Optional(), Min(1), Max(6))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if d.Required {
		t.Error("expected Optional to clear the required flag")
	}
	if d.MinValue == nil || *d.MinValue != 1 {
		t.Errorf("expected min value 1, got %v", d.MinValue)
	}
	if d.MaxValue == nil || *d.MaxValue != 6 {
		t.Errorf("expected max value 6, got %v", d.MaxValue)
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		make func() (*Descriptor, error)
	}{
		{
			name: "uppercase name",
			make: func() (*Descriptor, error) {
				return New("Days", KindInteger, "days")
			},
		},
		{
			name: "empty description",
			make: func() (*Descriptor, error) {
				return New("days", KindInteger, "")
			},
		},
		{
			name: "bounds on string",
			make: func() (*Descriptor, error) {
				return New("name", KindString, "a name", Min(1))
			},
		},
		{
			name: "min above max",
			make: func() (*Descriptor, error) {
				return New("days", KindInteger, "days", Min(10), Max(1))
			},
		},
		{
			name: "length bounds on int",
			make: func() (*Descriptor, error) {
				return New("days", KindInteger, "days", MaxLen(4))
			},
		},
		{
			name: "channel filter on string",
			make: func() (*Descriptor, error) {
				return New("name", KindString, "a name",
					ChannelTypes(discordgo.ChannelTypeGuildText))
			},
		},
		{
			name: "choices on bool",
			make: func() (*Descriptor, error) {
				return New("flag", KindBoolean, "a flag", Choices(Plain("yes")))
			},
		},
		{
			name: "choices with autocomplete",
			make: func() (*Descriptor, error) {
				return New("kind", KindString, "a kind",
					Choices(Plain("a")), Autocomplete())
			},
		},
		{
			name: "autocomplete on bool",
			make: func() (*Descriptor, error) {
				return New("flag", KindBoolean, "a flag", Autocomplete())
			},
		},
		{
			name: "duplicate choice names",
			make: func() (*Descriptor, error) {
				return New("kind", KindString, "a kind",
					Choices(C("a", "x"), C("a", "y")))
			},
		},
		{
			name: "choice value type mismatch",
			make: func() (*Descriptor, error) {
				return New("count", KindInteger, "a count", Choices(Plain("three")))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.make(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestNew_TooManyChoices(t *testing.T) {
	choices := make([]Choice, MaxChoices+1)
	for i := range choices {
		choices[i] = C(string(rune('a'+i%26))+string(rune('a'+i/26)), "v")
	}

	if _, err := New("kind", KindString, "a kind", Choices(choices...)); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for %d choices, got %v", len(choices), err)
	}
}

func TestDescriptor_Option(t *testing.T) {
	d := MustNew("loudness", KindInteger, "how loud?", Min(0), Max(11),
		Choices(C("whisper", 0), C("shout", 11)))

	opt := d.Option()

	if opt.Type != discordgo.ApplicationCommandOptionInteger {
		t.Errorf("expected integer option type, got %v", opt.Type)
	}
	if opt.MinValue == nil || *opt.MinValue != 0 {
		t.Errorf("expected min value 0, got %v", opt.MinValue)
	}
	if opt.MaxValue != 11 {
		t.Errorf("expected max value 11, got %v", opt.MaxValue)
	}
	if len(opt.Choices) != 2 {
		t.Fatalf("expected 2 choices, got %d", len(opt.Choices))
	}
	if opt.Choices[1].Name != "shout" {
		t.Errorf("expected choice name %q, got %q", "shout", opt.Choices[1].Name)
	}
	if v, ok := opt.Choices[1].Value.(int64); !ok || v != 11 {
		t.Errorf("expected int64 choice value 11, got %T %v", opt.Choices[1].Value, opt.Choices[1].Value)
	}
}

func TestDescriptor_OptionChannelTypes(t *testing.T) {
	d := MustNew("target", KindChannel, "the channel to configure",
		ChannelTypes(discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews))

	opt := d.Option()
	if len(opt.ChannelTypes) != 2 {
		t.Fatalf("expected 2 channel types, got %d", len(opt.ChannelTypes))
	}
	if opt.ChannelTypes[0] != discordgo.ChannelTypeGuildText {
		t.Errorf("unexpected channel type %v", opt.ChannelTypes[0])
	}
}

func TestKindFromTag(t *testing.T) {
	tests := []struct {
		tag  string
		want Kind
	}{
		{"str", KindString},
		{"string", KindString},
		{"int", KindInteger},
		{"number", KindNumber},
		{"float", KindNumber},
		{"bool", KindBoolean},
		{"user", KindUser},
		{"channel", KindChannel},
		{"role", KindRole},
		{"mentionable", KindMentionable},
		{"attachment", KindAttachment},
	}

	for _, tt := range tests {
		got, err := KindFromTag(tt.tag)
		if err != nil {
			t.Errorf("KindFromTag(%q) failed: %v", tt.tag, err)
			continue
		}
		if got != tt.want {
			t.Errorf("KindFromTag(%q) = %v, want %v", tt.tag, got, tt.want)
		}
	}

	if _, err := KindFromTag("snowflake"); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for unknown tag, got %v", err)
	}
}

func TestPlainStrings(t *testing.T) {
	choices := PlainStrings("cake", "cookie")
	if len(choices) != 2 {
		t.Fatalf("expected 2 choices, got %d", len(choices))
	}
	if choices[0].Name != "cake" || choices[0].Value != "cake" {
		t.Errorf("unexpected plain choice %+v", choices[0])
	}
}
