package bind

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/haasonsaas/slashkit/pkg/param"
)

type rollArgs struct {
	Dice  int  `slash:"dice,min=1,max=6" desc:"with how much dice do you wanna roll?"`
	Sides *int `slash:"sides,min=2,max=120" desc:"how many sides per die?"`
}

type slowmodeArgs struct {
	Target  *discordgo.Channel `slash:"target,channels=text|news" desc:"the channel to slow down"`
	Seconds int                `slash:"seconds,min=0,max=21600" desc:"slowmode interval in seconds"`
}

func TestDescribe_InferredKinds(t *testing.T) {
	descriptors, err := Describe(&rollArgs{})
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if len(descriptors) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(descriptors))
	}

	dice := descriptors[0]
	if dice.Name != "dice" || dice.Kind != param.KindInteger {
		t.Errorf("unexpected dice descriptor: %+v", dice)
	}
	if !dice.Required {
		t.Error("expected dice to be required")
	}
	if dice.MinValue == nil || *dice.MinValue != 1 || dice.MaxValue == nil || *dice.MaxValue != 6 {
		t.Errorf("unexpected dice bounds: min=%v max=%v", dice.MinValue, dice.MaxValue)
	}

	sides := descriptors[1]
	if sides.Required {
		t.Error("expected pointer field to infer an optional parameter")
	}
}

func TestDescribe_EntityFieldsAndFilters(t *testing.T) {
	descriptors, err := Describe(&slowmodeArgs{})
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}

	target := descriptors[0]
	if target.Kind != param.KindChannel {
		t.Errorf("expected channel kind, got %v", target.Kind)
	}
	if len(target.ChannelTypes) != 2 || target.ChannelTypes[0] != discordgo.ChannelTypeGuildText {
		t.Errorf("unexpected channel filters: %v", target.ChannelTypes)
	}
}

func TestDescribe_Choices(t *testing.T) {
	type pickArgs struct {
		Flavor string `slash:"flavor,choices=vanilla|chocolate|matcha" desc:"which flavor?"`
		Level  int    `slash:"level,choices=Low:1|High:9" desc:"which level?"`
	}

	descriptors, err := Describe(&pickArgs{})
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}

	if len(descriptors[0].Choices) != 3 {
		t.Errorf("expected 3 flavor choices, got %d", len(descriptors[0].Choices))
	}
	level := descriptors[1].Choices
	if len(level) != 2 || level[0].Name != "Low" {
		t.Fatalf("unexpected level choices: %+v", level)
	}
	if v, ok := level[1].Value.(int64); !ok || v != 9 {
		t.Errorf("expected int64 choice value 9, got %T %v", level[1].Value, level[1].Value)
	}
}

func TestDescribe_TypeOverrideAfterChoices(t *testing.T) {
	// type= applies regardless of where it sits in the tag.
	type args struct {
		Level string `slash:"level,choices=1|9,type=int" desc:"which level?"`
	}

	descriptors, err := Describe(&args{})
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	d := descriptors[0]
	if d.Kind != param.KindInteger {
		t.Fatalf("expected integer kind, got %v", d.Kind)
	}
	if v, ok := d.Choices[1].Value.(int64); !ok || v != 9 {
		t.Errorf("expected int64 choice value 9, got %T %v", d.Choices[1].Value, d.Choices[1].Value)
	}
}

func TestDescribe_Errors(t *testing.T) {
	tests := []struct {
		name string
		v    any
	}{
		{"not a struct pointer", 42},
		{"missing desc", &struct {
			Dice int `slash:"dice"`
		}{}},
		{"unknown tag key", &struct {
			Dice int `slash:"dice,minimum=1" desc:"dice"`
		}{}},
		{"unsupported field type", &struct {
			Dice []int `slash:"dice" desc:"dice"`
		}{}},
		{"duplicate names", &struct {
			A int `slash:"dice" desc:"dice"`
			B int `slash:"dice" desc:"dice again"`
		}{}},
		{"no parameters", &struct {
			hidden int
		}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Describe(tt.v); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestDescribe_SkipsIgnoredFields(t *testing.T) {
	type args struct {
		Dice  int    `slash:"dice" desc:"dice"`
		State string `slash:"-"`
	}

	descriptors, err := Describe(&args{})
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if len(descriptors) != 1 {
		t.Errorf("expected ignored field to be skipped, got %d descriptors", len(descriptors))
	}
}

func TestDecode(t *testing.T) {
	binder, err := ForType(&rollArgs{})
	if err != nil {
		t.Fatalf("ForType failed: %v", err)
	}

	opts := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "dice", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(3)},
		{Name: "sides", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(20)},
	}

	var args rollArgs
	if err := binder.Decode(opts, nil, &args); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if args.Dice != 3 {
		t.Errorf("expected dice=3, got %d", args.Dice)
	}
	if args.Sides == nil || *args.Sides != 20 {
		t.Errorf("expected sides=20, got %v", args.Sides)
	}
}

func TestDecode_AbsentOptionalKeepsZero(t *testing.T) {
	opts := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "dice", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(1)},
	}

	var args rollArgs
	if err := Decode(opts, nil, &args); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if args.Sides != nil {
		t.Errorf("expected absent optional to stay nil, got %v", args.Sides)
	}
}

func TestDecode_MissingRequired(t *testing.T) {
	var args rollArgs
	err := Decode(nil, nil, &args)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestDecode_ResolvedEntities(t *testing.T) {
	opts := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "target", Type: discordgo.ApplicationCommandOptionChannel, Value: "123"},
		{Name: "seconds", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(30)},
	}
	resolved := &discordgo.ApplicationCommandInteractionDataResolved{
		Channels: map[string]*discordgo.Channel{
			"123": {ID: "123", Name: "general", Type: discordgo.ChannelTypeGuildText},
		},
	}

	var args slowmodeArgs
	if err := Decode(opts, resolved, &args); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if args.Target == nil || args.Target.Name != "general" {
		t.Errorf("expected resolved channel, got %+v", args.Target)
	}
	if args.Seconds != 30 {
		t.Errorf("expected seconds=30, got %d", args.Seconds)
	}
}

func TestDecode_Mentionable(t *testing.T) {
	type pingArgs struct {
		Who any `slash:"who,type=mentionable" desc:"who to ping"`
	}
	opts := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "who", Type: discordgo.ApplicationCommandOptionMentionable, Value: "77"},
	}

	// Resolved as a user.
	resolved := &discordgo.ApplicationCommandInteractionDataResolved{
		Users: map[string]*discordgo.User{"77": {ID: "77", Username: "zaphod"}},
	}
	var args pingArgs
	if err := Decode(opts, resolved, &args); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	user, ok := args.Who.(*discordgo.User)
	if !ok || user.Username != "zaphod" {
		t.Errorf("expected a resolved user, got %T %+v", args.Who, args.Who)
	}

	// Same ID resolved only as a role falls through to the roles map.
	resolved = &discordgo.ApplicationCommandInteractionDataResolved{
		Roles: map[string]*discordgo.Role{"77": {ID: "77", Name: "mods"}},
	}
	args = pingArgs{}
	if err := Decode(opts, resolved, &args); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	role, ok := args.Who.(*discordgo.Role)
	if !ok || role.Name != "mods" {
		t.Errorf("expected a resolved role, got %T %+v", args.Who, args.Who)
	}

	// Resolved as neither is a decode error.
	args = pingArgs{}
	if err := Decode(opts, nil, &args); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestDecode_Attachment(t *testing.T) {
	type uploadArgs struct {
		File *discordgo.MessageAttachment `slash:"file" desc:"the file to upload"`
	}
	opts := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "file", Type: discordgo.ApplicationCommandOptionAttachment, Value: "900"},
	}
	resolved := &discordgo.ApplicationCommandInteractionDataResolved{
		Attachments: map[string]*discordgo.MessageAttachment{
			"900": {ID: "900", Filename: "notes.txt"},
		},
	}

	var args uploadArgs
	if err := Decode(opts, resolved, &args); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if args.File == nil || args.File.Filename != "notes.txt" {
		t.Errorf("expected resolved attachment, got %+v", args.File)
	}
}

func TestDecode_UnresolvedEntity(t *testing.T) {
	opts := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "target", Type: discordgo.ApplicationCommandOptionChannel, Value: "123"},
		{Name: "seconds", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(30)},
	}

	var args slowmodeArgs
	if err := Decode(opts, nil, &args); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}
