package main

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/haasonsaas/slashkit/pkg/command"
	"github.com/haasonsaas/slashkit/pkg/param"
	"github.com/haasonsaas/slashkit/pkg/router"
)

// Discord epoch in milliseconds, for snowflake timestamps.
const discordEpoch = 1420070400000

// rollArgs shows the annotation style: the descriptors come from the
// struct tags.
type rollArgs struct {
	Dice  int  `slash:"dice,min=1,max=6" desc:"with how much dice do you wanna roll?"`
	Sides *int `slash:"sides,min=2,max=120" desc:"how many sides per die?"`
}

// demoCommands builds the demo command set.
func demoCommands() ([]*command.Command, error) {
	cookie, err := command.New("cookie", "Who wants a cookie?", handleCookie)
	if err != nil {
		return nil, err
	}

	roll, err := command.New("roll", "Roll some dice.", handleRoll,
		command.WithArgs(&rollArgs{}))
	if err != nil {
		return nil, err
	}

	// The configurator style: descriptors built by hand.
	idToDatetime, err := command.New("id-to-datetime", "Convert a snowflake to its creation time.", handleIDToDatetime,
		command.WithParams(
			param.MustNew("snowflake", param.KindInteger, "the snowflake to convert", param.Min(1)),
		))
	if err != nil {
		return nil, err
	}

	ask, err := command.New("ask", "Ask the oracle anything.", handleAsk,
		command.WithParams(
			param.MustNew("question", param.KindString, "what do you want to know?", param.MaxLen(200)),
		))
	if err != nil {
		return nil, err
	}

	pick, err := command.New("pick", "Pick a treat.", handlePick,
		command.WithParams(
			param.MustNew("treat", param.KindString, "which treat?",
				param.Choices(param.PlainStrings("cake", "cookie", "matcha")...)),
		))
	if err != nil {
		return nil, err
	}

	slowmode, err := command.New("slowmode", "Set a channel's slowmode interval.", handleSlowmode,
		command.WithParams(
			param.MustNew("target", param.KindChannel, "the channel to slow down",
				param.ChannelTypes(discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews)),
			param.MustNew("seconds", param.KindInteger, "interval in seconds, 0 disables",
				param.Min(0), param.Max(21600)),
		))
	if err != nil {
		return nil, err
	}

	tag, err := tagCommand()
	if err != nil {
		return nil, err
	}

	return []*command.Command{cookie, roll, idToDatetime, ask, pick, slowmode, tag}, nil
}

func handleCookie(ctx context.Context, inv *command.Invocation) error {
	return inv.Respond("🍪")
}

func handleRoll(ctx context.Context, inv *command.Invocation) error {
	var args rollArgs
	if err := inv.Args(&args); err != nil {
		return err
	}

	sides := 6
	if args.Sides != nil {
		sides = *args.Sides
	}

	total := 0
	for i := 0; i < args.Dice; i++ {
		total += rand.Intn(sides) + 1
	}
	return inv.Respond(fmt.Sprintf("You rolled %dd%d: **%d**", args.Dice, sides, total))
}

func handleIDToDatetime(ctx context.Context, inv *command.Invocation) error {
	snowflake := inv.Int("snowflake")
	if snowflake < 1 {
		return router.Abort("That does not look like a snowflake.")
	}
	created := time.UnixMilli((snowflake >> 22) + discordEpoch).UTC()
	return inv.Respond(created.Format("2006-01-02 15:04:05 MST"))
}

func handleAsk(ctx context.Context, inv *command.Invocation) error {
	question := strings.TrimSpace(inv.String("question"))
	if question == "" {
		return router.Abort("Ask me an actual question.")
	}
	if !strings.HasSuffix(question, "?") {
		return router.Abortf("%q is not a question.", question)
	}

	answers := []string{"Certainly.", "Very doubtful.", "Ask again later.", "Signs point to yes."}
	return inv.Respond(answers[rand.Intn(len(answers))])
}

func handlePick(ctx context.Context, inv *command.Invocation) error {
	return inv.Respond("Enjoy your " + inv.String("treat") + "!")
}

func handleSlowmode(ctx context.Context, inv *command.Invocation) error {
	channel := inv.Channel("target")
	if channel == nil {
		return router.Abort("I cannot see that channel.")
	}
	seconds := inv.Int("seconds")
	if seconds == 0 {
		return inv.Respond(fmt.Sprintf("Slowmode disabled in <#%s>.", channel.ID))
	}
	return inv.Respond(fmt.Sprintf("Slowmode in <#%s> set to %d seconds.", channel.ID, seconds))
}

// demoTags backs the tag subcommands. A real bot would persist these.
var demoTags = map[string]string{
	"hello": "Hello there!",
	"help":  "Try /cookie, /roll or /ask.",
}

// tagCommand shows subcommands and autocomplete.
func tagCommand() (*command.Command, error) {
	show, err := command.New("show", "Show a tag.", handleTagShow,
		command.WithParams(
			param.MustNew("name", param.KindString, "the tag to show", param.Autocomplete()),
		),
		command.WithAutocomplete("name", completeTagName))
	if err != nil {
		return nil, err
	}

	list, err := command.New("list", "List all tags.", handleTagList)
	if err != nil {
		return nil, err
	}

	return command.New("tag", "Look up stored tags.", nil,
		command.WithSubcommands(show, list))
}

func handleTagShow(ctx context.Context, inv *command.Invocation) error {
	name := inv.String("name")
	content, ok := demoTags[name]
	if !ok {
		return router.Abortf("No tag named %q.", name)
	}
	return inv.Respond(content)
}

func handleTagList(ctx context.Context, inv *command.Invocation) error {
	names := make([]string, 0, len(demoTags))
	for name := range demoTags {
		names = append(names, name)
	}
	return inv.Respond("Tags: " + strings.Join(names, ", "))
}

func completeTagName(ctx context.Context, value string) ([]param.Choice, error) {
	var choices []param.Choice
	for name := range demoTags {
		if strings.HasPrefix(name, strings.ToLower(value)) {
			choices = append(choices, param.Plain(name))
		}
	}
	return choices, nil
}
