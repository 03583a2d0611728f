package param

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Kind identifies the display type of a parameter. It is the tag users see
// in declarations ("str", "int", ...) and maps one-to-one onto the
// application command option types Discord accepts.
type Kind int

const (
	// KindString accepts free-form text.
	KindString Kind = iota + 1

	// KindInteger accepts whole numbers.
	KindInteger

	// KindNumber accepts floating point values.
	KindNumber

	// KindBoolean accepts true/false.
	KindBoolean

	// KindUser accepts a server member or user mention.
	KindUser

	// KindChannel accepts a channel, optionally filtered by channel type.
	KindChannel

	// KindRole accepts a role mention.
	KindRole

	// KindMentionable accepts either a user or a role.
	KindMentionable

	// KindAttachment accepts an uploaded file.
	KindAttachment
)

// kindTags holds the user-facing tag for each kind.
var kindTags = map[Kind]string{
	KindString:      "str",
	KindInteger:     "int",
	KindNumber:      "number",
	KindBoolean:     "bool",
	KindUser:        "user",
	KindChannel:     "channel",
	KindRole:        "role",
	KindMentionable: "mentionable",
	KindAttachment:  "attachment",
}

// kindOptionTypes maps each kind onto the wire option type.
var kindOptionTypes = map[Kind]discordgo.ApplicationCommandOptionType{
	KindString:      discordgo.ApplicationCommandOptionString,
	KindInteger:     discordgo.ApplicationCommandOptionInteger,
	KindNumber:      discordgo.ApplicationCommandOptionNumber,
	KindBoolean:     discordgo.ApplicationCommandOptionBoolean,
	KindUser:        discordgo.ApplicationCommandOptionUser,
	KindChannel:     discordgo.ApplicationCommandOptionChannel,
	KindRole:        discordgo.ApplicationCommandOptionRole,
	KindMentionable: discordgo.ApplicationCommandOptionMentionable,
	KindAttachment:  discordgo.ApplicationCommandOptionAttachment,
}

// String returns the user-facing tag for the kind.
func (k Kind) String() string {
	if tag, ok := kindTags[k]; ok {
		return tag
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether the kind is one of the declared kinds.
func (k Kind) Valid() bool {
	_, ok := kindTags[k]
	return ok
}

// OptionType returns the application command option type for the kind.
func (k Kind) OptionType() discordgo.ApplicationCommandOptionType {
	return kindOptionTypes[k]
}

// Numeric reports whether min/max value bounds apply to the kind.
func (k Kind) Numeric() bool {
	return k == KindInteger || k == KindNumber
}

// Choosable reports whether an enumerated choice list may be attached.
func (k Kind) Choosable() bool {
	return k == KindString || k == KindInteger || k == KindNumber
}

// KindFromTag parses a user-facing tag ("str", "int", ...) into a Kind.
// A few aliases are accepted for ergonomics.
func KindFromTag(tag string) (Kind, error) {
	switch tag {
	case "str", "string":
		return KindString, nil
	case "int", "integer":
		return KindInteger, nil
	case "number", "float", "float64":
		return KindNumber, nil
	case "bool", "boolean":
		return KindBoolean, nil
	case "user", "member":
		return KindUser, nil
	case "channel":
		return KindChannel, nil
	case "role":
		return KindRole, nil
	case "mentionable":
		return KindMentionable, nil
	case "attachment", "file":
		return KindAttachment, nil
	}
	return 0, fmt.Errorf("%w: unknown parameter type tag %q", ErrInvalid, tag)
}

// channelTypeTags maps the tags accepted in channel-type filters onto
// channel types. Only guild channel categories make sense as filters.
var channelTypeTags = map[string]discordgo.ChannelType{
	"text":           discordgo.ChannelTypeGuildText,
	"voice":          discordgo.ChannelTypeGuildVoice,
	"category":       discordgo.ChannelTypeGuildCategory,
	"news":           discordgo.ChannelTypeGuildNews,
	"news-thread":    discordgo.ChannelTypeGuildNewsThread,
	"public-thread":  discordgo.ChannelTypeGuildPublicThread,
	"private-thread": discordgo.ChannelTypeGuildPrivateThread,
	"stage":          discordgo.ChannelTypeGuildStageVoice,
	"forum":          discordgo.ChannelTypeGuildForum,
}

// ChannelTypeFromTag parses a channel-type filter tag ("text", "voice", ...).
func ChannelTypeFromTag(tag string) (discordgo.ChannelType, error) {
	if ct, ok := channelTypeTags[tag]; ok {
		return ct, nil
	}
	return 0, fmt.Errorf("%w: unknown channel type tag %q", ErrInvalid, tag)
}
