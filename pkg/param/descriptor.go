// Package param implements parameter descriptors for slash commands: the
// metadata record (type tag, description, constraints, choices) attached to
// a command parameter at definition time and consumed once when the command
// is published to Discord.
package param

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/bwmarrin/discordgo"
)

// ErrInvalid is wrapped by every definition-time validation failure.
var ErrInvalid = errors.New("invalid parameter")

// Platform limits for parameter metadata.
const (
	MaxNameLength        = 32
	MaxDescriptionLength = 100
	MaxChoices           = 25
	MaxChoiceNameLength  = 100
	MaxStringLength      = 6000
)

var nameRe = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)

// ValidName reports whether s is acceptable as a parameter or command name.
func ValidName(s string) bool {
	return nameRe.MatchString(s)
}

// Descriptor associates a parameter name with its display type, description
// and optional constraints. Descriptors are immutable once built; mutation
// happens only through options passed to New.
type Descriptor struct {
	// Name is the parameter name shown in the client, 1-32 lowercase chars.
	Name string

	// Kind is the display type tag.
	Kind Kind

	// Description is the human readable description, 1-100 chars.
	Description string

	// Required marks the parameter as mandatory. Defaults to true; the
	// Optional option clears it.
	Required bool

	// MinValue / MaxValue bound Integer and Number parameters.
	MinValue *float64
	MaxValue *float64

	// MinLength / MaxLength bound String parameters.
	MinLength *int
	MaxLength *int

	// Choices restricts the parameter to an enumerated value set.
	Choices []Choice

	// ChannelTypes restricts a Channel parameter to the given categories.
	ChannelTypes []discordgo.ChannelType

	// Autocomplete marks the parameter as autocompleted. Mutually
	// exclusive with Choices.
	Autocomplete bool
}

// Option mutates a descriptor under construction.
type Option func(*Descriptor)

// Optional clears the required flag.
func Optional() Option {
	return func(d *Descriptor) { d.Required = false }
}

// Min sets the lower value bound for Integer and Number parameters.
func Min(v float64) Option {
	return func(d *Descriptor) { d.MinValue = &v }
}

// Max sets the upper value bound for Integer and Number parameters.
func Max(v float64) Option {
	return func(d *Descriptor) { d.MaxValue = &v }
}

// MinLen sets the minimum input length for String parameters.
func MinLen(n int) Option {
	return func(d *Descriptor) { d.MinLength = &n }
}

// MaxLen sets the maximum input length for String parameters.
func MaxLen(n int) Option {
	return func(d *Descriptor) { d.MaxLength = &n }
}

// Choices restricts the parameter to the given value set.
func Choices(choices ...Choice) Option {
	return func(d *Descriptor) { d.Choices = append(d.Choices, choices...) }
}

// ChannelTypes restricts a Channel parameter to the given categories.
func ChannelTypes(types ...discordgo.ChannelType) Option {
	return func(d *Descriptor) { d.ChannelTypes = append(d.ChannelTypes, types...) }
}

// Autocomplete marks the parameter as autocompleted.
func Autocomplete() Option {
	return func(d *Descriptor) { d.Autocomplete = true }
}

// New builds a parameter descriptor. It validates the result so malformed
// metadata surfaces at definition time rather than at registration.
func New(name string, kind Kind, description string, opts ...Option) (*Descriptor, error) {
	d := &Descriptor{
		Name:        name,
		Kind:        kind,
		Description: description,
		Required:    true,
	}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// MustNew is New for package-level declarations; it panics on invalid input.
func MustNew(name string, kind Kind, description string, opts ...Option) *Descriptor {
	d, err := New(name, kind, description, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Validate checks the descriptor against platform rules.
func (d *Descriptor) Validate() error {
	if !ValidName(d.Name) {
		return fmt.Errorf("%w: name %q must be 1-%d chars of [a-z0-9_-]", ErrInvalid, d.Name, MaxNameLength)
	}
	if !d.Kind.Valid() {
		return fmt.Errorf("%w: parameter %q has no type", ErrInvalid, d.Name)
	}
	if l := len(d.Description); l == 0 || l > MaxDescriptionLength {
		return fmt.Errorf("%w: parameter %q description must be 1-%d chars, got %d", ErrInvalid, d.Name, MaxDescriptionLength, l)
	}

	if (d.MinValue != nil || d.MaxValue != nil) && !d.Kind.Numeric() {
		return fmt.Errorf("%w: parameter %q: value bounds apply only to int and number parameters", ErrInvalid, d.Name)
	}
	if d.MinValue != nil && d.MaxValue != nil && *d.MinValue > *d.MaxValue {
		return fmt.Errorf("%w: parameter %q: min value %v exceeds max value %v", ErrInvalid, d.Name, *d.MinValue, *d.MaxValue)
	}

	if (d.MinLength != nil || d.MaxLength != nil) && d.Kind != KindString {
		return fmt.Errorf("%w: parameter %q: length bounds apply only to str parameters", ErrInvalid, d.Name)
	}
	if d.MinLength != nil && (*d.MinLength < 0 || *d.MinLength > MaxStringLength) {
		return fmt.Errorf("%w: parameter %q: min length %d out of range", ErrInvalid, d.Name, *d.MinLength)
	}
	if d.MaxLength != nil && (*d.MaxLength < 1 || *d.MaxLength > MaxStringLength) {
		return fmt.Errorf("%w: parameter %q: max length %d out of range", ErrInvalid, d.Name, *d.MaxLength)
	}
	if d.MinLength != nil && d.MaxLength != nil && *d.MinLength > *d.MaxLength {
		return fmt.Errorf("%w: parameter %q: min length %d exceeds max length %d", ErrInvalid, d.Name, *d.MinLength, *d.MaxLength)
	}

	if d.Autocomplete && !d.Kind.Choosable() {
		return fmt.Errorf("%w: parameter %q: autocomplete applies only to str, int and number parameters", ErrInvalid, d.Name)
	}

	if len(d.ChannelTypes) > 0 && d.Kind != KindChannel {
		return fmt.Errorf("%w: parameter %q: channel type filters apply only to channel parameters", ErrInvalid, d.Name)
	}

	if len(d.Choices) > 0 {
		if !d.Kind.Choosable() {
			return fmt.Errorf("%w: parameter %q: choices apply only to str, int and number parameters", ErrInvalid, d.Name)
		}
		if d.Autocomplete {
			return fmt.Errorf("%w: parameter %q: choices and autocomplete are mutually exclusive", ErrInvalid, d.Name)
		}
		if len(d.Choices) > MaxChoices {
			return fmt.Errorf("%w: parameter %q: %d choices exceeds the limit of %d", ErrInvalid, d.Name, len(d.Choices), MaxChoices)
		}
		seen := make(map[string]bool, len(d.Choices))
		for i := range d.Choices {
			c := &d.Choices[i]
			if err := c.validate(d.Kind); err != nil {
				return fmt.Errorf("parameter %q: %w", d.Name, err)
			}
			if seen[c.Name] {
				return fmt.Errorf("%w: parameter %q: duplicate choice %q", ErrInvalid, d.Name, c.Name)
			}
			seen[c.Name] = true
		}
	}

	return nil
}

// Option converts the descriptor into the wire representation consumed by
// the registration machinery.
func (d *Descriptor) Option() *discordgo.ApplicationCommandOption {
	opt := &discordgo.ApplicationCommandOption{
		Type:         d.Kind.OptionType(),
		Name:         d.Name,
		Description:  d.Description,
		Required:     d.Required,
		Autocomplete: d.Autocomplete,
		ChannelTypes: d.ChannelTypes,
		MinValue:     d.MinValue,
		MinLength:    d.MinLength,
	}
	if d.MaxValue != nil {
		opt.MaxValue = *d.MaxValue
	}
	if d.MaxLength != nil {
		opt.MaxLength = *d.MaxLength
	}
	for _, c := range d.Choices {
		opt.Choices = append(opt.Choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  c.Name,
			Value: c.Value,
		})
	}
	return opt
}
