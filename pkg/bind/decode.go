package bind

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/bwmarrin/discordgo"
	"github.com/haasonsaas/slashkit/pkg/param"
)

// ErrDecode is wrapped by dispatch-time decoding failures. These indicate a
// mismatch between the registered metadata and the interaction payload and
// normally mean stale registrations, not user error.
var ErrDecode = errors.New("cannot decode interaction options")

// Decode fills the bound struct from an interaction's options. Absent
// optional parameters leave their fields at the zero value, which is how a
// handler expresses defaults.
func (b *Binder) Decode(opts []*discordgo.ApplicationCommandInteractionDataOption, resolved *discordgo.ApplicationCommandInteractionDataResolved, v any) error {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Pointer || val.IsNil() || val.Elem().Type() != b.typ {
		return fmt.Errorf("%w: need a non-nil *%s, got %T", ErrDecode, b.typ, v)
	}
	val = val.Elem()

	byName := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		byName[opt.Name] = opt
	}

	for _, bd := range b.bindings {
		opt, ok := byName[bd.descriptor.Name]
		if !ok {
			if bd.descriptor.Required {
				return fmt.Errorf("%w: required parameter %q missing from payload", ErrDecode, bd.descriptor.Name)
			}
			continue
		}
		field := val.Field(bd.fieldIndex)
		if err := setField(field, bd.descriptor, opt, resolved); err != nil {
			return err
		}
	}
	return nil
}

// Decode is the one-shot form for callers without a cached Binder.
func Decode(opts []*discordgo.ApplicationCommandInteractionDataOption, resolved *discordgo.ApplicationCommandInteractionDataResolved, v any) error {
	b, err := ForType(v)
	if err != nil {
		return err
	}
	return b.Decode(opts, resolved, v)
}

func setField(field reflect.Value, d *param.Descriptor, opt *discordgo.ApplicationCommandInteractionDataOption, resolved *discordgo.ApplicationCommandInteractionDataResolved) error {
	// Optional scalars may be declared as pointers.
	if field.Kind() == reflect.Pointer && !isEntityType(field.Type()) && field.Type().Elem().Kind() != reflect.Interface {
		elem := reflect.New(field.Type().Elem())
		field.Set(elem)
		field = elem.Elem()
	}

	switch d.Kind {
	case param.KindString:
		s, ok := opt.Value.(string)
		if !ok {
			return typeMismatch(d, opt.Value)
		}
		field.SetString(s)

	case param.KindInteger:
		f, ok := opt.Value.(float64)
		if !ok {
			return typeMismatch(d, opt.Value)
		}
		field.SetInt(int64(f))

	case param.KindNumber:
		f, ok := opt.Value.(float64)
		if !ok {
			return typeMismatch(d, opt.Value)
		}
		field.SetFloat(f)

	case param.KindBoolean:
		v, ok := opt.Value.(bool)
		if !ok {
			return typeMismatch(d, opt.Value)
		}
		field.SetBool(v)

	case param.KindUser:
		user, err := resolveUser(d, opt, resolved)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(user))

	case param.KindChannel:
		id, ok := opt.Value.(string)
		if !ok {
			return typeMismatch(d, opt.Value)
		}
		channel := resolvedChannel(resolved, id)
		if channel == nil {
			return fmt.Errorf("%w: channel %s for parameter %q not in resolved data", ErrDecode, id, d.Name)
		}
		field.Set(reflect.ValueOf(channel))

	case param.KindRole:
		id, ok := opt.Value.(string)
		if !ok {
			return typeMismatch(d, opt.Value)
		}
		role := resolvedRole(resolved, id)
		if role == nil {
			return fmt.Errorf("%w: role %s for parameter %q not in resolved data", ErrDecode, id, d.Name)
		}
		field.Set(reflect.ValueOf(role))

	case param.KindMentionable:
		id, ok := opt.Value.(string)
		if !ok {
			return typeMismatch(d, opt.Value)
		}
		if user := resolvedUser(resolved, id); user != nil {
			field.Set(reflect.ValueOf(user))
			return nil
		}
		if role := resolvedRole(resolved, id); role != nil {
			field.Set(reflect.ValueOf(role))
			return nil
		}
		return fmt.Errorf("%w: mentionable %s for parameter %q not in resolved data", ErrDecode, id, d.Name)

	case param.KindAttachment:
		id, ok := opt.Value.(string)
		if !ok {
			return typeMismatch(d, opt.Value)
		}
		att := resolvedAttachment(resolved, id)
		if att == nil {
			return fmt.Errorf("%w: attachment %s for parameter %q not in resolved data", ErrDecode, id, d.Name)
		}
		field.Set(reflect.ValueOf(att))
	}
	return nil
}

func resolveUser(d *param.Descriptor, opt *discordgo.ApplicationCommandInteractionDataOption, resolved *discordgo.ApplicationCommandInteractionDataResolved) (*discordgo.User, error) {
	id, ok := opt.Value.(string)
	if !ok {
		return nil, typeMismatch(d, opt.Value)
	}
	if user := resolvedUser(resolved, id); user != nil {
		return user, nil
	}
	return nil, fmt.Errorf("%w: user %s for parameter %q not in resolved data", ErrDecode, id, d.Name)
}

func resolvedUser(resolved *discordgo.ApplicationCommandInteractionDataResolved, id string) *discordgo.User {
	if resolved == nil {
		return nil
	}
	return resolved.Users[id]
}

func resolvedChannel(resolved *discordgo.ApplicationCommandInteractionDataResolved, id string) *discordgo.Channel {
	if resolved == nil {
		return nil
	}
	return resolved.Channels[id]
}

func resolvedRole(resolved *discordgo.ApplicationCommandInteractionDataResolved, id string) *discordgo.Role {
	if resolved == nil {
		return nil
	}
	return resolved.Roles[id]
}

func resolvedAttachment(resolved *discordgo.ApplicationCommandInteractionDataResolved, id string) *discordgo.MessageAttachment {
	if resolved == nil {
		return nil
	}
	return resolved.Attachments[id]
}

func typeMismatch(d *param.Descriptor, got any) error {
	return fmt.Errorf("%w: parameter %q: expected a %s value, got %T", ErrDecode, d.Name, d.Kind, got)
}
