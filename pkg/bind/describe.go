// Package bind implements the annotation side of parameter declaration:
// instead of building descriptors by hand, a command declares a parameter
// struct whose fields carry `slash` and `desc` tags, and bind derives the
// descriptors from it and fills it back in from incoming interactions.
//
//	type rollArgs struct {
//		Dice int `slash:"dice,min=1,max=6" desc:"with how much dice do you wanna roll?"`
//	}
//
// Field types infer the parameter kind; pointer fields are optional.
package bind

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/haasonsaas/slashkit/pkg/param"
)

// ErrBadStruct is wrapped by every definition-time binding failure.
var ErrBadStruct = errors.New("unbindable parameter struct")

// binding ties a struct field to its descriptor.
type binding struct {
	fieldIndex int
	descriptor *param.Descriptor
}

// Binder holds the derived descriptors for one parameter struct type and
// knows how to decode interaction options back into it. Build it once at
// definition time with ForType and reuse it for every dispatch.
type Binder struct {
	typ      reflect.Type
	bindings []binding
}

// ForType derives a Binder from a pointer to a parameter struct.
func ForType(v any) (*Binder, error) {
	typ := reflect.TypeOf(v)
	if typ == nil || typ.Kind() != reflect.Pointer || typ.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: need a pointer to a struct, got %T", ErrBadStruct, v)
	}
	typ = typ.Elem()

	b := &Binder{typ: typ}
	seen := make(map[string]bool)

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("slash")
		if tag == "-" {
			continue
		}

		d, err := describeField(field, tag)
		if err != nil {
			return nil, err
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("%w: duplicate parameter name %q", ErrBadStruct, d.Name)
		}
		seen[d.Name] = true

		b.bindings = append(b.bindings, binding{fieldIndex: i, descriptor: d})
	}

	if len(b.bindings) == 0 {
		return nil, fmt.Errorf("%w: %s declares no parameters", ErrBadStruct, typ)
	}
	return b, nil
}

// Describe derives parameter descriptors from a pointer to a parameter
// struct. It is the one-shot form of ForType.
func Describe(v any) ([]*param.Descriptor, error) {
	b, err := ForType(v)
	if err != nil {
		return nil, err
	}
	return b.Descriptors(), nil
}

// Descriptors returns the derived descriptors in field order.
func (b *Binder) Descriptors() []*param.Descriptor {
	out := make([]*param.Descriptor, 0, len(b.bindings))
	for _, bd := range b.bindings {
		out = append(out, bd.descriptor)
	}
	return out
}

// Type returns the bound struct type.
func (b *Binder) Type() reflect.Type {
	return b.typ
}

// describeField derives one descriptor from a struct field and its tag.
func describeField(field reflect.StructField, tag string) (*param.Descriptor, error) {
	name := strings.ToLower(field.Name)
	optional := field.Type.Kind() == reflect.Pointer && !isEntityType(field.Type)

	kind, err := inferKind(field.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: field %s: %v", ErrBadStruct, field.Name, err)
	}

	var opts []param.Option
	if tag != "" {
		parts := strings.Split(tag, ",")
		if parts[0] != "" {
			name = parts[0]
		}

		// The kind must be settled first so keys like choices= coerce
		// their values against the declared type, not the inferred one.
		for _, part := range parts[1:] {
			if key, value, _ := strings.Cut(part, "="); key == "type" {
				kind, err = param.KindFromTag(value)
				if err != nil {
					return nil, fmt.Errorf("%w: field %s: %v", ErrBadStruct, field.Name, err)
				}
			}
		}

		for _, part := range parts[1:] {
			key, value, _ := strings.Cut(part, "=")
			switch key {
			case "optional":
				optional = true
			case "required":
				optional = false
			case "type":
				// handled in the first pass
			case "min":
				f, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: field %s: bad min %q", ErrBadStruct, field.Name, value)
				}
				opts = append(opts, param.Min(f))
			case "max":
				f, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: field %s: bad max %q", ErrBadStruct, field.Name, value)
				}
				opts = append(opts, param.Max(f))
			case "minlen":
				n, err := strconv.Atoi(value)
				if err != nil {
					return nil, fmt.Errorf("%w: field %s: bad minlen %q", ErrBadStruct, field.Name, value)
				}
				opts = append(opts, param.MinLen(n))
			case "maxlen":
				n, err := strconv.Atoi(value)
				if err != nil {
					return nil, fmt.Errorf("%w: field %s: bad maxlen %q", ErrBadStruct, field.Name, value)
				}
				opts = append(opts, param.MaxLen(n))
			case "choices":
				choices, err := parseChoices(value, kind)
				if err != nil {
					return nil, fmt.Errorf("%w: field %s: %v", ErrBadStruct, field.Name, err)
				}
				opts = append(opts, param.Choices(choices...))
			case "channels":
				types, err := parseChannelTypes(value)
				if err != nil {
					return nil, fmt.Errorf("%w: field %s: %v", ErrBadStruct, field.Name, err)
				}
				opts = append(opts, param.ChannelTypes(types...))
			case "autocomplete":
				opts = append(opts, param.Autocomplete())
			default:
				return nil, fmt.Errorf("%w: field %s: unknown tag key %q", ErrBadStruct, field.Name, key)
			}
		}
	}

	if optional {
		opts = append(opts, param.Optional())
	}

	description := field.Tag.Get("desc")
	if description == "" {
		return nil, fmt.Errorf("%w: field %s: missing desc tag", ErrBadStruct, field.Name)
	}

	d, err := param.New(name, kind, description, opts...)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", field.Name, err)
	}
	return d, nil
}

// inferKind maps a struct field type onto a parameter kind.
func inferKind(typ reflect.Type) (param.Kind, error) {
	if isEntityType(typ) {
		switch typ.Elem().Name() {
		case "User":
			return param.KindUser, nil
		case "Channel":
			return param.KindChannel, nil
		case "Role":
			return param.KindRole, nil
		case "MessageAttachment":
			return param.KindAttachment, nil
		}
	}
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	switch typ.Kind() {
	case reflect.String:
		return param.KindString, nil
	case reflect.Int, reflect.Int64:
		return param.KindInteger, nil
	case reflect.Float64:
		return param.KindNumber, nil
	case reflect.Bool:
		return param.KindBoolean, nil
	case reflect.Interface:
		// `any` fields carry users or roles; the tag must say which, or
		// mentionable to accept both.
		return param.KindMentionable, nil
	}
	return 0, fmt.Errorf("unsupported field type %s", typ)
}

// isEntityType reports whether typ is a pointer to a resolved Discord
// entity (user, channel, role, attachment).
func isEntityType(typ reflect.Type) bool {
	if typ.Kind() != reflect.Pointer || typ.Elem().Kind() != reflect.Struct {
		return false
	}
	if typ.Elem().PkgPath() != reflect.TypeOf(discordgo.User{}).PkgPath() {
		return false
	}
	switch typ.Elem().Name() {
	case "User", "Channel", "Role", "MessageAttachment":
		return true
	}
	return false
}

// parseChoices parses "a|b|c" or "Name:value|Name2:value2" into choices.
func parseChoices(list string, kind param.Kind) ([]param.Choice, error) {
	if list == "" {
		return nil, fmt.Errorf("empty choices")
	}
	var choices []param.Choice
	for _, item := range strings.Split(list, "|") {
		name, raw, named := strings.Cut(item, ":")
		if !named {
			raw = item
			name = item
		}
		value, err := coerceChoiceValue(raw, kind)
		if err != nil {
			return nil, err
		}
		choices = append(choices, param.C(name, value))
	}
	return choices, nil
}

func coerceChoiceValue(raw string, kind param.Kind) (any, error) {
	switch kind {
	case param.KindInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad integer choice %q", raw)
		}
		return n, nil
	case param.KindNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number choice %q", raw)
		}
		return f, nil
	default:
		return raw, nil
	}
}

// parseChannelTypes parses "text|voice|forum" into channel type filters.
func parseChannelTypes(list string) ([]discordgo.ChannelType, error) {
	if list == "" {
		return nil, fmt.Errorf("empty channel filter")
	}
	var types []discordgo.ChannelType
	for _, tag := range strings.Split(list, "|") {
		ct, err := param.ChannelTypeFromTag(tag)
		if err != nil {
			return nil, err
		}
		types = append(types, ct)
	}
	return types, nil
}
