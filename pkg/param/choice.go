package param

import "fmt"

// Choice is one permitted value of an enumerated parameter. Name is what the
// user sees; Value is what the handler receives.
type Choice struct {
	Name  string
	Value any
}

// C builds a named choice.
func C(name string, value any) Choice {
	return Choice{Name: name, Value: value}
}

// Plain builds a choice whose display name is the value itself, for the
// common case where the two coincide.
func Plain(value any) Choice {
	return Choice{Name: fmt.Sprint(value), Value: value}
}

// PlainStrings builds plain choices from a list of strings.
func PlainStrings(values ...string) []Choice {
	choices := make([]Choice, 0, len(values))
	for _, v := range values {
		choices = append(choices, Plain(v))
	}
	return choices
}

// validate checks the choice name and coerces the value against the
// parameter kind. Integer choices tolerate any Go integer type; Number
// choices tolerate integers as well as floats.
func (c *Choice) validate(kind Kind) error {
	if l := len(c.Name); l == 0 || l > MaxChoiceNameLength {
		return fmt.Errorf("%w: choice name must be 1-%d chars, got %d", ErrInvalid, MaxChoiceNameLength, l)
	}
	switch kind {
	case KindString:
		if _, ok := c.Value.(string); !ok {
			return fmt.Errorf("%w: choice %q: str parameter needs a string value, got %T", ErrInvalid, c.Name, c.Value)
		}
	case KindInteger:
		switch v := c.Value.(type) {
		case int:
			c.Value = int64(v)
		case int32:
			c.Value = int64(v)
		case int64:
		default:
			return fmt.Errorf("%w: choice %q: int parameter needs an integer value, got %T", ErrInvalid, c.Name, c.Value)
		}
	case KindNumber:
		switch v := c.Value.(type) {
		case int:
			c.Value = float64(v)
		case int64:
			c.Value = float64(v)
		case float32:
			c.Value = float64(v)
		case float64:
		default:
			return fmt.Errorf("%w: choice %q: number parameter needs a numeric value, got %T", ErrInvalid, c.Name, c.Value)
		}
	}
	return nil
}
