package form

import (
	"strings"

	"marketplace-portal/model"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Fields is the raw state of a modal form, keyed by field name. Values are
// whatever the shell sent: strings, numbers, booleans, lists or attachments.
type Fields map[string]any

func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

func (f Fields) String(key string) string {
	return strings.TrimSpace(cast.ToString(f[key]))
}

func (f Fields) ID(key string) model.ID {
	return model.ID(f.String(key))
}

func (f Fields) Bool(key string) bool {
	return cast.ToBool(f[key])
}

// Int returns 0 for empty or unparsable values; Submit has already rejected
// unparsable numeric fields by the time Build runs.
func (f Fields) Int(key string) int {
	return cast.ToInt(f[key])
}

func (f Fields) Decimal(key string) decimal.Decimal {
	switch v := f[key].(type) {
	case decimal.Decimal:
		return v
	case nil:
		return decimal.Zero
	}
	d, err := decimal.NewFromString(f.String(key))
	if err != nil {
		return decimal.NewFromFloat(cast.ToFloat64(f[key]))
	}
	return d
}

// Strings accepts a list or a comma separated string.
func (f Fields) Strings(key string) []string {
	var raw []string
	switch v := f[key].(type) {
	case nil:
		return []string{}
	case string:
		raw = strings.Split(v, ",")
	default:
		raw = cast.ToStringSlice(v)
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// blank reports whether the field has no usable value.
func (f Fields) blank(key string) bool {
	v, ok := f[key]
	if !ok || v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
