package category

import (
	"net/http"

	"marketplace-portal/model"
)

var ErrUnknownCategory = notFound("category not found")

type notFound string

func (e notFound) Error() string   { return string(e) }
func (e notFound) HTTPStatus() int { return http.StatusNotFound }

var ErrUnknownExtraField = badInput("unknown extra field")

type badInput string

func (e badInput) Error() string   { return string(e) }
func (e badInput) HTTPStatus() int { return http.StatusUnprocessableEntity }

// OptionalFields is the fixed catalogue of extra fields a category can ask
// for on its products.
var OptionalFields = []model.ExtraField{
	{Key: "serviceName", Label: "Service Name", Type: "text"},
	{Key: "colorCount", Label: "Number of Colors", Type: "number"},
	{Key: "paperSize", Label: "Paper Size", Type: "text"},
	{Key: "dimensions", Label: "Dimensions", Type: "text"},
	{Key: "note", Label: "Note", Type: "textarea"},
}

// Selection is the checkbox state of the extra-field editor.
type Selection struct {
	Checked  map[string]bool `json:"checked"`
	Required map[string]bool `json:"required"`
}

// Schema rebuilds the extra-field schema from the checkboxes. Unchecked
// fields are left out entirely; a required flag on an unchecked field is
// ignored.
func (s Selection) Schema() ([]model.ExtraField, error) {
	for key := range s.Checked {
		if !known(key) {
			return nil, ErrUnknownExtraField
		}
	}

	out := []model.ExtraField{}
	for _, f := range OptionalFields {
		if !s.Checked[f.Key] {
			continue
		}
		f.Required = s.Required[f.Key]
		out = append(out, f)
	}
	return out, nil
}

// SelectionOf returns the checkbox state for an existing schema. Keys that
// are not in the catalogue are dropped.
func SelectionOf(fields []model.ExtraField) Selection {
	s := Selection{Checked: map[string]bool{}, Required: map[string]bool{}}
	for _, f := range fields {
		if !known(f.Key) {
			continue
		}
		s.Checked[f.Key] = true
		if f.Required {
			s.Required[f.Key] = true
		}
	}
	return s
}

func known(key string) bool {
	for _, f := range OptionalFields {
		if f.Key == key {
			return true
		}
	}
	return false
}
