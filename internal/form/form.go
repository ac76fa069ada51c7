package form

import (
	"strings"

	"github.com/wolfman30/revsnap-web/internal/leads"
)

// DefaultSubmitLabel is the submit button text when none is given.
const DefaultSubmitLabel = "Submit"

// SubmitButton is the state of the form's submit control.
type SubmitButton struct {
	Label    string
	Disabled bool
	Loading  bool
}

type snapshot struct {
	value   string
	values  []string
	checked bool
}

// Form is an ordered set of fields. ModalID is empty when the form is not
// rendered inside a modal.
type Form struct {
	ID      string
	ModalID string
	Fields  []*Field
	Submit  SubmitButton

	initial []snapshot
}

// New creates a form and remembers the fields' current values for Reset.
func New(id string, fields ...*Field) *Form {
	f := &Form{
		ID:     id,
		Fields: fields,
		Submit: SubmitButton{Label: DefaultSubmitLabel},
	}
	f.initial = make([]snapshot, len(fields))
	for i, field := range fields {
		f.initial[i] = snapshot{
			value:   field.Value,
			values:  cloneStrings(field.Values),
			checked: field.Checked,
		}
	}
	return f
}

// InModal marks the form as rendered in the modal with the given id.
func (f *Form) InModal(modalID string) *Form {
	f.ModalID = modalID
	return f
}

// Type is the form id without its "-form" suffix.
func (f *Form) Type() string {
	return strings.TrimSuffix(f.ID, "-form")
}

// Field returns the first field named name, or nil.
func (f *Form) Field(name string) *Field {
	for _, field := range f.Fields {
		if field.Name == name {
			return field
		}
	}
	return nil
}

// ValidateAll blurs every field, so each invalid field shows its error, and
// reports whether all passed.
func (f *Form) ValidateAll() bool {
	valid := true
	for _, field := range f.Fields {
		if !field.Blur() {
			valid = false
		}
	}
	return valid
}

// Errors returns the inline error of every invalid field by name.
func (f *Form) Errors() map[string]string {
	out := make(map[string]string)
	for _, field := range f.Fields {
		if field.Invalid {
			if _, seen := out[field.Name]; !seen {
				out[field.Name] = field.Error
			}
		}
	}
	return out
}

// Values serializes the form the way the browser does: unchecked checkboxes
// are skipped, multi-selects contribute each selection, and repeated names
// merge into a list.
func (f *Form) Values() leads.Values {
	var out leads.Values
	for _, field := range f.Fields {
		if field.Name == "" {
			continue
		}
		switch {
		case field.Type == Checkbox:
			if field.Checked {
				out.Add(field.Name, field.current())
			}
		case field.Values != nil:
			for _, v := range field.Values {
				out.Add(field.Name, v)
			}
		default:
			out.Add(field.Name, field.Value)
		}
	}
	return out
}

// Reset restores initial values and clears every error.
func (f *Form) Reset() {
	for i, field := range f.Fields {
		if i < len(f.initial) {
			field.Value = f.initial[i].value
			field.Values = cloneStrings(f.initial[i].values)
			field.Checked = f.initial[i].checked
		}
		field.ClearError()
	}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}
