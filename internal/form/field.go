// Package form models the lead-capture forms: fields, their inline
// validation state, and serialization to submitted values.
package form

import (
	"net/url"
	"regexp"
	"strings"
)

// FieldType mirrors the input types used on the marketing forms.
type FieldType string

const (
	Text     FieldType = "text"
	Email    FieldType = "email"
	Tel      FieldType = "tel"
	URL      FieldType = "url"
	Select   FieldType = "select"
	Textarea FieldType = "textarea"
	Checkbox FieldType = "checkbox"
	Date     FieldType = "date"
	Number   FieldType = "number"
)

// Inline error messages.
const (
	MsgRequired = "This field is required"
	MsgEmail    = "Please enter a valid email address"
	MsgPhone    = "Please enter a valid phone number"
	MsgURL      = "Please enter a valid URL"
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneSeparator = regexp.MustCompile(`[\s\-()]`)
	phonePattern   = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
)

// Field is one form control. Checkbox groups are several Fields sharing a
// Name; multi-selects carry their selection in Values.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	Value    string
	Values   []string
	Checked  bool

	// Invalid and Error are the rendered error state; Error is empty unless
	// Invalid is set.
	Invalid bool
	Error   string
}

// current returns the value the browser would submit for validation purposes.
func (f *Field) current() string {
	switch {
	case f.Type == Checkbox:
		if !f.Checked {
			return ""
		}
		if f.Value == "" {
			return "on"
		}
		return f.Value
	case len(f.Values) > 0:
		return f.Values[0]
	}
	return f.Value
}

// Validate applies the rule set to the trimmed value of f. Rules run in
// order and a later failure replaces an earlier message.
func Validate(f *Field) (bool, string) {
	value := strings.TrimSpace(f.current())
	ok, msg := true, ""

	if f.Required && value == "" {
		ok, msg = false, MsgRequired
	}
	if value == "" {
		return ok, msg
	}

	switch f.Type {
	case Email:
		if !emailPattern.MatchString(value) {
			ok, msg = false, MsgEmail
		}
	case Tel:
		if !phonePattern.MatchString(phoneSeparator.ReplaceAllString(value, "")) {
			ok, msg = false, MsgPhone
		}
	case URL:
		if !validURL(value) {
			ok, msg = false, MsgURL
		}
	}
	return ok, msg
}

func validURL(value string) bool {
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ftp", "ws", "wss":
		return u.Host != ""
	}
	return true
}

// Blur clears any existing error, validates, and attaches the error on failure.
func (f *Field) Blur() bool {
	f.ClearError()
	ok, msg := Validate(f)
	if !ok {
		f.Invalid = true
		f.Error = msg
	}
	return ok
}

// Input records an edit. The error marking is cleared without re-validating.
func (f *Field) Input(value string) {
	f.Value = value
	f.ClearError()
}

// ClearError removes the error marking and message.
func (f *Field) ClearError() {
	f.Invalid = false
	f.Error = ""
}
