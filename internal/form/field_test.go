package form

import (
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		field   Field
		wantOK  bool
		wantMsg string
	}{
		{"required empty", Field{Type: Text, Required: true}, false, MsgRequired},
		{"required whitespace", Field{Type: Text, Required: true, Value: "   "}, false, MsgRequired},
		{"required present", Field{Type: Text, Required: true, Value: "Ada"}, true, ""},
		{"optional empty email", Field{Type: Email}, true, ""},
		{"email ok", Field{Type: Email, Value: "a@b.co"}, true, ""},
		{"email trimmed", Field{Type: Email, Value: "  a@b.co "}, true, ""},
		{"email no tld", Field{Type: Email, Value: "a@b"}, false, MsgEmail},
		{"email no at", Field{Type: Email, Value: "ab.com"}, false, MsgEmail},
		{"email space", Field{Type: Email, Value: "a b@c.com"}, false, MsgEmail},
		{"required bad email", Field{Type: Email, Required: true, Value: "nope"}, false, MsgEmail},
		{"phone e164", Field{Type: Tel, Value: "+14155551234"}, true, ""},
		{"phone formatted", Field{Type: Tel, Value: "(415) 555-1234"}, true, ""},
		{"phone leading zero", Field{Type: Tel, Value: "0123"}, false, MsgPhone},
		{"phone letters", Field{Type: Tel, Value: "abc"}, false, MsgPhone},
		{"phone too long", Field{Type: Tel, Value: "+12345678901234567"}, false, MsgPhone},
		{"url ok", Field{Type: URL, Value: "https://revsnap.ai/pricing"}, true, ""},
		{"url mailto", Field{Type: URL, Value: "mailto:hi@revsnap.ai"}, true, ""},
		{"url bare domain", Field{Type: URL, Value: "revsnap.ai"}, false, MsgURL},
		{"url no host", Field{Type: URL, Value: "https://"}, false, MsgURL},
		{"optional empty url", Field{Type: URL}, true, ""},
		{"required unchecked box", Field{Type: Checkbox, Required: true, Value: "yes"}, false, MsgRequired},
		{"required checked box", Field{Type: Checkbox, Required: true, Checked: true}, true, ""},
		{"required multi select", Field{Type: Select, Required: true, Values: []string{}}, false, MsgRequired},
		{"multi select chosen", Field{Type: Select, Required: true, Values: []string{"HubSpot"}}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field := tt.field
			ok, msg := Validate(&field)
			if ok != tt.wantOK || msg != tt.wantMsg {
				t.Errorf("Validate() = (%v, %q), want (%v, %q)", ok, msg, tt.wantOK, tt.wantMsg)
			}
		})
	}
}

func TestField_BlurAttachesSingleError(t *testing.T) {
	f := &Field{Name: "email", Type: Email, Required: true, Value: "a@b"}

	if f.Blur() {
		t.Fatal("expected blur to fail")
	}
	if !f.Invalid || f.Error != MsgEmail {
		t.Fatalf("unexpected error state %+v", f)
	}

	f.Value = ""
	f.Blur()
	if f.Error != MsgRequired {
		t.Fatalf("expected the previous error to be replaced, got %q", f.Error)
	}

	f.Value = "a@b.co"
	if !f.Blur() {
		t.Fatal("expected blur to pass")
	}
	if f.Invalid || f.Error != "" {
		t.Fatalf("expected error to be cleared, got %+v", f)
	}
}

func TestField_InputClearsWithoutRevalidating(t *testing.T) {
	f := &Field{Name: "phone", Type: Tel, Value: "abc"}
	f.Blur()

	f.Input("still bad")
	if f.Invalid || f.Error != "" {
		t.Fatalf("input should clear the error, got %+v", f)
	}
	if f.Value != "still bad" {
		t.Fatalf("input should set the value, got %q", f.Value)
	}
}
