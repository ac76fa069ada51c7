package form

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/revsnap-web/internal/leads"
)

func TestForm_ValidateAllShowsEveryError(t *testing.T) {
	f := DemoForm()
	f.Field(leads.FieldEmail).Value = "nope"
	f.Field(leads.FieldWebsite).Value = "revsnap"

	assert.False(t, f.ValidateAll())
	assert.Equal(t, map[string]string{
		leads.FieldFirstName: MsgRequired,
		leads.FieldLastName:  MsgRequired,
		leads.FieldEmail:     MsgEmail,
		leads.FieldWebsite:   MsgURL,
	}, f.Errors())
}

func TestForm_ValidateAllIdempotent(t *testing.T) {
	f := ContactForm()
	f.Field(leads.FieldFirstName).Value = "Ada"
	f.Field(leads.FieldLastName).Value = "Lovelace"
	f.Field(leads.FieldEmail).Value = "ada@example.com"

	for i := 0; i < 3; i++ {
		require.True(t, f.ValidateAll())
		require.Empty(t, f.Errors())
	}
}

func TestForm_ValuesMergesCheckboxGroups(t *testing.T) {
	f := PilotForm("HubSpot", "Salesforce", "Slack")
	f.Field(leads.FieldFirstName).Value = "Ada"
	f.Check(leads.FieldIntegrations, "HubSpot")
	f.Check(leads.FieldIntegrations, "Slack")
	f.Check(leads.FieldConsent, "")

	values := f.Values()
	integrations, ok := values.Get(leads.FieldIntegrations)
	require.True(t, ok)
	assert.Equal(t, []string{"HubSpot", "Slack"}, integrations.Strings())
	assert.Equal(t, "on", values.String(leads.FieldConsent))
	assert.Equal(t, "Ada", values.String(leads.FieldFirstName))

	lastName, ok := values.Get(leads.FieldLastName)
	require.True(t, ok, "empty inputs are still submitted")
	assert.Equal(t, "", lastName.String())
}

func TestForm_ValuesSingleCheckedGroupStaysScalar(t *testing.T) {
	f := PilotForm("HubSpot", "Slack")
	f.Check(leads.FieldIntegrations, "Slack")

	data, err := json.Marshal(f.Values())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"integrations":"Slack"`)
}

func TestForm_ValuesSkipsUncheckedAndUnnamed(t *testing.T) {
	f := New("x-form",
		&Field{Name: "consent", Type: Checkbox},
		&Field{Type: Text, Value: "ignored"},
		&Field{Name: "tools", Type: Select, Values: []string{"a", "b"}},
	)
	values := f.Values()
	assert.Equal(t, []string{"tools"}, values.Keys())
	tools, _ := values.Get("tools")
	assert.Equal(t, []string{"a", "b"}, tools.Strings())
}

func TestForm_ResetRestoresInitialState(t *testing.T) {
	f := New("contact-form",
		&Field{Name: "firstName", Type: Text, Required: true},
		&Field{Name: "revenue", Type: Select, Value: "under-10k"},
		&Field{Name: "consent", Type: Checkbox},
	)
	f.ValidateAll()
	f.Field("firstName").Value = "Ada"
	f.Field("revenue").Value = "over-1m"
	f.Check("consent", "")

	f.Reset()

	assert.Equal(t, "", f.Field("firstName").Value)
	assert.Equal(t, "under-10k", f.Field("revenue").Value)
	assert.False(t, f.Field("consent").Checked)
	assert.Empty(t, f.Errors())
}

func TestForm_TypeAndModal(t *testing.T) {
	assert.Equal(t, "demo", DemoForm().Type())
	assert.Equal(t, "demo-modal", DemoForm().ModalID)
	assert.Equal(t, "", ContactForm().ModalID)
	assert.Equal(t, "pilot-modal", ForType(leads.TypePilot).ModalID)
	assert.Equal(t, "contact-form", ForType("other").ID)
}
