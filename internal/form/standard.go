package form

import "github.com/wolfman30/revsnap-web/internal/leads"

func contactFields() []*Field {
	return []*Field{
		{Name: leads.FieldFirstName, Type: Text, Required: true},
		{Name: leads.FieldLastName, Type: Text, Required: true},
		{Name: leads.FieldEmail, Type: Email, Required: true},
		{Name: leads.FieldCompany, Type: Text},
		{Name: leads.FieldPhone, Type: Tel},
	}
}

// DemoForm is the "book a demo" form shown in the demo modal.
func DemoForm() *Form {
	fields := append(contactFields(),
		&Field{Name: leads.FieldWebsite, Type: URL},
		&Field{Name: leads.FieldRevenue, Type: Select},
		&Field{Name: leads.FieldUseCase, Type: Textarea},
		&Field{Name: leads.FieldConsent, Type: Checkbox},
	)
	return New("demo-form", fields...).InModal("demo-modal")
}

// PilotForm is the pilot sign-up form shown in the pilot modal. Each
// integration option becomes one checkbox in the integrations group.
func PilotForm(integrations ...string) *Form {
	fields := append(contactFields(),
		&Field{Name: leads.FieldWebsite, Type: URL},
		&Field{Name: leads.FieldRevenue, Type: Select},
	)
	for _, option := range integrations {
		fields = append(fields, &Field{Name: leads.FieldIntegrations, Type: Checkbox, Value: option})
	}
	fields = append(fields,
		&Field{Name: leads.FieldEstimates, Type: Number},
		&Field{Name: leads.FieldStartDate, Type: Date},
		&Field{Name: leads.FieldConsent, Type: Checkbox, Required: true},
	)
	return New("pilot-form", fields...).InModal("pilot-modal")
}

// ContactForm is the inline contact form; it is not in a modal.
func ContactForm() *Form {
	fields := append(contactFields(), &Field{Name: leads.FieldUseCase, Type: Textarea})
	return New("contact-form", fields...)
}

// ForType returns the standard form for a lead type, defaulting to contact.
func ForType(t leads.Type) *Form {
	switch t {
	case leads.TypeDemo:
		return DemoForm()
	case leads.TypePilot:
		return PilotForm()
	}
	return ContactForm()
}

// Check ticks the checkbox named name whose value is value.
func (f *Form) Check(name, value string) bool {
	for _, field := range f.Fields {
		if field.Name == name && field.Type == Checkbox && (value == "" || field.Value == value) {
			field.Checked = true
			return true
		}
	}
	return false
}
