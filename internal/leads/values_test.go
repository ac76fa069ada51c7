package leads

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValues_AddMergesRepeatedKeys(t *testing.T) {
	var v Values
	v.Add("firstName", "Ada")
	v.Add("integrations", "HubSpot")
	v.Add("integrations", "Slack")
	v.Add("integrations", "Zapier")

	first, _ := v.Get("firstName")
	assert.False(t, first.IsList())
	assert.Equal(t, "Ada", first.String())

	integrations, ok := v.Get("integrations")
	require.True(t, ok)
	assert.True(t, integrations.IsList())
	assert.Equal(t, []string{"HubSpot", "Slack", "Zapier"}, integrations.Strings())
	assert.Equal(t, []string{"firstName", "integrations"}, v.Keys())
}

func TestValues_JSONKeepsKeyOrder(t *testing.T) {
	var v Values
	v.Add("zeta", "1")
	v.Add("alpha", "2")
	v.Add("mid", "a")
	v.Add("mid", "b")

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":"1","alpha":"2","mid":["a","b"]}`, string(data))
}

func TestValues_UnmarshalScalars(t *testing.T) {
	var v Values
	err := json.Unmarshal([]byte(`{"consent":true,"optIn":false,"seats":25,"note":null,"tags":["a",1,true]}`), &v)
	require.NoError(t, err)

	assert.Equal(t, "true", v.String("consent"))
	optIn, ok := v.Get("optIn")
	require.True(t, ok)
	assert.False(t, optIn.Truthy())
	assert.Equal(t, "25", v.String("seats"))
	_, ok = v.Get("note")
	assert.False(t, ok, "null members are dropped")

	tags, _ := v.Get("tags")
	assert.Equal(t, []string{"a", "1", "true"}, tags.Strings())
	assert.Equal(t, []string{"consent", "optIn", "seats", "tags"}, v.Keys())
}

func TestValues_UnmarshalRejectsNonObjects(t *testing.T) {
	for _, payload := range []string{`[]`, `"x"`, `42`} {
		var v Values
		err := json.Unmarshal([]byte(payload), &v)
		assert.True(t, errors.Is(err, ErrInvalidBody), payload)
	}

	var v Value
	err := v.UnmarshalJSON([]byte(`{"a":`))
	assert.True(t, errors.Is(err, ErrUnsupportedValue))
}

func TestValues_UnmarshalKeepsObjectsAsJSONText(t *testing.T) {
	var v Values
	err := json.Unmarshal([]byte(`{"utm":{ "source": "x" },"pairs":[[1,2],"a"]}`), &v)
	require.NoError(t, err)

	assert.Equal(t, `{"source":"x"}`, v.String("utm"))
	pairs, _ := v.Get("pairs")
	assert.Equal(t, []string{"[1,2]", "a"}, pairs.Strings())
}

func TestValues_UnmarshalNumericZeroIsFalsy(t *testing.T) {
	var v Values
	err := json.Unmarshal([]byte(`{"a":0,"b":-0,"c":0.0,"d":0.5,"e":10}`), &v)
	require.NoError(t, err)

	for _, key := range []string{"a", "b", "c"} {
		val, ok := v.Get(key)
		require.True(t, ok, key)
		assert.False(t, val.Truthy(), key)
	}
	assert.Equal(t, "0.5", v.String("d"))
	assert.Equal(t, "10", v.String("e"))
}

func TestValues_EmptyListIsNotTruthy(t *testing.T) {
	assert.False(t, List().Truthy())
	assert.True(t, List("x").Truthy())
	assert.False(t, Single("").Truthy())
	assert.True(t, Value{}.IsZero())
}

func TestValues_DeleteAndSet(t *testing.T) {
	var v Values
	v.Add("a", "1")
	v.Add("b", "2")
	v.Add("c", "3")
	v.Set("a", Single("one"))
	v.Delete("b")
	v.Delete("missing")

	assert.Equal(t, []string{"a", "c"}, v.Keys())
	assert.Equal(t, "one", v.String("a"))
	assert.Equal(t, 2, v.Len())
}

func TestDecodeSubmission_ExtractsType(t *testing.T) {
	sub, err := DecodeSubmission(strings.NewReader(`{"type":"pilot","firstName":"Ada","integrations":["Slack"],"consent":"on"}`))
	require.NoError(t, err)

	assert.Equal(t, TypePilot, sub.Type)
	_, hasType := sub.Fields.Get("type")
	assert.False(t, hasType)
	assert.Equal(t, "Ada", sub.FirstName())
	assert.Equal(t, []string{"Slack"}, sub.Integrations())
	assert.True(t, sub.Consent())
}

func TestSubmission_Consent(t *testing.T) {
	cases := map[string]bool{
		`{"consent":"on"}`:    true,
		`{"consent":true}`:    true,
		`{"consent":false}`:   false,
		`{"consent":"false"}`: false,
		`{"consent":"0"}`:     false,
		`{}`:                  false,
	}
	for payload, want := range cases {
		sub, err := DecodeSubmission(strings.NewReader(payload))
		require.NoError(t, err)
		assert.Equal(t, want, sub.Consent(), payload)
	}
}

func TestType_MetricLabel(t *testing.T) {
	assert.Equal(t, "demo", TypeDemo.MetricLabel())
	assert.Equal(t, "contact", TypeContact.MetricLabel())
	assert.Equal(t, "other", Type("webinar").MetricLabel())
	assert.Equal(t, "other", Type("").MetricLabel())
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+12024561111", NormalizePhone("(202) 456-1111"))
	assert.Equal(t, "+12024561111", NormalizePhone("+1 202 456 1111"))
	assert.Equal(t, "not a phone", NormalizePhone("  not a phone "))
	assert.Equal(t, "", NormalizePhone(""))
}
