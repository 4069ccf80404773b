package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cards-extractor/constants"
)

func fullCard() map[string]string {
	m := map[string]string{}
	for _, f := range constants.Fields() {
		m[string(f)] = "x"
	}
	m["phone"] = "+15551234567"
	m["mobile"] = "+"
	return m
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestValidateCardJSON(t *testing.T) {
	require.NoError(t, ValidateCardJSON(mustMarshal(t, fullCard())))

	withSentinel := fullCard()
	withSentinel["phone"] = "NA"
	require.NoError(t, ValidateCardJSON(mustMarshal(t, withSentinel)))

	missing := fullCard()
	delete(missing, "country")
	require.Error(t, ValidateCardJSON(mustMarshal(t, missing)))

	extra := fullCard()
	extra["fax"] = "+1"
	require.Error(t, ValidateCardJSON(mustMarshal(t, extra)))

	arabicDigits := fullCard()
	arabicDigits["mobile"] = "+٠١٢٣"
	require.NoError(t, ValidateCardJSON(mustMarshal(t, arabicDigits)))

	notString := map[string]any{}
	for k, v := range fullCard() {
		notString[k] = v
	}
	notString["phone"] = 15551234567
	require.Error(t, ValidateCardJSON(mustMarshal(t, notString)))

	require.Error(t, ValidateCardJSON([]byte("not json")))
}

func TestValidateJSONAgainstSchema(t *testing.T) {
	schema := map[string]any{
		"type":     "object",
		"required": []string{"a"},
	}
	require.NoError(t, ValidateJSONAgainstSchema(schema, []byte(`{"a":1}`)))
	require.Error(t, ValidateJSONAgainstSchema(schema, []byte(`{"b":1}`)))
}
