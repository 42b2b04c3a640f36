package tx

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultCategories(t *testing.T) {
	for r, info := range resultInfos {
		t.Run(info.token, func(t *testing.T) {
			assert.Equal(t, info.token, r.String())
			back, ok := ResultFromString(info.token)
			require.True(t, ok)
			assert.Equal(t, r, back)

			var prefix string
			switch {
			case r.IsSuccess():
				prefix = "tes"
			case r.IsTec():
				prefix = "tec"
			case r.IsTef():
				prefix = "tef"
			case r.IsTem():
				prefix = "tem"
			}
			assert.Equal(t, info.token[:3], prefix)
		})
	}
}

func TestResultJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		R Result `json:"r"`
	}{TecALREADY_CLAIMED})
	require.NoError(t, err)
	assert.JSONEq(t, `{"r":"tecALREADY_CLAIMED"}`, string(data))

	var out struct {
		R Result `json:"r"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, TecALREADY_CLAIMED, out.R)

	assert.Error(t, json.Unmarshal([]byte(`{"r":"tecNOPE"}`), &out))
	assert.Equal(t, "Unknown(7)", Result(7).String())
	assert.False(t, TecUNAUTHORIZED.IsApplied())
}
