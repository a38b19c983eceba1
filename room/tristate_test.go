package room

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReview_JSON(t *testing.T) {
	var r Review
	require.NoError(t, json.Unmarshal([]byte(`{"isValid":true,"isUnique":null}`), &r))
	assert.Equal(t, Review{IsValid: True, IsUnique: Unset}, r)

	var missing Review
	require.NoError(t, json.Unmarshal([]byte(`{"isValid":false}`), &missing))
	assert.Equal(t, Review{IsValid: False, IsUnique: Unset}, missing)

	out, err := json.Marshal(Review{IsValid: True, IsUnique: False})
	require.NoError(t, err)
	assert.JSONEq(t, `{"isValid":true,"isUnique":false}`, string(out))

	out, err = json.Marshal(Review{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"isValid":null,"isUnique":null}`, string(out))
}

func TestFlag_RejectsNonBoolean(t *testing.T) {
	var r Review
	assert.Error(t, json.Unmarshal([]byte(`{"isValid":"yes"}`), &r))
	assert.Error(t, json.Unmarshal([]byte(`{"isValid":1}`), &r))

	var f Flag
	err := f.UnmarshalJSON([]byte(`"yes"`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `got "yes"`)
}

func TestFlagOf(t *testing.T) {
	yes, no := true, false
	assert.Equal(t, True, FlagOf(&yes))
	assert.Equal(t, False, FlagOf(&no))
	assert.Equal(t, Unset, FlagOf(nil))
	assert.True(t, FlagOf(&yes).IsTrue())
	assert.False(t, Unset.IsTrue())
}
