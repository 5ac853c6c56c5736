package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressPatchJSONDistinguishesAbsentAndNull(t *testing.T) {
	var p ProgressPatch
	require.NoError(t, json.Unmarshal([]byte(`{"topic": null, "hint_stage": 2}`), &p))

	assert.True(t, p.Topic.Set)
	assert.True(t, p.Topic.Null)
	assert.True(t, p.HintStage.Set)
	assert.Equal(t, 2, p.HintStage.Value)
	assert.False(t, p.CurrentLevel.Set)
	assert.False(t, p.DiagnosticPassed.Set)
	assert.False(t, p.Empty())
}

func TestProgressPatchEmpty(t *testing.T) {
	var p ProgressPatch
	require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
	assert.True(t, p.Empty())
}

func TestOptMarshal(t *testing.T) {
	b, err := json.Marshal(struct {
		A Opt[int] `json:"a"`
		B Opt[int] `json:"b"`
		C Opt[int] `json:"c"`
	}{A: Some(4), B: Clear[int]()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":4,"b":null,"c":null}`, string(b))
}
