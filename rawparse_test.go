package main

import (
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONShapes(t *testing.T) {
	want := []RawItem{
		{Name: "Negroni", Requires: []string{"gin", "campari"}},
		{Name: "Martini", Requires: []string{"gin", "vermouth"}},
	}

	tests := []struct {
		name       string
		data       string
		wantBudget *int
	}{
		{
			name: "array",
			data: `[{"name":"Negroni","requires":["gin","campari"]},{"name":"Martini","requires":["gin","vermouth"]}]`,
		},
		{
			name: "map",
			data: `{"Negroni":["gin","campari"],"Martini":["gin","vermouth"]}`,
		},
		{
			name:       "envelope",
			data:       `{"budget": 3, "items": {"Negroni":["gin","campari"],"Martini":["gin","vermouth"]}}`,
			wantBudget: ptr(3),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := ParseJSON(tt.data, true, logr.Discard())
			require.NoError(t, err)
			assert.Equal(t, want, in.Items)
			assert.Equal(t, tt.wantBudget, in.Budget)
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestParseJSONLenientSkips(t *testing.T) {
	data := `[
		{"name": "A", "requires": ["x"]},
		{"name": "", "requires": ["y"]},
		{"requires": ["y"]},
		{"name": "B", "requires": "y"},
		{"name": "C", "requires": ["y", 3]},
		"D",
		{"name": "A", "requires": ["z"]},
		{"name": "E"}
	]`
	in, err := ParseJSON(data, false, logr.Discard())
	require.NoError(t, err)
	assert.Equal(t, []RawItem{
		{Name: "A", Requires: []string{"x"}},
		{Name: "E"},
	}, in.Items)
	assert.Equal(t, 6, in.Skipped)
}

func TestParseJSONStrict(t *testing.T) {
	_, err := ParseJSON(`[{"name":"A","requires":["x",""]}]`, true, logr.Discard())
	var mre *MalformedRecordError
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, 1, mre.Line)
	assert.Equal(t, "empty resource", mre.Reason)
}

func TestParseJSONDocumentErrors(t *testing.T) {
	for _, data := range []string{
		`{"items": [`,
		`"just a string"`,
		`{"budget": -1, "items": []}`,
		`{"budget": "ten", "items": []}`,
	} {
		_, err := ParseJSON(data, false, logr.Discard())
		assert.Error(t, err, data)
		assert.False(t, errors.Is(err, ErrMalformedRecord), data)
	}
}
