package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ag-ui/a2ui-go/pkg/core"
)

func TestValidate(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "begin rendering",
			raw:  `{"beginRendering": {"surfaceId": "s", "root": "r", "styles": {"font": "Inter"}}}`,
		},
		{
			name: "surface update",
			raw: `{"surfaceUpdate": {"surfaceId": "s", "components": [
				{"id": "t", "weight": 1, "component": {"Text": {"text": {"literalString": "Hi"}}}}
			]}}`,
		},
		{
			name: "data model update",
			raw: `{"dataModelUpdate": {"surfaceId": "s", "path": "/", "contents": [
				{"key": "user", "valueMap": [{"key": "name", "valueString": "Ada"}]},
				{"key": "tags", "valueArray": ["a", "b"]}
			]}}`,
		},
		{
			name: "delete surface",
			raw:  `{"deleteSurface": {"surfaceId": "s"}}`,
		},
		{
			name:    "unknown message",
			raw:     `{"bogus": {}}`,
			wantErr: true,
		},
		{
			name:    "two messages in one object",
			raw:     `{"deleteSurface": {"surfaceId": "a"}, "beginRendering": {"surfaceId": "b", "root": "r"}}`,
			wantErr: true,
		},
		{
			name:    "missing surface id",
			raw:     `{"beginRendering": {"root": "r"}}`,
			wantErr: true,
		},
		{
			name:    "empty surface id",
			raw:     `{"deleteSurface": {"surfaceId": ""}}`,
			wantErr: true,
		},
		{
			name:    "component with two variants",
			raw:     `{"surfaceUpdate": {"surfaceId": "s", "components": [{"id": "x", "component": {"Text": {}, "Row": {}}}]}}`,
			wantErr: true,
		},
		{
			name:    "entry with wrong value type",
			raw:     `{"dataModelUpdate": {"surfaceId": "s", "contents": [{"key": "n", "valueNumber": "five"}]}}`,
			wantErr: true,
		},
		{
			name:    "not JSON",
			raw:     `{`,
			wantErr: true,
		},
		{
			name:    "array",
			raw:     `[]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate([]byte(tt.raw))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var pe *core.ProtocolError
			assert.True(t, errors.As(err, &pe))
			assert.Equal(t, "validate", pe.Operation)
		})
	}
}

func TestValidateNamesLocation(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	err = v.Validate([]byte(`{"dataModelUpdate": {"surfaceId": "s", "contents": [{"key": "n", "valueNumber": "five"}]}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/dataModelUpdate/contents/0/valueNumber")
}
