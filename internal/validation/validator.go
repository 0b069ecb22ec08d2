package validation

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ag-ui/a2ui-go/pkg/core"
	"github.com/ag-ui/a2ui-go/pkg/encoding"
)

const schemaURL = "https://a2ui.schemas.local/message.schema.json"

//go:embed message.schema.json
var messageSchema []byte

// Validator checks raw messages against the compiled message schema.
type Validator struct {
	schema *jsonschema.Schema
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, bytes.NewReader(messageSchema)); err != nil {
		return nil, fmt.Errorf("message schema load failed: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("message schema compile failed: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// Validate checks one raw message. Failures are *core.ProtocolError.
func (v *Validator) Validate(raw []byte) error {
	var doc any
	if err := encoding.Unmarshal(raw, &doc); err != nil {
		return &core.ProtocolError{Operation: "validate", Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := v.schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			err = errors.New(leafMessage(ve))
		}
		return &core.ProtocolError{Operation: "validate", Err: err}
	}
	return nil
}

// leafMessage reports the deepest cause, which names the offending location.
func leafMessage(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	if ve.InstanceLocation == "" {
		return ve.Message
	}
	return fmt.Sprintf("%s: %s", ve.InstanceLocation, ve.Message)
}
