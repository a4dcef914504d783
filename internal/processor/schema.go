package processor

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// The fusion service versions its response contract; these schemas pin the
// shape this client understands. Bump the embedded schema alongside the
// service's announced contract version.

//go:embed schema/create_response.schema.json
var createResponseSchema []byte

//go:embed schema/status_response.schema.json
var statusResponseSchema []byte

var (
	compiledCreateSchema = mustCompile("create_response.schema.json", createResponseSchema)
	compiledStatusSchema = mustCompile("status_response.schema.json", statusResponseSchema)
)

func mustCompile(name string, raw []byte) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		panic(fmt.Sprintf("add schema resource %s: %v", name, err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return schema
}

func validatePayload(schema *jsonschema.Schema, raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("payload does not match contract: %w", err)
	}
	return nil
}

func validateCreatePayload(raw []byte) error {
	return validatePayload(compiledCreateSchema, raw)
}

func validateStatusPayload(raw []byte) error {
	return validatePayload(compiledStatusSchema, raw)
}
