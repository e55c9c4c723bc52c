package api

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed todo.schema.json
var todoSchemaJSON string

const schemaURL = "todo.schema.json"

var todoSchema, todoListSchema = mustCompileSchemas()

func mustCompileSchemas() (*jsonschema.Schema, *jsonschema.Schema) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(todoSchemaJSON)); err != nil {
		panic(fmt.Sprintf("add schema resource: %v", err))
	}
	return compiler.MustCompile(schemaURL + "#/$defs/todo"), compiler.MustCompile(schemaURL + "#/$defs/todos")
}

// decodeValidated checks body against schema before decoding it into v.
func decodeValidated(body []byte, schema *jsonschema.Schema, v any) error {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("unexpected response shape: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
