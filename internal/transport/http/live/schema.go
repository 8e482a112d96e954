package livehttp

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// signalSchemaJSON is the contract for the webhook body. Unknown fields are
// tolerated so signal sources can attach extra metadata.
const signalSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["exchange", "market", "position"],
  "properties": {
    "exchange": {"type": "string", "minLength": 1},
    "market": {"type": "string", "minLength": 1},
    "position": {"type": "string", "minLength": 1},
    "sizeByLeverage": {"type": "number", "exclusiveMinimum": 0},
    "order": {"type": "string"},
    "price": {"type": "number"},
    "strategy": {"type": "string"}
  }
}`

var signalSchema = mustCompileSignalSchema()

func mustCompileSignalSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("signal.schema.json", strings.NewReader(signalSchemaJSON)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("signal.schema.json")
}
