package config

import (
	"fmt"

	"cuelang.org/go/cue/cuecontext"
)

// grammarSchema constrains the optional top-level `grammar` key (a string
// of CUE source): a project may only override diagnostic severities by
// name, and only to one of the recognized levels.
const grammarSchema = `
{
	severities?: [string]: "error" | "warning" | "off"
}
`

// validateGrammarExtension compiles raw (the string value of the
// top-level `grammar` key, passed through unchanged by Load) as CUE and
// checks it against grammarSchema. A project pinning custom diagnostic severities
// gets schema validation for free instead of hand-rolled field checks.
func validateGrammarExtension(raw string) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(grammarSchema)
	if schema.Err() != nil {
		return fmt.Errorf("config: internal grammar schema: %w", schema.Err())
	}

	value := ctx.CompileString(raw)
	if value.Err() != nil {
		return fmt.Errorf("config: parse grammar block: %w", value.Err())
	}

	unified := schema.Unify(value)
	if err := unified.Validate(); err != nil {
		return fmt.Errorf("config: grammar block violates schema: %w", err)
	}
	return nil
}
