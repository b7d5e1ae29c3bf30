package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	bareObject  = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractJSON decodes a JSON object from a model completion. Models often wrap
// the object in prose or markdown fences even when told not to, so decoding is
// attempted in order: the raw text, the contents of a fenced code block, and
// finally the widest brace-delimited span.
func ExtractJSON(raw string, v interface{}) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("empty completion")
	}

	candidates := []string{raw}
	if match := fencedBlock.FindStringSubmatch(raw); match != nil {
		candidates = append(candidates, match[1])
	}
	if span := bareObject.FindString(raw); span != "" && span != raw {
		candidates = append(candidates, span)
	}

	var lastErr error
	for _, candidate := range candidates {
		if err := json.Unmarshal([]byte(candidate), v); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	return fmt.Errorf("no JSON object found in completion: %w", lastErr)
}

// ExtractValidatedJSON decodes like ExtractJSON but checks the object against
// the supplied schema before binding it to v.
func ExtractValidatedJSON(raw string, schema *jsonschema.Schema, v interface{}) error {
	var generic interface{}
	if err := ExtractJSON(raw, &generic); err != nil {
		return err
	}

	if schema != nil {
		if err := schema.Validate(generic); err != nil {
			return fmt.Errorf("completion failed schema validation: %w", err)
		}
	}

	payload, err := json.Marshal(generic)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, v)
}

// MustSchema compiles an embedded JSON schema document. It panics on invalid
// schemas, which are programmer errors.
func MustSchema(name, document string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(document)); err != nil {
		panic(err)
	}
	return compiler.MustCompile(name)
}
