// internal/catalog/loader.go
package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/FairForge/wardkeeper/internal/fault"
	"github.com/FairForge/wardkeeper/internal/ledger"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// catalogSchema constrains authored catalog documents before decoding.
const catalogSchema = `{
	"type": "object",
	"required": ["strategies"],
	"additionalProperties": false,
	"properties": {
		"strategies": {
			"type": "object",
			"additionalProperties": {
				"type": "array",
				"minItems": 1,
				"items": {
					"type": "object",
					"required": ["name", "success_probability"],
					"additionalProperties": false,
					"properties": {
						"name": {"type": "string", "minLength": 1},
						"success_probability": {"type": "number", "minimum": 0, "maximum": 1},
						"cost": {
							"type": "object",
							"additionalProperties": {"type": "integer", "minimum": 0}
						},
						"side_effects": {"type": "array", "items": {"type": "string"}},
						"fallback": {"type": "string"}
					}
				}
			}
		}
	}
}`

type catalogDoc struct {
	Strategies map[string][]strategyDoc `yaml:"strategies"`
}

type strategyDoc struct {
	Name               string           `yaml:"name"`
	SuccessProbability float64          `yaml:"success_probability"`
	Cost               map[string]int64 `yaml:"cost"`
	SideEffects        []string         `yaml:"side_effects"`
	Fallback           string           `yaml:"fallback"`
}

// Load reads a YAML catalog file, overlays it on the built-in defaults and
// validates the result.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML catalog document. Authored chains replace the default
// chain for their category; categories the document does not mention keep
// their defaults, so a partial document still yields a total catalog.
func Parse(data []byte) (*Catalog, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := validateSchema(generic); err != nil {
		return nil, err
	}

	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	chains := defaultChains()
	for name, entries := range doc.Strategies {
		category, err := fault.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		chain := make([]Strategy, len(entries))
		for i, e := range entries {
			chain[i] = Strategy{
				Name:               e.Name,
				SuccessProbability: e.SuccessProbability,
				Cost:               ledger.Cost(e.Cost),
				SideEffects:        e.SideEffects,
				Fallback:           e.Fallback,
			}
		}
		chains[category] = chain
	}
	return New(chains)
}

func validateSchema(doc any) error {
	schemaLoader := gojsonschema.NewStringLoader(catalogSchema)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		errors := make([]string, 0, len(result.Errors()))
		for _, err := range result.Errors() {
			errors = append(errors, err.String())
		}
		return fmt.Errorf("document invalid: %s", strings.Join(errors, "; "))
	}
	return nil
}
