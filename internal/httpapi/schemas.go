package httpapi

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Request schemas. Compiled once at startup; a schema that fails to compile
// is a programming error, hence the panic in mustCompile.

const chatRequestSchema = `{
	"type": "object",
	"properties": {
		"message": {"type": "string", "minLength": 1},
		"cartId": {"type": "string"},
		"history": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"role": {"type": "string", "enum": ["user", "assistant"]},
					"text": {"type": "string"}
				},
				"required": ["role", "text"]
			}
		}
	},
	"required": ["message"]
}`

const addToCartRequestSchema = `{
	"type": "object",
	"properties": {
		"cartId": {"type": "string"},
		"variantId": {"type": "string", "minLength": 1},
		"quantity": {"type": "integer", "minimum": 1}
	},
	"required": ["variantId"]
}`

const bundleRequestSchema = `{
	"type": "object",
	"properties": {
		"room": {"type": "string", "minLength": 1},
		"anchorProduct": {"type": "string"},
		"budgetRange": {"type": "string", "minLength": 1},
		"budgetCustom": {"type": "number", "minimum": 0},
		"style": {"type": "string", "minLength": 1},
		"colorTone": {"type": "string"},
		"materialPreference": {"type": "string"},
		"hasChildren": {"type": "boolean"},
		"hasPets": {"type": "boolean"},
		"selectedElements": {"type": "array", "items": {"type": "string"}},
		"elementPreferences": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"element": {"type": "string"},
					"style": {"type": "string"},
					"material": {"type": "string"}
				},
				"required": ["element"]
			}
		},
		"dimensionsKnown": {"type": "boolean"},
		"widthCm": {"type": "number", "minimum": 0},
		"lengthCm": {"type": "number", "minimum": 0}
	},
	"required": ["room", "budgetRange", "style"]
}`

const recommendRequestSchema = `{
	"type": "object",
	"properties": {
		"query": {"type": "string"},
		"budgetMax": {"type": "number", "minimum": 0},
		"productTypes": {"type": "array", "items": {"type": "string"}},
		"tags": {"type": "array", "items": {"type": "string"}},
		"limit": {"type": "integer", "minimum": 1, "maximum": 12}
	}
}`

var (
	chatSchema      = mustCompile(chatRequestSchema)
	addToCartSchema = mustCompile(addToCartRequestSchema)
	bundleSchema    = mustCompile(bundleRequestSchema)
	recommendSchema = mustCompile(recommendRequestSchema)
)

func mustCompile(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid request schema: %v", err))
	}
	return schema
}

// validateBody checks a raw JSON body against a compiled schema and renders
// the violations as one message.
func validateBody(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if result.Valid() {
		return nil
	}
	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return fmt.Errorf("%s", strings.Join(violations, "; "))
}
