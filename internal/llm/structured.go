package llm

import (
	"github.com/google/generative-ai-go/genai"
)

// SchemaType is the JSON type of a schema node
type SchemaType string

// Schema types understood by the providers
const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeNumber  SchemaType = "number"
	TypeInteger SchemaType = "integer"
	TypeBoolean SchemaType = "boolean"
)

// Schema is a provider-neutral description of the expected response shape.
type Schema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*Schema
	Items       *Schema
	Required    []string
}

// Blob is inline binary data sent with a request
type Blob struct {
	MIMEType string
	Data     []byte
}

// StructuredRequest describes a single schema-constrained generation call.
type StructuredRequest struct {
	Tier              ModelTier
	SystemInstruction string
	// Parts are sent as separate text parts in order, followed by Blobs.
	Parts       []string
	Blobs       []Blob
	Temperature *float32
	Schema      *Schema
}

func configureStructured(model *genai.GenerativeModel, req *StructuredRequest) {
	if req.SystemInstruction != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemInstruction)},
		}
	}
	temperature := DefaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	model.SetTemperature(temperature)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = toGenaiSchema(req.Schema)
}

func structuredParts(req *StructuredRequest) []genai.Part {
	parts := make([]genai.Part, 0, len(req.Parts)+len(req.Blobs))
	for _, text := range req.Parts {
		parts = append(parts, genai.Text(text))
	}
	for _, blob := range req.Blobs {
		parts = append(parts, genai.Blob{MIMEType: blob.MIMEType, Data: blob.Data})
	}
	return parts
}

func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        toGenaiType(s.Type),
		Description: s.Description,
		Items:       toGenaiSchema(s.Items),
	}
	if len(s.Required) > 0 {
		out.Required = append([]string(nil), s.Required...)
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}

func toGenaiType(t SchemaType) genai.Type {
	switch t {
	case TypeObject:
		return genai.TypeObject
	case TypeArray:
		return genai.TypeArray
	case TypeString:
		return genai.TypeString
	case TypeNumber:
		return genai.TypeNumber
	case TypeInteger:
		return genai.TypeInteger
	case TypeBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeUnspecified
	}
}
