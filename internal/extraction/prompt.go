package extraction

import (
	"fmt"
	"strings"
)

// BuildPrompt returns the instruction that asks the model to classify the OCR
// text and fill the field schema of the detected document type.
// The caller must reject empty text before calling it.
func BuildPrompt(rawText string) string {
	var b strings.Builder

	b.WriteString("\nYou are an academic document analyzer.\n\n")
	b.WriteString("Below is OCR extracted text:\n\n")
	b.WriteString(`"""` + rawText + `"""` + "\n\n")

	b.WriteString("Step 1: Identify document type:\n")
	for _, t := range DocumentTypes {
		fmt.Fprintf(&b, "- %s\n", t)
	}
	b.WriteString("\n")

	b.WriteString("Step 2: Extract structured fields based on type.\n\n")
	for _, schema := range Schemas {
		fmt.Fprintf(&b, "If %s:\n", schema.Type)
		writeSchemaShape(&b, schema)
		b.WriteString("\n")
	}

	b.WriteString("Return ONLY valid JSON in this exact format:\n\n")
	b.WriteString("{\n")
	b.WriteString("  \"document_type\": \"...\",\n")
	b.WriteString("  \"extracted_data\": { ... },\n")
	b.WriteString("  \"confidence\": 0.0\n")
	b.WriteString("}\n\n")

	b.WriteString("Rules:\n")
	b.WriteString("- Missing fields must be null\n")
	b.WriteString("- Dates must be YYYY-MM-DD\n")
	b.WriteString("- Confidence must be between 0 and 1\n")
	b.WriteString("- No explanations\n")

	return b.String()
}

// writeSchemaShape renders a schema as the JSON object the model should emit
func writeSchemaShape(b *strings.Builder, schema FieldSchema) {
	b.WriteString("{\n")
	for i, field := range schema.Fields {
		fmt.Fprintf(b, "  %q: %s", field.Name, placeholder(field.Kind))
		if i < len(schema.Fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")
}

func placeholder(kind FieldKind) string {
	switch kind {
	case DateField:
		return `"YYYY-MM-DD"`
	case NullField:
		return "null"
	default:
		return `""`
	}
}
