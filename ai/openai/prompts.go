package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/docmind/core"
)

const analysisResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "executive_summary": {"type": "string"},
    "detailed_summary": {"type": "string"},
    "key_points": {"type": "array", "items": {"type": "string"}},
    "key_insights": {"type": "array", "items": {"type": "string"}},
    "category": {"type": "string"},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "entities": {
      "type": "object",
      "properties": {
        "people": {"type": "array", "items": {"type": "string"}},
        "organizations": {"type": "array", "items": {"type": "string"}},
        "dates": {"type": "array", "items": {"type": "string"}},
        "amounts": {"type": "array", "items": {"type": "string"}},
        "technologies": {"type": "array", "items": {"type": "string"}}
      },
      "required": ["people", "organizations", "dates", "amounts", "technologies"],
      "additionalProperties": false
    },
    "sentiment": {
      "type": "object",
      "properties": {
        "polarity": {"type": "number", "minimum": -1, "maximum": 1},
        "magnitude": {"type": "number", "minimum": 0, "maximum": 1}
      },
      "required": ["polarity", "magnitude"],
      "additionalProperties": false
    }
  },
  "required": ["executive_summary", "detailed_summary", "key_points", "key_insights", "category", "confidence", "entities", "sentiment"],
  "additionalProperties": false
}`

const analysisPromptTemplate = `Analyze the given business document and return the analysis as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- executive_summary is at most 2 sentences capturing what the document is about.
- detailed_summary is a single paragraph, at most 6 sentences.
- key_points lists the 3-7 most important statements from the document, each a single sentence.
- key_insights lists actionable takeaways implied by the document, at most 5.
- category must be exactly one of: %s. Use "unclassified" when no category clearly fits.
- confidence is how certain you are of the category, from 0 to 1.
- entities lists only names that literally appear in the text. Do not hallucinate.
- sentiment polarity runs from -1 (strongly negative) to 1 (strongly positive). Magnitude
  is the overall strength of sentiment from 0 (neutral throughout) to 1.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "Q4 revenue grew 12%% year over year, driven by strong enterprise sales. Acme Corp signed a three-year contract worth $4.5M on January 15, 2025."
Output:
{
  "executive_summary": "Fourth-quarter revenue rose 12%% year over year on strong enterprise sales. A major three-year contract with Acme Corp contributed $4.5M.",
  "detailed_summary": "The document reports quarterly financial performance. Revenue grew 12%% compared with the prior year, with enterprise sales named as the main driver. A three-year contract with Acme Corp worth $4.5M, signed on January 15, 2025, is highlighted as a key win.",
  "key_points": ["Q4 revenue grew 12%% year over year.", "Enterprise sales drove the growth.", "Acme Corp signed a $4.5M three-year contract."],
  "key_insights": ["Enterprise segment momentum supports continued investment in enterprise sales."],
  "category": "financial",
  "confidence": 0.92,
  "entities": {"people": [], "organizations": ["Acme Corp"], "dates": ["January 15, 2025"], "amounts": ["$4.5M", "12%%"], "technologies": []},
  "sentiment": {"polarity": 0.6, "magnitude": 0.5}
}`

// buildAnalysisPrompt creates the system prompt with the category
// names embedded.
func buildAnalysisPrompt() string {
	categories := []string{
		core.DocumentTypeFinancial.String(),
		core.DocumentTypeTechnical.String(),
		core.DocumentTypeStrategic.String(),
		core.DocumentTypeLegal.String(),
		core.DocumentTypeOperational.String(),
		core.DocumentTypeUnclassified.String(),
	}
	return fmt.Sprintf(analysisPromptTemplate,
		analysisResponseSchema,
		strings.Join(categories, ", "))
}
