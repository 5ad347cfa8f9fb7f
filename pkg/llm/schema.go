package llm

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/quietdesk/companion/pkg/contracts"
)

// intentBatchSchema is the strict contract for LLM-proposed intents. The
// gate re-validates everything, but schema failure here is what triggers
// the heuristic fallback.
const intentBatchSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["intents"],
  "properties": {
    "intents": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["domain", "type"],
        "properties": {
          "domain": {"enum": ["messages", "calendar", "coding", "forum"]},
          "type": {"type": "string"},
          "payload": {"type": "object"},
          "value": {"type": "number", "minimum": 0, "maximum": 1},
          "urgency": {"type": "number", "minimum": 0, "maximum": 1},
          "effort_s": {"type": "integer", "minimum": 0, "maximum": 3600},
          "preconditions": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

var compiledIntentBatch = jsonschema.MustCompileString("intent_batch.json", intentBatchSchema)

// ParseIntentBatch validates a JSON-mode response document against the
// intent batch schema and converts it into intents with fresh ids. The
// defaultPrecondition is attached to intents that carry none.
func ParseIntentBatch(doc map[string]any, defaultPrecondition string) ([]contracts.Intent, error) {
	if doc == nil {
		return nil, fmt.Errorf("intent batch: empty document")
	}
	if err := compiledIntentBatch.Validate(map[string]any(doc)); err != nil {
		return nil, fmt.Errorf("intent batch: %w", err)
	}

	rawIntents, _ := doc["intents"].([]any)
	intents := make([]contracts.Intent, 0, len(rawIntents))
	for _, raw := range rawIntents {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		intent := contracts.Intent{
			ID:      uuid.NewString(),
			Domain:  contracts.Domain(str(m["domain"])),
			Type:    str(m["type"]),
			Value:   num(m["value"], 0.5),
			Urgency: num(m["urgency"], 0.5),
			EffortS: int(num(m["effort_s"], 60)),
		}
		if payload, ok := m["payload"].(map[string]any); ok {
			intent.Payload = payload
		}
		if pres, ok := m["preconditions"].([]any); ok {
			for _, p := range pres {
				if s, ok := p.(string); ok {
					intent.Preconditions = append(intent.Preconditions, s)
				}
			}
		}
		if len(intent.Preconditions) == 0 && defaultPrecondition != "" {
			intent.Preconditions = []string{defaultPrecondition}
		}
		intents = append(intents, intent)
	}
	return intents, nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func num(v any, def float64) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return def
}
