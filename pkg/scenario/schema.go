package scenario

// SchemaName identifies the structured output schema in provider requests.
const SchemaName = "scenario_step"

// ResponseSchema returns the strict JSON schema for a scenario step, in the
// shape the chat-completions response_format expects. Strict mode requires
// every property to be listed under "required" and nullability expressed as
// a type union, so this looks more verbose than the Go types.
func ResponseSchema() map[string]interface{} {
	metricDelta := map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"metric": map[string]interface{}{"type": "string"},
			"delta":  map[string]interface{}{"type": "number"},
		},
		"required": []string{"metric", "delta"},
	}

	decisionOption := map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"text":         map[string]interface{}{"type": "string"},
			"metricDeltas": map[string]interface{}{"type": "array", "items": metricDelta},
			"isScaffold":   map[string]interface{}{"type": "boolean"},
		},
		"required": []string{"text", "metricDeltas", "isScaffold"},
	}

	message := map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"character": map[string]interface{}{"type": "string"},
			"text":      map[string]interface{}{"type": "string"},
		},
		"required": []string{"character", "text"},
	}

	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"stepType": map[string]interface{}{
				"type": "string",
				"enum": []string{StepDecision, StepMCQ, StepFeedback, StepSummary},
			},
			"messages":           map[string]interface{}{"type": "array", "items": message},
			"mainCharacterImage": map[string]interface{}{"type": []string{"string", "null"}},
			"decisionPoint": map[string]interface{}{
				"type":                 []string{"object", "null"},
				"additionalProperties": false,
				"properties": map[string]interface{}{
					"question": map[string]interface{}{"type": "string"},
					"options":  map[string]interface{}{"type": "array", "items": decisionOption},
				},
				"required": []string{"question", "options"},
			},
			"mcq": map[string]interface{}{
				"type":                 []string{"object", "null"},
				"additionalProperties": false,
				"properties": map[string]interface{}{
					"question":           map[string]interface{}{"type": "string"},
					"options":            map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
					"correctOptionIndex": map[string]interface{}{"type": "integer"},
				},
				"required": []string{"question", "options", "correctOptionIndex"},
			},
			"feedback": map[string]interface{}{
				"type":                 []string{"object", "null"},
				"additionalProperties": false,
				"properties": map[string]interface{}{
					"correctFeedback":   map[string]interface{}{"type": "string"},
					"incorrectFeedback": map[string]interface{}{"type": "string"},
				},
				"required": []string{"correctFeedback", "incorrectFeedback"},
			},
			"scenarioComplete": map[string]interface{}{"type": "boolean"},
			"summary":          map[string]interface{}{"type": []string{"string", "null"}},
			"previousDecision": map[string]interface{}{
				"type":                 []string{"object", "null"},
				"additionalProperties": false,
				"properties": map[string]interface{}{
					"text":         map[string]interface{}{"type": "string"},
					"metricDeltas": map[string]interface{}{"type": "array", "items": metricDelta},
					"isScaffold":   map[string]interface{}{"type": "boolean"},
				},
				"required": []string{"text", "metricDeltas", "isScaffold"},
			},
		},
		"required": []string{
			"stepType", "messages", "mainCharacterImage", "decisionPoint",
			"mcq", "feedback", "scenarioComplete", "summary", "previousDecision",
		},
	}
}
