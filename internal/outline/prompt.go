package outline

import (
	"encoding/json"
	"fmt"

	"github.com/tmc/langchaingo/prompts"

	"github.com/careloom/reminisce/internal/model"
)

// systemPrompt frames the assistant for every generation request.
const systemPrompt = "You are an AI assistant specializing in reminiscence therapy."

const outlinePromptTemplate = `Generate a therapy outline for memory {{.memoryID}} in the following JSON format:

{
  "patient_id": "string",
  "memory_id": "string",
  "steps": [
    {
      "step": "int",
      "description": "string",
      "guide": ["string", "..."],
      "type": "string (INTRODUCTION, NORMAL, CONCLUSION)",
      "media_urls": ["string", "..."],
      "script": {
        "voice": "string (alloy, echo, fable, onyx, nova, shimmer)",
        "text": "string"
      }
    }
  ]
}

Memory Details:
{{.memoryDetails}}

Patient Details:
{{.patientDetails}}

Requirements:
- Use the patient details and memory details to generate personalized steps and guidance.
- Include associated media URLs for each step where applicable.
- Follow a logical structure: introduction, main session, conclusion.
- Provide guidance points for each step in the ` + "`guide`" + ` field.
- Each step should include a script with:
  - A calm, relaxing, and therapist-like tone.
  - Simple and empathetic language to guide reflective thinking and encourage memories.
- Choose one consistent voice for all steps from the following options: alloy, echo, fable, onyx, nova, shimmer.
- Ensure the JSON format matches the provided structure.
- Provide the output as a valid JSON object without any extra formatting or code block markers.`

// BuildPrompt renders the user prompt for one generation request, embedding
// the memory id and the serialized memory and patient payloads.
func BuildPrompt(memoryID string, mem *model.Memory, patient *model.Patient) (string, error) {
	memJSON, err := json.Marshal(mem)
	if err != nil {
		return "", fmt.Errorf("marshal memory: %w", err)
	}
	patientJSON, err := json.Marshal(patient)
	if err != nil {
		return "", fmt.Errorf("marshal patient: %w", err)
	}

	tpl := prompts.PromptTemplate{
		Template:       outlinePromptTemplate,
		TemplateFormat: prompts.TemplateFormatGoTemplate,
		InputVariables: []string{"memoryID", "memoryDetails", "patientDetails"},
	}

	prompt, err := tpl.Format(map[string]any{
		"memoryID":       memoryID,
		"memoryDetails":  string(memJSON),
		"patientDetails": string(patientJSON),
	})
	if err != nil {
		return "", fmt.Errorf("format prompt: %w", err)
	}

	return prompt, nil
}
