package prompts

import (
	"fmt"
	"strings"
)

// PromptBuilder handles the construction of prompts for the LLM
type PromptBuilder struct {
	baseContext string
}

// NewPromptBuilder creates a new PromptBuilder with the record context
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		baseContext: SchemaContext,
	}
}

// BuildCriteriaPrompt asks for a JSON filter object answering question.
func (pb *PromptBuilder) BuildCriteriaPrompt(question string, hostels []string) string {
	known := "(none loaded)"
	if len(hostels) > 0 {
		known = strings.Join(hostels, ", ")
	}

	return fmt.Sprintf(`You translate a hostel administrator's question into a filter object.

%s

Known hostels: %s

Example Questions:
1. "pending requests for Block B"
   {"pendingOnly": true, "hostel": "Block B"}

2. "flagged students without a room"
   {"unassigned": true, "maxScore": -1}

3. "find ravi"
   {"term": "ravi"}

Respond with the JSON object only, no commentary.

Question: %s`, pb.baseContext, known, question)
}
