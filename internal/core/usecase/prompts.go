package usecase

import (
	"fmt"

	"github.com/sgpropdata/docpipe/internal/core/domain"
)

const scheduleSystemPrompt = "You are a data extraction expert. Extract project tasks from the document and return valid JSON only."

const schedulePromptFormat = `You are an expert data extraction agent specializing in construction project schedules.

Extract all project tasks from the following document text. Each task should have:
- task_id: A unique integer ID (extract from ID column if available, or assign sequentially)
- task_name: The name/description of the task
- duration_days: Duration in days (convert from weeks/months if needed)
- start_date: Start date in YYYY-MM-DD format
- finish_date: Finish date in YYYY-MM-DD format

Document Text:
%s

Return the extracted tasks as a JSON array. Each task should be a JSON object with the exact fields specified above.
If a date is not in YYYY-MM-DD format, convert it. If duration is not in days, convert it appropriately.

Example output format:
[
    {
        "task_id": 1,
        "task_name": "Install CMU Block Walls",
        "duration_days": 30,
        "start_date": "2024-01-01",
        "finish_date": "2024-01-31"
    }
]

Extract all tasks found in the document. Return only valid JSON, no additional text.`

const costSystemPrompt = "You are a data extraction expert. Extract cost items from the document and return valid JSON only."

const costPromptFormat = `You are an expert data extraction agent specializing in construction cost analysis.

Extract all cost items from the following document text. Each cost item should have:
- item_name: Description of the cost item
- quantity: Numeric quantity (extract the number, handle units like 't', 'm3', etc.)
- unit_price_yen: Unit price in Japanese Yen
- total_cost_yen: Total cost in Japanese Yen (calculate if not directly provided)
- cost_type: Either "Foreign cost" or "Local cost"

Document Text:
%s

Return the extracted cost items as a JSON array. Each item should be a JSON object with the exact fields specified above.
Extract numeric values accurately. If total_cost_yen is not provided, calculate it as quantity * unit_price_yen.

Example output format:
[
    {
        "item_name": "Bearing Pile",
        "quantity": 736.2,
        "unit_price_yen": 79000,
        "total_cost_yen": 58159800,
        "cost_type": "Foreign cost"
    }
]

Extract all cost items found in the document. Return only valid JSON, no additional text.`

const regulatorySystemPrompt = "You are a data extraction expert. Extract regulatory rules from the document and return valid JSON only."

const regulatoryPromptFormat = `You are an expert data extraction agent specializing in regulatory documents.

Extract all regulatory rules and clarifications from the following circular document text. Each rule should have:
- rule_id: A unique identifier (e.g., Q1, Q2, Q17, or extract from question numbers)
- rule_summary: A concise summary of the rule or clarification
- measurement_basis: Key measurement principle and associated rule (e.g., "middle of the external wall", "edge of the covered area")

Document Text:
%s

Return the extracted rules as a JSON array. Each rule should be a JSON object with the exact fields specified above.

Example output format:
[
    {
        "rule_id": "Q1",
        "rule_summary": "Definition of GFA calculation method",
        "measurement_basis": "middle of the external wall"
    }
]

Extract all rules and clarifications found in the document. Return only valid JSON, no additional text.`

// extractionPrompt returns the prompt/system pair for a document type.
// TypeGeneral (and anything else outside the closed set) has no prompt.
func extractionPrompt(docType domain.DocumentType, documentText string) (prompt, system string, ok bool) {
	switch docType {
	case domain.TypeSchedule:
		return fmt.Sprintf(schedulePromptFormat, documentText), scheduleSystemPrompt, true
	case domain.TypeCost:
		return fmt.Sprintf(costPromptFormat, documentText), costSystemPrompt, true
	case domain.TypeRegulatory:
		return fmt.Sprintf(regulatoryPromptFormat, documentText), regulatorySystemPrompt, true
	default:
		return "", "", false
	}
}
