package domain

import "strings"

// DocumentType is the closed set of document categories the pipeline
// understands. Free-text labels are classified once at the boundary;
// everything downstream dispatches on the enum.
type DocumentType string

const (
	TypeSchedule   DocumentType = "schedule"
	TypeCost       DocumentType = "cost"
	TypeRegulatory DocumentType = "regulatory"
	TypeGeneral    DocumentType = "general"
)

// ClassifyDocumentType maps a free-text document-type label onto the enum.
// Matching is case-insensitive substring search; unmatched labels fall back
// to TypeGeneral, which extracts nothing.
func ClassifyDocumentType(label string) DocumentType {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "schedule") || strings.Contains(l, "project"):
		return TypeSchedule
	case strings.Contains(l, "cost"):
		return TypeCost
	case strings.Contains(l, "ura") || strings.Contains(l, "regulatory") || strings.Contains(l, "gfa"):
		return TypeRegulatory
	default:
		return TypeGeneral
	}
}

// DefaultDocumentTypes maps the known source filenames to their types.
// Files not in the map are processed as TypeGeneral.
func DefaultDocumentTypes() map[string]DocumentType {
	return map[string]DocumentType{
		"Project schedule document.pdf":                   TypeSchedule,
		"Construction planning and costing.pdf":          TypeCost,
		"URA-Circular on GFA area definition.pdf":        TypeRegulatory,
		"construction approvals -long process chart.pdf": TypeRegulatory,
	}
}
