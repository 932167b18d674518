package main

import (
	"encoding/json"
	"os"

	appscope "github.com/erp/operatingunit/internal/application/orgscope"
	"github.com/erp/operatingunit/internal/domain/orgscope"
	"github.com/google/uuid"
)

type violationOutput struct {
	Record    uuid.UUID   `json:"record"`
	Field     string      `json:"field"`
	Comodel   string      `json:"comodel"`
	Corecords []uuid.UUID `json:"corecords"`
}

type auditOutput struct {
	Model      string            `json:"model"`
	Records    int               `json:"records"`
	OK         bool              `json:"ok"`
	Violations []violationOutput `json:"violations,omitempty"`
	Report     string            `json:"report,omitempty"`
}

func newAuditOutput(r appscope.AuditResult) auditOutput {
	out := auditOutput{Model: r.Model, Records: r.Records, OK: r.OK()}
	if r.Err != nil {
		out.Violations = violationsOutput(r.Err.Violations)
		out.Report = r.Err.Message
	}
	return out
}

func violationsOutput(vs []orgscope.Violation) []violationOutput {
	out := make([]violationOutput, 0, len(vs))
	for _, v := range vs {
		out = append(out, violationOutput{
			Record:    v.Record.ID,
			Field:     v.Field,
			Comodel:   v.Corecords.Model,
			Corecords: v.Corecords.IDs,
		})
	}
	return out
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
