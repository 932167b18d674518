package main

import (
	"time"

	appscope "github.com/erp/operatingunit/internal/application/orgscope"
	"github.com/spf13/cobra"
)

type runOutput struct {
	Command    string `json:"command"`
	DurationMS int64  `json:"duration_ms"`
	Result     any    `json:"result"`
}

func newAuditCmd(opts *rootOptions) *cobra.Command {
	var (
		fields    []string
		userID    string
		companyID string
	)

	cmd := &cobra.Command{
		Use:   "audit [model...]",
		Short: "Check every stored record of the given models, or of every auditable model",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			ctx, err := a.commandContext(cmd.Context(), opts, userID, companyID)
			if err != nil {
				return err
			}
			svc := appscope.NewAuditService(a.store, a.checker, a.metrics, a.log)

			start := time.Now()
			var results []appscope.AuditResult
			if len(args) == 0 {
				results, err = svc.AuditAll(ctx)
				if err != nil {
					return err
				}
			} else {
				for _, model := range args {
					r, err := svc.AuditModel(ctx, model, fields...)
					if err != nil {
						return err
					}
					results = append(results, r)
				}
			}

			outputs := make([]auditOutput, 0, len(results))
			failed := false
			for _, r := range results {
				outputs = append(outputs, newAuditOutput(r))
				failed = failed || !r.OK()
			}
			if err := writeJSON(runOutput{
				Command:    "audit",
				DurationMS: time.Since(start).Milliseconds(),
				Result:     outputs,
			}); err != nil {
				return err
			}
			if failed {
				return errViolations
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&fields, "fields", nil, "Restrict the audit to these fields (only with explicit models)")
	cmd.Flags().StringVar(&userID, "user", "", "Acting user UUID (company of company dependent fields)")
	cmd.Flags().StringVar(&companyID, "company", "", "Current company UUID (overrides --user)")
	return cmd
}
