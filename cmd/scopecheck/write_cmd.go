package main

import (
	"fmt"
	"strings"

	appscope "github.com/erp/operatingunit/internal/application/orgscope"
	"github.com/erp/operatingunit/internal/domain/orgscope"
	"github.com/spf13/cobra"
)

func newWriteCmd(opts *rootOptions) *cobra.Command {
	var (
		sets      []string
		userID    string
		companyID string
	)

	cmd := &cobra.Command{
		Use:   "write <model> <id>...",
		Short: "Write field values onto records, rejecting incompatible operating units",
		Long: `Write assigns every --set field=value onto the given records in one
transaction. Relational values are record UUIDs; many2many values are comma
separated and an empty value clears the relation.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(sets) == 0 {
				return fmt.Errorf("at least one --set is required")
			}
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			m, _ := a.reg.Model(args[0])
			vals, err := parseAssignments(m, sets)
			if err != nil {
				return err
			}

			ctx, err := a.commandContext(cmd.Context(), opts, userID, companyID)
			if err != nil {
				return err
			}
			uow := appscope.NewGormUnitOfWork(a.db, a.store)
			svc := appscope.NewWriteService(uow, a.checker, a.metrics, a.log)
			if err := svc.Write(ctx, args[0], ids, vals); err != nil {
				return err
			}
			return writeJSON(auditOutput{Model: args[0], Records: len(ids), OK: true})
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field assignment as field=value (repeatable)")
	cmd.Flags().StringVar(&userID, "user", "", "Acting user UUID (company of company dependent fields)")
	cmd.Flags().StringVar(&companyID, "company", "", "Current company UUID (overrides --user)")
	return cmd
}

// parseAssignments turns field=value pairs into write values. Unknown fields
// and models are passed through as strings so the guard reports them.
func parseAssignments(m *orgscope.Model, sets []string) (orgscope.Values, error) {
	vals := make(orgscope.Values, len(sets))
	for _, set := range sets {
		name, raw, ok := strings.Cut(set, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q, want field=value", set)
		}
		var (
			f     *orgscope.Field
			known bool
		)
		if m != nil {
			f, known = m.Field(name)
		}
		switch {
		case !known || !f.Relational:
			vals[name] = raw
		case raw == "":
			vals[name] = nil
		case f.Type == orgscope.FieldTypeMany2many:
			vals[name] = strings.Split(raw, ",")
		default:
			vals[name] = raw
		}
	}
	return vals, nil
}
