package orgscope

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MaxReportedViolations caps the number of violations named in a report.
// The rest are dropped without a trailing count.
const MaxReportedViolations = 5

// PrinterFunc returns the printer used to render a report for ctx
type PrinterFunc func(ctx context.Context) *message.Printer

// DefaultPrinter renders reports in English
func DefaultPrinter(context.Context) *message.Printer {
	return message.NewPrinter(language.English)
}

// Reporter formats violations into a single ConsistencyError
type Reporter struct {
	printer PrinterFunc
}

// NewReporter creates a reporter; a nil printer falls back to English
func NewReporter(printer PrinterFunc) *Reporter {
	if printer == nil {
		printer = DefaultPrinter
	}
	return &Reporter{printer: printer}
}

// Report renders the first MaxReportedViolations violations under a single
// header line. pending holds values of an in-flight write, used when reading
// the offending records' company.
func (r *Reporter) Report(ctx context.Context, env Env, violations []Violation, pending Values) (*ConsistencyError, error) {
	p := r.printer(ctx)
	lines := []string{p.Sprintf(MsgHeader)}

	shown := violations
	if len(shown) > MaxReportedViolations {
		shown = shown[:MaxReportedViolations]
	}
	for _, v := range shown {
		line, err := r.line(ctx, p, env, v, pending)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return &ConsistencyError{
		Violations: violations,
		Message:    strings.Join(lines, "\n"),
	}, nil
}

func (r *Reporter) line(ctx context.Context, p *message.Printer, env Env, v Violation, pending Values) (string, error) {
	model, _ := env.Registry().Model(v.Record.Model)

	description, fname := v.Field, v.Field
	if model != nil {
		if f, ok := model.Field(v.Field); ok && f.Description != "" {
			description = f.Description
		}
	}

	values, err := quotedNames(ctx, env, v.Corecords)
	if err != nil {
		return "", err
	}

	if v.Record.Model == ModelCompany {
		company, err := displayName(ctx, env, v.Record.Set())
		if err != nil {
			return "", err
		}
		return p.Sprintf(MsgCompanyRecord, company, description, fname, values), nil
	}

	var companySet RecordSet
	if model != nil {
		companySet, err = relationOf(ctx, env, model, v.Record, FieldCompany, pending)
		if err != nil {
			return "", err
		}
	}
	company, err := displayName(ctx, env, companySet)
	if err != nil {
		return "", err
	}

	if v.Field == FieldCompany && v.Corecords.Equal(v.Record.Set()) {
		record, err := displayName(ctx, env, v.Record.Set())
		if err != nil {
			return "", err
		}
		return p.Sprintf(MsgRootCompany, record, company), nil
	}

	record, err := displayName(ctx, env, v.Record.Set())
	if err != nil {
		return "", err
	}
	return p.Sprintf(MsgRecord, record, company, description, fname, values), nil
}

func displayName(ctx context.Context, env Env, rs RecordSet) (string, error) {
	if rs.IsEmpty() {
		return "", nil
	}
	names, err := env.DisplayNames(ctx, rs)
	if err != nil {
		return "", err
	}
	return strings.Join(names, ","), nil
}

func quotedNames(ctx context.Context, env Env, rs RecordSet) (string, error) {
	if rs.IsEmpty() {
		return "", nil
	}
	names, err := env.DisplayNames(ctx, rs)
	if err != nil {
		return "", err
	}
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = strconv.Quote(name)
	}
	return strings.Join(quoted, ", "), nil
}
