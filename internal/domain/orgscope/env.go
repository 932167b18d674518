package orgscope

import "context"

// Env is the host record framework as seen by the checker. Every call runs
// inside the caller's unit of work.
type Env interface {
	// Registry returns the field-metadata registry
	Registry() *Registry

	// ReadRelation returns the stored value of a relational field of rec,
	// bypassing record rules.
	ReadRelation(ctx context.Context, rec Ref, field string) (RecordSet, error)

	// Filter returns the members of rs matching d. Archived records are part
	// of the evaluation universe.
	Filter(ctx context.Context, rs RecordSet, d Domain) (RecordSet, error)

	// CompanyDomain is the host's company-compatibility predicate for records
	// of model, relative to company.
	CompanyDomain(ctx context.Context, model string, company Ref) (Domain, error)

	// CurrentCompany returns the acting user's active company
	CurrentCompany(ctx context.Context) (Ref, error)

	// DisplayNames returns the display label of every member of rs, in order
	DisplayNames(ctx context.Context, rs RecordSet) ([]string, error)
}

// Writer persists a batch write onto a record set
type Writer interface {
	Write(ctx context.Context, rs RecordSet, vals Values) error
}
