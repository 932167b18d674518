package orgscope

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/operatingunit/internal/domain/orgscope"
	"github.com/erp/operatingunit/internal/infrastructure/logger"
	"github.com/erp/operatingunit/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// RecordLister lists every record of a model, archived ones included
type RecordLister interface {
	IDs(ctx context.Context, model string) (orgscope.RecordSet, error)
}

// AuditEnv is the host an audit runs against
type AuditEnv interface {
	orgscope.Env
	RecordLister
}

// AuditResult is the outcome of auditing one model
type AuditResult struct {
	Model   string
	Records int
	// Err is nil when every record is consistent
	Err *orgscope.ConsistencyError
}

// OK reports whether the audit found no violation
func (r AuditResult) OK() bool {
	return r.Err == nil
}

// AuditService runs the consistency check manually over stored records
type AuditService struct {
	env     AuditEnv
	checker *orgscope.Checker
	metrics *telemetry.ScopeMetrics
	logger  *zap.Logger
}

// NewAuditService creates an AuditService. checker and metrics may be nil.
func NewAuditService(env AuditEnv, checker *orgscope.Checker, metrics *telemetry.ScopeMetrics, zapLogger *zap.Logger) *AuditService {
	if checker == nil {
		checker = orgscope.NewChecker()
	}
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &AuditService{env: env, checker: checker, metrics: metrics, logger: zapLogger}
}

// AuditModel checks every record of model against its stored values,
// restricted to fieldNames when given. Violations are returned in the
// result; the error is reserved for invalid input and storage failures.
func (s *AuditService) AuditModel(ctx context.Context, model string, fieldNames ...string) (AuditResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "scope", "audit", telemetry.AttrModel.String(model))
	defer span.End()

	log := logger.WithLogger(ctx, s.logger).With(zap.String("model", model))
	result := AuditResult{Model: model}
	start := time.Now()

	rs, err := s.env.IDs(ctx, model)
	if err != nil {
		telemetry.RecordError(span, err)
		return result, fmt.Errorf("list %s: %w", model, err)
	}
	result.Records = rs.Len()
	span.SetAttributes(telemetry.AttrRecords.Int(rs.Len()))

	err = s.checker.Check(ctx, s.env, rs, fieldNames...)
	elapsed := time.Since(start)

	switch cerr, isConsistency := orgscope.AsConsistencyError(err); {
	case err == nil:
		s.metrics.RecordCheck(ctx, "audit", model, telemetry.OutcomeOK, 0, elapsed)
		log.Info("Audit passed", zap.Int("records", result.Records), zap.Duration("elapsed", elapsed))
		telemetry.SetOK(span)
		return result, nil

	case isConsistency:
		result.Err = cerr
		s.metrics.RecordCheck(ctx, "audit", model, telemetry.OutcomeViolation, len(cerr.Violations), elapsed)
		log.Warn("Audit found incompatible operating units",
			zap.Int("records", result.Records),
			zap.Int("violations", len(cerr.Violations)),
		)
		telemetry.RecordError(span, err)
		return result, nil

	case orgscope.IsInvalidField(err):
		s.metrics.RecordCheck(ctx, "audit", model, telemetry.OutcomeInvalidField, 0, elapsed)
		telemetry.RecordError(span, err)
		return result, err

	default:
		s.metrics.RecordCheck(ctx, "audit", model, telemetry.OutcomeError, 0, elapsed)
		log.Error("Audit failed", zap.Error(err))
		telemetry.RecordError(span, err)
		return result, err
	}
}

// Auditable returns the registered models that have at least one checked
// relation, in name order.
func (s *AuditService) Auditable() ([]string, error) {
	reg := s.env.Registry()
	var names []string
	for _, name := range reg.Names() {
		m, _ := reg.Model(name)
		regular, property, err := s.checker.CheckedFields(reg, m, nil)
		if err != nil {
			return nil, err
		}
		if len(regular)+len(property) > 0 {
			names = append(names, name)
		}
	}
	return names, nil
}

// AuditAll audits every auditable model. It stops at the first storage
// failure; violations never stop it.
func (s *AuditService) AuditAll(ctx context.Context) ([]AuditResult, error) {
	names, err := s.Auditable()
	if err != nil {
		return nil, err
	}
	results := make([]AuditResult, 0, len(names))
	for _, name := range names {
		result, err := s.AuditModel(ctx, name)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}
