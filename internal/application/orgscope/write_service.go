package orgscope

import (
	"context"
	"time"

	"github.com/erp/operatingunit/internal/domain/orgscope"
	"github.com/erp/operatingunit/internal/infrastructure/logger"
	"github.com/erp/operatingunit/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WriteService applies batch writes through the consistency guard
type WriteService struct {
	uow     UnitOfWork
	checker *orgscope.Checker
	metrics *telemetry.ScopeMetrics
	logger  *zap.Logger
}

// NewWriteService creates a WriteService. checker and metrics may be nil.
func NewWriteService(uow UnitOfWork, checker *orgscope.Checker, metrics *telemetry.ScopeMetrics, zapLogger *zap.Logger) *WriteService {
	if checker == nil {
		checker = orgscope.NewChecker()
	}
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &WriteService{uow: uow, checker: checker, metrics: metrics, logger: zapLogger}
}

// Write stores vals on the records ids of model in one transaction. When a
// scope-relevant field is written on an auto-checked model the resulting
// state is validated first; a ConsistencyError or InvalidFieldError leaves
// the records untouched.
func (s *WriteService) Write(ctx context.Context, model string, ids []uuid.UUID, vals orgscope.Values) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "scope", "write",
		telemetry.AttrModel.String(model),
		telemetry.AttrRecords.Int(len(ids)),
	)
	defer span.End()

	log := logger.WithLogger(ctx, s.logger).With(zap.String("model", model), zap.Int("records", len(ids)))
	rs := orgscope.NewRecordSet(model, ids...)
	start := time.Now()

	checked := false
	err := s.uow.Do(ctx, func(host Host) error {
		var err error
		checked, err = orgscope.NewGuard(host, host, s.checker).WriteChecked(ctx, rs, vals)
		return err
	})
	elapsed := time.Since(start)

	if err == nil {
		if checked {
			s.metrics.RecordCheck(ctx, "write", model, telemetry.OutcomeOK, 0, elapsed)
		} else {
			log.Debug("Consistency check skipped: no scope-relevant field written or auto-check off")
		}
		telemetry.SetOK(span)
		return nil
	}

	telemetry.RecordError(span, err)
	if cerr, ok := orgscope.AsConsistencyError(err); ok {
		s.metrics.RecordCheck(ctx, "write", model, telemetry.OutcomeViolation, len(cerr.Violations), elapsed)
		log.Warn("Write rejected: incompatible operating units", zap.Int("violations", len(cerr.Violations)))
		return err
	}
	if orgscope.IsInvalidField(err) {
		s.metrics.RecordCheck(ctx, "write", model, telemetry.OutcomeInvalidField, 0, elapsed)
		log.Warn("Write rejected: invalid field", zap.Error(err))
		return err
	}
	s.metrics.RecordCheck(ctx, "write", model, telemetry.OutcomeError, 0, elapsed)
	log.Error("Write failed", zap.Error(err))
	return err
}
