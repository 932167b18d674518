package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

func TestStartServiceSpan(t *testing.T) {
	tp, recorder := setupRecorder(t)
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	_, ok := StartServiceSpan(context.Background(), "scope", "write", AttrModel.String("sale.order"))
	SetOK(ok)
	ok.End()

	_, failed := StartServiceSpan(context.Background(), "scope", "audit")
	RecordError(failed, errors.New("boom"))
	RecordError(failed, nil)
	failed.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "scope.write", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), AttrModel.String("sale.order"))

	assert.Equal(t, "scope.audit", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "boom", spans[1].Status().Description)
	assert.Len(t, spans[1].Events(), 1)
}
