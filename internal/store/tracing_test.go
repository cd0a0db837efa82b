package store

import (
	"context"
	"testing"

	"placebook/internal/place"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newRecorder(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr, tp
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestSpansPerOperation(t *testing.T) {
	ctx := context.Background()
	sr, tp := newRecorder(t)
	s := newTestStore(t, WithTracerProvider(tp))

	rec, err := place.New("Eiffel Tower", "file:///a.jpg", place.Location{Lat: 48.8584, Lng: 2.2945, Address: "Paris, France"})
	require.NoError(t, err)
	id, err := s.Insert(ctx, rec)
	require.NoError(t, err)
	_, err = s.FetchAll(ctx)
	require.NoError(t, err)
	_, err = s.FetchByID(ctx, id)
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, id))

	spans := sr.Ended()
	require.Len(t, spans, 5)

	wantNames := []string{
		"initialize_schema places",
		"insert places",
		"fetch_all places",
		"fetch_by_id places",
		"delete places",
	}
	for i, span := range spans {
		assert.Equal(t, wantNames[i], span.Name())
		assert.Equal(t, trace.SpanKindClient, span.SpanKind())
		assert.Equal(t, codes.Ok, span.Status().Code)

		system, ok := spanAttr(span, "db.system")
		require.True(t, ok)
		assert.Equal(t, "sqlite", system.AsString())

		table, ok := spanAttr(span, "db.sql.table")
		require.True(t, ok)
		assert.Equal(t, "places", table.AsString())
	}
}

func TestSpanNotFoundIsNotAnError(t *testing.T) {
	sr, tp := newRecorder(t)
	s := newTestStore(t, WithTracerProvider(tp))

	_, err := s.FetchByID(context.Background(), 404)
	require.ErrorIs(t, err, ErrNotFound)

	spans := sr.Ended()
	require.NotEmpty(t, spans)
	span := spans[len(spans)-1]

	assert.Equal(t, "fetch_by_id places", span.Name())
	assert.NotEqual(t, codes.Error, span.Status().Code)
	found, ok := spanAttr(span, "db.result.found")
	require.True(t, ok)
	assert.False(t, found.AsBool())
	assert.Empty(t, span.Events())
}

func TestSpanRecordsFailure(t *testing.T) {
	sr, tp := newRecorder(t)
	s := newTestStore(t, WithTracerProvider(tp))

	_, err := s.Insert(context.Background(), place.Record{})
	require.Error(t, err)

	spans := sr.Ended()
	span := spans[len(spans)-1]

	assert.Equal(t, "insert places", span.Name())
	assert.Equal(t, codes.Error, span.Status().Code)
	require.Len(t, span.Events(), 1)
	assert.Equal(t, "exception", span.Events()[0].Name)
}
