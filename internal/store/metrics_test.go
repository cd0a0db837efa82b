package store

import (
	"context"
	"strings"
	"testing"

	"placebook/internal/place"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics()

	require.NoError(t, m.Register(reg))
	assert.Error(t, m.Register(reg), "registering twice must fail")
	assert.Len(t, m.Collectors(), 2)
}

func TestMetrics_RecordOperations(t *testing.T) {
	ctx := context.Background()
	m := NewMetrics()
	s := newTestStore(t, WithMetrics(m))

	rec, err := place.New("Eiffel Tower", "file:///a.jpg", place.Location{Lat: 48.8584, Lng: 2.2945, Address: "Paris, France"})
	require.NoError(t, err)

	id, err := s.Insert(ctx, rec)
	require.NoError(t, err)
	_, err = s.Insert(ctx, place.Record{})
	require.Error(t, err)
	_, err = s.FetchByID(ctx, id)
	require.NoError(t, err)
	_, err = s.FetchByID(ctx, id+100)
	require.Error(t, err)
	_, err = s.FetchAll(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, id))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(OpInitializeSchema, OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(OpInsert, OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(OpInsert, OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(OpFetchByID, OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(OpFetchByID, OutcomeNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(OpFetchAll, OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(OpDelete, OutcomeOK)))

	assert.Equal(t, 5, testutil.CollectAndCount(m.duration))
}

func TestMetrics_Exposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics()
	require.NoError(t, m.Register(reg))

	m.observe(OpDelete, OutcomeOK, 0)

	expected := `
# HELP placebook_store_operations_total Total number of place store operations by operation and outcome
# TYPE placebook_store_operations_total counter
placebook_store_operations_total{operation="delete",outcome="ok"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), MetricOperations))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.observe(OpInsert, OutcomeOK, 0)
}
