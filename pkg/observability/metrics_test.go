package observability_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/aretw0/weft/pkg/convert"
	"github.com/aretw0/weft/pkg/dynamic"
	"github.com/aretw0/weft/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != "weft_conversions_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			if matches(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matches(m *dto.Metric, labels map[string]string) bool {
	found := 0
	for _, lp := range m.GetLabel() {
		if want, ok := labels[lp.GetName()]; ok {
			if want != lp.GetValue() {
				return false
			}
			found++
		}
	}
	return found == len(labels)
}

func TestMetrics_CountsTopLevelConversions(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	d := convert.NewDispatcher(nil, convert.WithObserver(metrics))
	scope := dynamic.NewScope("test")

	arr := scope.NewArray([]dynamic.Value{dynamic.Number(1), dynamic.Number(2)})
	_, err = d.ToWritable(arr, scope)
	require.NoError(t, err)
	_, err = d.ToWritable(dynamic.Number(3), scope)
	require.NoError(t, err)
	_, err = d.ToWritable(os.Stdin, scope)
	require.Error(t, err)

	assert.Equal(t, 1.0, counterValue(t, reg, map[string]string{
		"direction": "to_writable", "type": "Array", "outcome": "ok",
	}))
	assert.Equal(t, 1.0, counterValue(t, reg, map[string]string{
		"direction": "to_writable", "type": "Number", "outcome": "ok",
	}))
	assert.Equal(t, 1.0, counterValue(t, reg, map[string]string{
		"direction": "to_writable", "type": "*os.File", "outcome": "no_converter",
	}))
}

func TestMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	metrics.ObserveConversion(convert.Event{Direction: convert.ToDynamic, TypeName: "org.apache.hadoop.io.Text"})

	rec := httptest.NewRecorder()
	observability.Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `weft_conversions_total{direction="to_dynamic",outcome="ok",type="org.apache.hadoop.io.Text"} 1`))
}

func TestAggregator_FansOut(t *testing.T) {
	var calls []string
	a := observability.NewAggregator(
		convert.ObserverFunc(func(convert.Event) { calls = append(calls, "first") }),
		nil,
	)
	a.Add(convert.ObserverFunc(func(convert.Event) { calls = append(calls, "second") }))

	a.ObserveConversion(convert.Event{Direction: convert.ToWritable})
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestLogger_OnlyFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs := observability.NewLogger(logger)

	obs.ObserveConversion(convert.Event{Direction: convert.ToWritable, TypeName: "Number"})
	assert.Empty(t, buf.String())

	d := convert.NewDispatcher(nil, convert.WithObserver(obs))
	_, err := d.ToWritable(uint(1), nil)
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "conversion failed")
	assert.Contains(t, out, "direction=to_writable")
	assert.Contains(t, out, "type=uint")
}
