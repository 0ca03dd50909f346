package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	cron := NewCronJobMetrics(reg)

	cron.ObserveRun("abandoned_carts", 250*time.Millisecond, 3, nil)
	cron.ObserveRun("abandoned_carts", time.Second, 2, errors.New("partial"))
	cron.ObserveRun("", time.Millisecond, 0, nil)

	if got := testutil.ToFloat64(cron.runs.WithLabelValues("abandoned_carts", outcomeSuccess)); got != 1 {
		t.Fatalf("expected one success, got %f", got)
	}
	if got := testutil.ToFloat64(cron.runs.WithLabelValues("abandoned_carts", outcomeFailure)); got != 1 {
		t.Fatalf("expected one failure, got %f", got)
	}
	if got := testutil.ToFloat64(cron.affected.WithLabelValues("abandoned_carts")); got != 5 {
		t.Fatalf("affected should include failed runs, got %f", got)
	}
	if got := testutil.ToFloat64(cron.runs.WithLabelValues("unknown", outcomeSuccess)); got != 1 {
		t.Fatalf("blank job names should be labelled unknown, got %f", got)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchHistogramSum(mfs, "cyd_cron_duration_seconds", "job", "abandoned_carts"); err != nil || got < 1.25 {
		t.Fatalf("expected summed duration, got %f (%v)", got, err)
	}
	if findMetricFamily(mfs, "cyd_cron_last_success_timestamp_seconds") == nil {
		t.Fatalf("expected last success gauge")
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}

func TestNilMetricsAreSafe(t *testing.T) {
	var cron *CronJobMetrics
	cron.ObserveRun("x", time.Second, 1, nil)
	if NewCronJobMetrics(nil) != nil {
		t.Fatalf("nil registerer should disable cron metrics")
	}

	var shop *ShopMetrics
	shop.IncOrderPlaced("card")
	shop.IncCartConflict()

	var web *HTTPMetrics
	web.Observe("/", "GET", 200, time.Millisecond)

	NewShopMetrics(nil).IncStockRejection("add")
}

func TestShopAndHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	shop := NewShopMetrics(reg)
	web := NewHTTPMetrics(reg)

	shop.IncOrderPlaced("card")
	shop.IncOrderPlaced("card")
	shop.IncStockRejection("")
	shop.IncStatusChange("shipped")
	web.Observe("/api/cart", "GET", 200, 10*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "cyd_orders_placed_total", "payment_method", "card"); err != nil || got != 2 {
		t.Fatalf("expected 2 card orders, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "cyd_stock_rejections_total", "operation", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected unknown stock rejection, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "cyd_http_requests_total", "status", "200"); err != nil || got != 1 {
		t.Fatalf("expected one request, got %f (%v)", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "cyd_http_request_duration_seconds", "route", "/api/cart"); err != nil || got <= 0 {
		t.Fatalf("expected duration, got %f (%v)", got, err)
	}
}
