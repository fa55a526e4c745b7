package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then it should use the default namespace and interval", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "cropyield")
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.RecordPrediction(OutcomeModel)

			Convey("Then metrics are registered under the custom names and labels", func() {
				So(manager.RefreshInterval(), ShouldEqual, 5*time.Second)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, mf := range families {
					if mf.GetName() == "test_namespace_test_subsystem_predictions_total" {
						found = true
						So(mf.GetMetric()[0].GetLabel(), ShouldNotBeEmpty)
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When ignoring empty option values", func() {
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "cropyield")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When recording predictions by outcome", func() {
			manager.RecordPrediction(OutcomeModel)
			manager.RecordPrediction(OutcomeModel)
			manager.RecordPrediction(OutcomeFallback)

			Convey("Then each outcome has its own counter", func() {
				So(testutil.ToFloat64(manager.predictions.WithLabelValues(OutcomeModel)), ShouldEqual, 2)
				So(testutil.ToFloat64(manager.predictions.WithLabelValues(OutcomeFallback)), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.predictions.WithLabelValues(OutcomeFailed)), ShouldEqual, 0)
			})
		})

		Convey("When recording model lifecycle", func() {
			manager.UpdateModelState(2)
			manager.RecordModelLoad(12.5, false)
			manager.RecordModelLoad(3, true)

			Convey("Then the gauge and failure counter reflect it", func() {
				So(testutil.ToFloat64(manager.modelState), ShouldEqual, 2)
				So(testutil.ToFloat64(manager.modelLoadFailures), ShouldEqual, 1)
			})
		})

		Convey("When recording batch rows", func() {
			manager.RecordBatchRows(OutcomeInvalid, 3)
			manager.RecordBatchRows(OutcomeInvalid, 0)

			Convey("Then zero-sized batches are ignored", func() {
				So(testutil.ToFloat64(manager.batchRows.WithLabelValues(OutcomeInvalid)), ShouldEqual, 3)
			})
		})

		Convey("When recording HTTP and error metrics", func() {
			manager.RecordHTTPRequest("predictions", "POST", "200")
			manager.RecordHTTPRequestDuration("predictions", "POST", "200", 4.2)
			manager.RecordErrorByEndpoint("predictions", "POST", "client_error")
			manager.RecordErrorByType("client_error", "medium")

			Convey("Then the counters are incremented", func() {
				So(testutil.ToFloat64(manager.httpRequests.WithLabelValues("predictions", "POST", "200")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.errorRateByType.WithLabelValues("client_error", "medium")), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a disabled manager", t, func() {
		manager := NewManager(WithMetricsEnabled(false), WithPrometheusRegistry(prometheus.NewRegistry()))
		manager.RecordPrediction(OutcomeModel)
		manager.UpdateSystemGoroutineCount(10)

		Convey("Then nothing is recorded", func() {
			So(testutil.ToFloat64(manager.predictions.WithLabelValues(OutcomeModel)), ShouldEqual, 0)
			So(testutil.ToFloat64(manager.systemGoroutineCount), ShouldEqual, 0)
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global recorders", t, func() {
		Convey("Then they do not panic and publish to the custom registry", func() {
			So(func() {
				RecordPrediction(OutcomeFallback)
				RecordPredictionLatency(1.5)
				RecordBatchRows(OutcomeModel, 2)
				UpdateModelState(1)
				RecordModelLoad(2, true)
				RecordHTTPRequest("healthz", "GET", "200")
				RecordHTTPRequestDuration("healthz", "GET", "200", 0.3)
				RecordErrorByType("server_error", "high")
				RecordErrorByEndpoint("healthz", "GET", "server_error")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(8)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)

			out, err := testutil.GatherAndCount(GetRegistry(), "cropyield_predictor_predictions_total")
			So(err, ShouldBeNil)
			So(out, ShouldBeGreaterThan, 0)
			So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
		})
	})
}
