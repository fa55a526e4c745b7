package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	service "github.com/okian/cropyield/internal/app"
	"github.com/okian/cropyield/internal/config"
	"github.com/okian/cropyield/internal/domain/model"
	"github.com/okian/cropyield/internal/domain/prediction"
	"github.com/okian/cropyield/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

type constantPredictor float64

func (c constantPredictor) Name() string { return "constant" }

func (c constantPredictor) Predict(_ context.Context, records []model.Record) ([]float64, error) {
	out := make([]float64, len(records))
	for i := range out {
		out[i] = float64(c)
	}
	return out, nil
}

func constantLoader(v float64) prediction.Loader {
	return func(context.Context) (prediction.Predictor, error) { return constantPredictor(v), nil }
}

func biharRequest() model.Request {
	return model.Request{
		State:        "Bihar",
		District:     "DARBHANGA",
		CropYear:     "2015",
		Season:       "Kharif",
		Crop:         "Rice",
		Temperature:  25,
		Humidity:     65,
		SoilMoisture: 58,
		Area:         100,
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			So(svc.BatchMaxRows(), ShouldEqual, 1000)
			So(svc.Catalog().States(), ShouldNotBeEmpty)
			So(svc.GetStats()["backend"], ShouldEqual, config.BackendFile)
		})
	})

	Convey("Given a new service built from config", t, func() {
		cfg := config.New()
		cfg.ModelBackend = config.BackendHTTP
		cfg.ModelURL = "http://localhost:1"
		cfg.BatchMaxRows = 5
		svc := service.New(service.FromConfig(cfg)...)

		Convey("Then the options follow the config", func() {
			stats := svc.GetStats()
			So(stats["backend"], ShouldEqual, config.BackendHTTP)
			So(stats["batchMaxRows"], ShouldEqual, 5)
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a new service with a ready model", t, func() {
		svc := service.New(service.WithLoader("constant", constantLoader(2)), service.WithWarmUp(true))
		// Ensure service is stopped after test
		defer svc.Stop()

		Convey("When predicting before start", func() {
			_, err := svc.Predict(context.Background(), biharRequest())

			Convey("Then it is refused", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				So(svc.ModelStatus().State, ShouldEqual, "uninitialized")
			})
		})

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start with the model loaded", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldBeTrue)
				So(stats["modelState"], ShouldEqual, "ready")
				So(svc.ModelStatus().Predictor, ShouldEqual, "constant")
			})

			Convey("And starting twice is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("And predictions are counted", func() {
				res, err := svc.Predict(ctx, biharRequest())
				So(err, ShouldBeNil)
				So(res.PredictedProduction, ShouldEqual, 200)

				bad := biharRequest()
				bad.Area = 0
				_, err = svc.Predict(ctx, bad)
				So(errors.Is(err, prediction.ErrInvalidInput), ShouldBeTrue)

				stats := svc.GetStats()
				So(stats["served"], ShouldEqual, int64(1))
				So(stats["rejected"], ShouldEqual, int64(1))
			})

			Convey("And stopping refuses further predictions", func() {
				svc.Stop()
				_, err := svc.Predict(ctx, biharRequest())
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service with an unknown backend", t, func() {
		svc := service.New(service.WithLoader("pickle", nil))

		Convey("Then start fails", func() {
			So(errors.Is(svc.Start(context.Background()), service.ErrUnknownBackend), ShouldBeTrue)
		})
	})
}

func TestService_Fallback(t *testing.T) {
	Convey("Given a service whose artifact is missing", t, func() {
		svc := service.New(service.WithArtifact(filepath.Join(t.TempDir(), "absent.json")), service.WithWarmUp(true))
		defer svc.Stop()

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then it still starts and serves fallback estimates", func() {
				So(err, ShouldBeNil)
				So(svc.ModelStatus().State, ShouldEqual, "unavailable")

				res, err := svc.Predict(context.Background(), biharRequest())
				So(err, ShouldBeNil)
				So(res.IsFallback, ShouldBeTrue)
				So(svc.GetStats()["fallbacks"], ShouldEqual, int64(1))
			})
		})
	})
}

func TestService_PredictBatch(t *testing.T) {
	Convey("Given a started service with a small batch limit", t, func() {
		svc := service.New(service.WithLoader("constant", constantLoader(3)), service.WithBatchMaxRows(2))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("When the batch fits", func() {
			bad := biharRequest()
			bad.Crop = "Quinoa"
			out, err := svc.PredictBatch(context.Background(), []model.Request{biharRequest(), bad})

			Convey("Then rows keep their order", func() {
				So(err, ShouldBeNil)
				So(out[0].Result.PredictedYield, ShouldEqual, 3)
				So(errors.Is(out[1].Err, prediction.ErrInvalidInput), ShouldBeTrue)
				So(svc.GetStats()["batches"], ShouldEqual, int64(1))
			})
		})

		Convey("When the batch is too large", func() {
			_, err := svc.PredictBatch(context.Background(), make([]model.Request, 3))

			Convey("Then it is refused", func() {
				So(errors.Is(err, service.ErrBatchTooLarge), ShouldBeTrue)
			})
		})
	})
}
