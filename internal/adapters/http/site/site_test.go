package site

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/okian/cropyield/internal/domain/catalog"
	"github.com/okian/cropyield/internal/domain/model"
	"github.com/okian/cropyield/internal/domain/prediction"
	"github.com/okian/cropyield/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type fakePredictor struct {
	err   error
	yield float64
}

func (f fakePredictor) Name() string { return "fake" }

func (f fakePredictor) Predict(_ context.Context, records []model.Record) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]float64, len(records))
	for i := range out {
		out[i] = f.yield
	}
	return out, nil
}

// deps adapts a prediction.Service to Dependencies.
type deps struct {
	svc *prediction.Service
}

func (d deps) Catalog() *catalog.Catalog { return d.svc.Catalog() }

func (d deps) Predict(ctx context.Context, req model.Request) (model.Result, error) {
	return d.svc.Predict(ctx, req)
}

func newTestMux(loader prediction.Loader) *http.ServeMux {
	h, err := NewHandler(deps{svc: prediction.New(catalog.New(), loader)})
	if err != nil {
		panic(err)
	}
	mux := http.NewServeMux()
	Register(context.Background(), mux, h)
	return mux
}

func loaderFor(p prediction.Predictor) prediction.Loader {
	return func(context.Context) (prediction.Predictor, error) { return p, nil }
}

func biharForm() url.Values {
	return url.Values{
		"state":        {"Bihar"},
		"district":     {"DARBHANGA"},
		"cropYear":     {"2015"},
		"season":       {"Kharif"},
		"crop":         {"Rice"},
		"temperature":  {"25"},
		"humidity":     {"65"},
		"soilMoisture": {"58"},
		"area":         {"100"},
	}
}

func submit(mux *http.ServeMux, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func get(mux *http.ServeMux, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestFormRender(t *testing.T) {
	Convey("Given the form handler", t, func() {
		mux := newTestMux(loaderFor(fakePredictor{yield: 2}))
		c := catalog.New()
		def := c.DefaultRequest()

		Convey("When rendering the empty form", func() {
			w := get(mux, "/")

			Convey("Then the first state and its first district are selected", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				body := w.Body.String()
				So(body, ShouldContainSubstring, `<option value="`+def.State+`" selected>`)
				So(body, ShouldContainSubstring, `<option value="`+def.District+`" selected>`)
				So(body, ShouldContainSubstring, `value="2020"`)
				So(body, ShouldContainSubstring, `id="temperature" name="temperature" type="range" min="10" max="50" step="1" value="30"`)
				So(body, ShouldContainSubstring, "Fill in the form")
			})
		})

		Convey("When the state changes", func() {
			w := get(mux, "/?state=Bihar")

			Convey("Then the district resets to the state's first district", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := w.Body.String()
				So(body, ShouldContainSubstring, `<option value="Bihar" selected>`)
				So(body, ShouldContainSubstring, `<option value="ARARIA" selected>`)
				So(body, ShouldContainSubstring, `<option value="DARBHANGA">`)
				So(body, ShouldNotContainSubstring, `<option value="ANANTAPUR"`)
			})
		})

		Convey("When the state is unknown", func() {
			w := get(mux, "/?state=Atlantis")

			Convey("Then the defaults are rendered", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `<option value="`+def.State+`" selected>`)
			})
		})

		Convey("When fetching a static asset", func() {
			w := get(mux, "/static/style.css")

			Convey("Then it is served from the embedded files", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, ".result-card")
			})
		})

		Convey("When requesting an unknown page", func() {
			w := get(mux, "/some-asset")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestFormSubmit(t *testing.T) {
	Convey("Given the form handler with a ready model", t, func() {
		mux := newTestMux(loaderFor(fakePredictor{yield: 2.5}))

		Convey("When submitting the Bihar scenario", func() {
			w := submit(mux, biharForm())

			Convey("Then yield and production are shown", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := w.Body.String()
				So(body, ShouldContainSubstring, `<strong id="yield">2.5000</strong>`)
				So(body, ShouldContainSubstring, `<strong id="production">250.00</strong>`)
				So(body, ShouldNotContainSubstring, "Demo mode")
				So(body, ShouldContainSubstring, `<option value="DARBHANGA" selected>`)
			})
		})

		Convey("When submitting a district of another state", func() {
			form := biharForm()
			form.Set("district", "PARIS")
			w := submit(mux, form)

			Convey("Then the district error is shown", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, `data-field="district"`)
				So(w.Body.String(), ShouldNotContainSubstring, `id="yield"`)
			})
		})

		Convey("When submitting a non-positive area", func() {
			form := biharForm()
			form.Set("area", "0")
			w := submit(mux, form)

			Convey("Then the area error is shown", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, `data-field="area"`)
				So(w.Body.String(), ShouldContainSubstring, "greater than 0")
			})
		})

		Convey("When submitting a non-numeric temperature", func() {
			form := biharForm()
			form.Set("temperature", "hot")
			w := submit(mux, form)

			Convey("Then the temperature error is shown", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, `data-field="temperature"`)
			})
		})
	})

	Convey("Given the form handler without a model", t, func() {
		mux := newTestMux(func(context.Context) (prediction.Predictor, error) {
			return nil, errors.New("model/yield_pipeline.json: no such file")
		})

		Convey("When submitting temperature 30 and soil moisture 45", func() {
			form := biharForm()
			form.Set("temperature", "30")
			form.Set("soilMoisture", "45")
			w := submit(mux, form)

			Convey("Then the simulated estimate is flagged", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := w.Body.String()
				So(body, ShouldContainSubstring, "Demo mode")
				So(body, ShouldContainSubstring, `<strong id="yield">0.5250</strong>`)
				So(body, ShouldContainSubstring, `<strong id="production">52.50</strong>`)
			})
		})
	})

	Convey("Given the form handler whose model fails", t, func() {
		mux := newTestMux(loaderFor(fakePredictor{err: errors.New("column mismatch")}))

		Convey("When submitting a valid form", func() {
			w := submit(mux, biharForm())

			Convey("Then a generic failure is shown with the cause as caption", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldContainSubstring, msgPredictionFailed)
				So(w.Body.String(), ShouldContainSubstring, "column mismatch")
			})
		})
	})
}

func TestSiteHandlerWithNilMux(t *testing.T) {
	Convey("Given a nil mux", t, func() {
		h, err := NewHandler(deps{svc: prediction.New(catalog.New(), nil)})
		So(err, ShouldBeNil)

		Convey("Then registering should panic", func() {
			So(func() { Register(context.Background(), nil, h) }, ShouldPanic)
		})
	})
}

func TestParseRequest(t *testing.T) {
	Convey("Given a posted form", t, func() {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(biharForm().Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		Convey("Then every field is carried into the request", func() {
			got, err := parseRequest(req)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, model.Request{
				State:        "Bihar",
				District:     "DARBHANGA",
				CropYear:     "2015",
				Season:       "Kharif",
				Crop:         "Rice",
				Temperature:  25,
				Humidity:     65,
				SoilMoisture: 58,
				Area:         100,
			})
		})
	})
}
