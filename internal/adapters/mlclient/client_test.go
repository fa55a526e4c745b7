package mlclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"

	"github.com/okian/cropyield/internal/domain/catalog"
	"github.com/okian/cropyield/internal/domain/model"
	"github.com/okian/cropyield/internal/domain/prediction"
	"github.com/okian/cropyield/pkg/logger"
)

const baseURL = "http://model.local:8501"

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type ClientTestSuite struct {
	suite.Suite
	httpClient *http.Client
	client     *Client
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) SetupSuite() {
	s.httpClient = &http.Client{}
	httpmock.ActivateNonDefault(s.httpClient)
	s.client = New(baseURL+"/", WithHTTPClient(s.httpClient), WithTimeout(time.Second))
}

func (s *ClientTestSuite) TearDownSuite() {
	httpmock.DeactivateAndReset()
}

func (s *ClientTestSuite) SetupTest() {
	httpmock.Reset()
}

func record(area float64) model.Record {
	return model.Request{
		State:        "Bihar",
		District:     "DARBHANGA",
		CropYear:     "2015",
		Season:       "Kharif",
		Crop:         "Rice",
		Temperature:  25,
		Humidity:     65,
		SoilMoisture: 58,
		Area:         area,
	}.Record()
}

func (s *ClientTestSuite) TestName() {
	s.Equal("remote:"+baseURL, s.client.Name())
}

func (s *ClientTestSuite) TestHealth() {
	httpmock.RegisterResponder(http.MethodGet, baseURL+"/health", httpmock.NewStringResponder(http.StatusOK, "ok"))
	s.NoError(s.client.Health(context.Background()))

	httpmock.Reset()
	httpmock.RegisterResponder(http.MethodGet, baseURL+"/health", httpmock.NewStringResponder(http.StatusServiceUnavailable, "warming"))
	s.ErrorIs(s.client.Health(context.Background()), ErrUnavailable)

	httpmock.Reset()
	httpmock.RegisterResponder(http.MethodGet, baseURL+"/health", httpmock.NewErrorResponder(errors.New("connection refused")))
	s.ErrorIs(s.client.Health(context.Background()), ErrUnavailable)
}

func (s *ClientTestSuite) TestPredictSendsColumnOrderedRows() {
	var got PredictRequest
	var requestID string
	httpmock.RegisterResponder(http.MethodPost, baseURL+"/predict", func(req *http.Request) (*http.Response, error) {
		requestID = req.Header.Get("X-Request-ID")
		if err := json.NewDecoder(req.Body).Decode(&got); err != nil {
			return httpmock.NewStringResponse(http.StatusBadRequest, err.Error()), nil
		}
		return httpmock.NewJsonResponse(http.StatusOK, PredictResponse{Predictions: []float64{2.5, 3.5}})
	})

	ctx := logger.WithRequestID(context.Background(), "req-7")
	out, err := s.client.Predict(ctx, []model.Record{record(100), record(10)})
	s.Require().NoError(err)
	s.Equal([]float64{2.5, 3.5}, out)
	s.Equal("req-7", requestID)

	s.Equal(model.Columns, got.Columns)
	s.Require().Len(got.Data, 2)
	s.Equal([]any{"Bihar", "DARBHANGA", "2015", "Kharif", "Rice", 25.0, 65.0, 58.0, 100.0}, got.Data[0])
	s.Equal(10.0, got.Data[1][8])
}

func (s *ClientTestSuite) TestPredictErrors() {
	cases := []struct {
		name      string
		responder httpmock.Responder
		want      error
	}{
		{"server error", httpmock.NewStringResponder(http.StatusInternalServerError, "boom"), ErrBadResponse},
		{"not json", httpmock.NewStringResponder(http.StatusOK, "<html>"), ErrBadResponse},
		{"length mismatch", httpmock.NewStringResponder(http.StatusOK, `{"predictions":[1,2,3]}`), ErrBadResponse},
		{"transport failure", httpmock.NewErrorResponder(errors.New("reset by peer")), ErrUnavailable},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			httpmock.Reset()
			httpmock.RegisterResponder(http.MethodPost, baseURL+"/predict", tc.responder)
			_, err := s.client.Predict(context.Background(), []model.Record{record(100)})
			s.ErrorIs(err, tc.want)
		})
	}
}

func (s *ClientTestSuite) TestLoaderDrivesServiceLifecycle() {
	httpmock.RegisterResponder(http.MethodGet, baseURL+"/health", httpmock.NewStringResponder(http.StatusOK, "ok"))
	httpmock.RegisterResponder(http.MethodPost, baseURL+"/predict", httpmock.NewStringResponder(http.StatusOK, `{"predictions":[2.4]}`))

	svc := prediction.New(catalog.New(), NewLoader(s.client), prediction.WithBackend("http"))
	res, err := svc.Predict(context.Background(), record(100).Request())
	s.Require().NoError(err)
	s.False(res.IsFallback)
	s.InDelta(2.4, res.PredictedYield, 1e-12)
	s.InDelta(240, res.PredictedProduction, 1e-9)
	s.Equal(prediction.StateReady, svc.State())
	s.Equal(1, httpmock.GetCallCountInfo()["GET "+baseURL+"/health"])
}

func (s *ClientTestSuite) TestUnhealthyServerDegradesService() {
	httpmock.RegisterResponder(http.MethodGet, baseURL+"/health", httpmock.NewStringResponder(http.StatusBadGateway, ""))

	svc := prediction.New(catalog.New(), NewLoader(s.client))
	s.ErrorIs(svc.Warm(context.Background()), ErrUnavailable)

	res, err := svc.Predict(context.Background(), record(100).Request())
	s.Require().NoError(err)
	s.True(res.IsFallback)
	s.Equal(0, httpmock.GetCallCountInfo()["POST "+baseURL+"/predict"])
}
