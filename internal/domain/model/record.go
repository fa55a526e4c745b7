// Package model holds the request, record, and result shapes that flow
// between the form, the prediction service, and the model backends.
package model

import "strings"

// Column names in the exact order the model was trained on.
const (
	ColState        = "State_Name"
	ColDistrict     = "District_Name"
	ColCropYear     = "Crop_Year"
	ColSeason       = "Season"
	ColCrop         = "Crop"
	ColTemperature  = "Temperature"
	ColHumidity     = "Humidity"
	ColSoilMoisture = "Soil_Moisture"
	ColArea         = "Area"
)

// Columns is the tabular input contract of the model. Record mirrors it field by field.
var Columns = []string{
	ColState,
	ColDistrict,
	ColCropYear,
	ColSeason,
	ColCrop,
	ColTemperature,
	ColHumidity,
	ColSoilMoisture,
	ColArea,
}

// CategoricalColumns are the text-valued columns; Crop_Year is one of them.
var CategoricalColumns = []string{ColState, ColDistrict, ColCropYear, ColSeason, ColCrop}

// NumericColumns are the float-valued columns.
var NumericColumns = []string{ColTemperature, ColHumidity, ColSoilMoisture, ColArea}

// Request is one form submission. It is built once at the submit boundary and
// passed by value; nothing downstream mutates it.
type Request struct {
	State        string  `json:"state"`
	District     string  `json:"district"`
	CropYear     string  `json:"cropYear"`
	Season       string  `json:"season"`
	Crop         string  `json:"crop"`
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	SoilMoisture float64 `json:"soilMoisture"`
	Area         float64 `json:"area"`
}

// Normalize trims surrounding whitespace from the text fields.
func (r Request) Normalize() Request {
	r.State = strings.TrimSpace(r.State)
	r.District = strings.TrimSpace(r.District)
	r.CropYear = strings.TrimSpace(r.CropYear)
	r.Season = strings.TrimSpace(r.Season)
	r.Crop = strings.TrimSpace(r.Crop)
	return r
}

// Record converts the request into the model's tabular row.
func (r Request) Record() Record {
	return Record{
		State:        r.State,
		District:     r.District,
		CropYear:     r.CropYear,
		Season:       r.Season,
		Crop:         r.Crop,
		Temperature:  r.Temperature,
		Humidity:     r.Humidity,
		SoilMoisture: r.SoilMoisture,
		Area:         r.Area,
	}
}

// Record is one row of model input. Field order and csv tags match Columns.
type Record struct {
	State        string  `csv:"State_Name"`
	District     string  `csv:"District_Name"`
	CropYear     string  `csv:"Crop_Year"`
	Season       string  `csv:"Season"`
	Crop         string  `csv:"Crop"`
	Temperature  float64 `csv:"Temperature"`
	Humidity     float64 `csv:"Humidity"`
	SoilMoisture float64 `csv:"Soil_Moisture"`
	Area         float64 `csv:"Area"`
}

// Values returns the row in column order: strings for categorical columns,
// float64 for numeric ones.
func (r Record) Values() []any {
	return []any{
		r.State,
		r.District,
		r.CropYear,
		r.Season,
		r.Crop,
		r.Temperature,
		r.Humidity,
		r.SoilMoisture,
		r.Area,
	}
}

// Categorical returns the text value of a categorical column.
func (r Record) Categorical(col string) (string, bool) {
	switch col {
	case ColState:
		return r.State, true
	case ColDistrict:
		return r.District, true
	case ColCropYear:
		return r.CropYear, true
	case ColSeason:
		return r.Season, true
	case ColCrop:
		return r.Crop, true
	}
	return "", false
}

// Numeric returns the value of a numeric column.
func (r Record) Numeric(col string) (float64, bool) {
	switch col {
	case ColTemperature:
		return r.Temperature, true
	case ColHumidity:
		return r.Humidity, true
	case ColSoilMoisture:
		return r.SoilMoisture, true
	case ColArea:
		return r.Area, true
	}
	return 0, false
}

// Request converts the row back into a request.
func (r Record) Request() Request {
	return Request{
		State:        r.State,
		District:     r.District,
		CropYear:     r.CropYear,
		Season:       r.Season,
		Crop:         r.Crop,
		Temperature:  r.Temperature,
		Humidity:     r.Humidity,
		SoilMoisture: r.SoilMoisture,
		Area:         r.Area,
	}
}

// Result is the outcome of one prediction.
type Result struct {
	PredictedYield      float64 `json:"predictedYield"`
	PredictedProduction float64 `json:"predictedProduction"`
	// IsFallback marks a placeholder estimate produced without a model.
	IsFallback bool `json:"isFallback"`
}

// NewResult derives production from yield and area.
func NewResult(yield, area float64, fallback bool) Result {
	return Result{
		PredictedYield:      yield,
		PredictedProduction: yield * area,
		IsFallback:          fallback,
	}
}
