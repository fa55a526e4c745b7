package prediction

import (
	"fmt"
	"math"
	"strconv"

	"github.com/okian/cropyield/internal/domain/catalog"
	"github.com/okian/cropyield/internal/domain/model"
)

// Request field names as reported in InvalidInputError.Field.
const (
	FieldState        = "state"
	FieldDistrict     = "district"
	FieldCropYear     = "cropYear"
	FieldSeason       = "season"
	FieldCrop         = "crop"
	FieldTemperature  = "temperature"
	FieldHumidity     = "humidity"
	FieldSoilMoisture = "soilMoisture"
	FieldArea         = "area"
)

const cropYearDigits = 4

func invalid(field, format string, args ...any) error {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks req against the catalog in field-declaration order and
// returns the first violation as *InvalidInputError.
func Validate(c *catalog.Catalog, req model.Request) error {
	switch {
	case req.State == "":
		return invalid(FieldState, "is required")
	case !c.HasState(req.State):
		return invalid(FieldState, "unknown state %q", req.State)
	}

	switch {
	case req.District == "":
		return invalid(FieldDistrict, "is required")
	case c.CheckDistrict(req.State, req.District) != nil:
		return invalid(FieldDistrict, "%q is not a district of %q", req.District, req.State)
	}

	if err := validateCropYear(c, req.CropYear); err != nil {
		return err
	}

	switch {
	case req.Season == "":
		return invalid(FieldSeason, "is required")
	case !c.HasSeason(req.Season):
		return invalid(FieldSeason, "unknown season %q", req.Season)
	}

	switch {
	case req.Crop == "":
		return invalid(FieldCrop, "is required")
	case !c.HasCrop(req.Crop):
		return invalid(FieldCrop, "unknown crop %q", req.Crop)
	}

	if err := validateRange(c, FieldTemperature, catalog.FieldTemperature, req.Temperature); err != nil {
		return err
	}
	if err := validateRange(c, FieldHumidity, catalog.FieldHumidity, req.Humidity); err != nil {
		return err
	}
	if err := validateRange(c, FieldSoilMoisture, catalog.FieldSoilMoisture, req.SoilMoisture); err != nil {
		return err
	}
	if req.Area <= 0 {
		return invalid(FieldArea, "must be greater than 0")
	}
	return validateRange(c, FieldArea, catalog.FieldArea, req.Area)
}

func validateCropYear(c *catalog.Catalog, year string) error {
	if year == "" {
		return invalid(FieldCropYear, "is required")
	}
	if len(year) != cropYearDigits {
		return invalid(FieldCropYear, "must be a four-digit year")
	}
	y, err := strconv.Atoi(year)
	if err != nil || y < 0 {
		return invalid(FieldCropYear, "must be a four-digit year")
	}
	r, err := c.Range(catalog.FieldCropYear)
	if err != nil {
		return invalid(FieldCropYear, "has no configured range")
	}
	if !r.Contains(float64(y)) {
		return invalid(FieldCropYear, "must be between %g and %g", r.Min, r.Max)
	}
	return nil
}

func validateRange(c *catalog.Catalog, name string, f catalog.Field, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(name, "must be a finite number")
	}
	r, err := c.Range(f)
	if err != nil {
		return invalid(name, "has no configured range")
	}
	if !r.Contains(v) {
		return invalid(name, "must be between %g and %g", r.Min, r.Max)
	}
	return nil
}
