// Package catalog is the static reference data behind the form: which states,
// districts, seasons and crops are valid, and the bounds of each numeric input.
package catalog

import (
	"fmt"
	"slices"
	"sort"
	"strconv"

	"github.com/okian/cropyield/internal/domain/model"
)

// Field names a numeric input.
type Field string

// Numeric inputs with a configured range.
const (
	FieldTemperature  Field = "temperature"
	FieldHumidity     Field = "humidity"
	FieldSoilMoisture Field = "soilMoisture"
	FieldArea         Field = "area"
	FieldCropYear     Field = "cropYear"
)

// NumericFields lists the ranged fields in form order.
var NumericFields = []Field{FieldCropYear, FieldTemperature, FieldHumidity, FieldSoilMoisture, FieldArea}

// Range bounds a numeric input. Min <= Default <= Max.
type Range struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
	Step    float64 `json:"step"`
	Unit    string  `json:"unit,omitempty"`
}

// Contains reports whether v lies within [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Catalog is immutable after construction and safe for concurrent use.
type Catalog struct {
	states    []string
	districts map[string][]string
	seasons   []string
	crops     []string
	ranges    map[Field]Range
}

// New builds the canonical catalog with every list sorted.
func New() *Catalog {
	c := &Catalog{
		districts: make(map[string][]string, len(stateDistricts)),
		seasons:   sorted(seasons),
		crops:     sorted(crops),
		ranges:    make(map[Field]Range, len(ranges)),
	}
	for state, ds := range stateDistricts {
		c.states = append(c.states, state)
		c.districts[state] = sorted(ds)
	}
	sort.Strings(c.states)
	for f, r := range ranges {
		c.ranges[f] = r
	}
	return c
}

func sorted(in []string) []string {
	out := slices.Clone(in)
	sort.Strings(out)
	return out
}

// States returns the sorted state names.
func (c *Catalog) States() []string {
	return slices.Clone(c.states)
}

// Districts returns the sorted districts of state.
func (c *Catalog) Districts(state string) ([]string, error) {
	ds, ok := c.districts[state]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownState, state)
	}
	return slices.Clone(ds), nil
}

// Seasons returns the sorted season names.
func (c *Catalog) Seasons() []string {
	return slices.Clone(c.seasons)
}

// Crops returns the sorted crop names.
func (c *Catalog) Crops() []string {
	return slices.Clone(c.crops)
}

// Range returns the bounds and default of a numeric field.
func (c *Catalog) Range(f Field) (Range, error) {
	r, ok := c.ranges[f]
	if !ok {
		return Range{}, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	return r, nil
}

// HasState reports whether state is a catalog key.
func (c *Catalog) HasState(state string) bool {
	_, ok := c.districts[state]
	return ok
}

// CheckDistrict validates that district belongs to state.
func (c *Catalog) CheckDistrict(state, district string) error {
	ds, ok := c.districts[state]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownState, state)
	}
	if _, found := slices.BinarySearch(ds, district); !found {
		return fmt.Errorf("%w: %q not in %q", ErrUnknownDistrict, district, state)
	}
	return nil
}

// HasSeason reports whether season is a valid option.
func (c *Catalog) HasSeason(season string) bool {
	_, found := slices.BinarySearch(c.seasons, season)
	return found
}

// HasCrop reports whether crop is a valid option.
func (c *Catalog) HasCrop(crop string) bool {
	_, found := slices.BinarySearch(c.crops, crop)
	return found
}

// Snapshot is the serializable view served to the form and API clients.
type Snapshot struct {
	States    []string            `json:"states"`
	Districts map[string][]string `json:"districts"`
	Seasons   []string            `json:"seasons"`
	Crops     []string            `json:"crops"`
	Ranges    map[Field]Range     `json:"ranges"`
}

// Snapshot returns a deep copy of the catalog contents.
func (c *Catalog) Snapshot() Snapshot {
	s := Snapshot{
		States:    c.States(),
		Districts: make(map[string][]string, len(c.districts)),
		Seasons:   c.Seasons(),
		Crops:     c.Crops(),
		Ranges:    make(map[Field]Range, len(c.ranges)),
	}
	for state, ds := range c.districts {
		s.Districts[state] = slices.Clone(ds)
	}
	for f, r := range c.ranges {
		s.Ranges[f] = r
	}
	return s
}

// DefaultRequest returns the first entry of every list and each range's default.
func (c *Catalog) DefaultRequest() model.Request {
	state := c.states[0]
	return model.Request{
		State:        state,
		District:     c.districts[state][0],
		CropYear:     strconv.Itoa(int(c.ranges[FieldCropYear].Default)),
		Season:       c.seasons[0],
		Crop:         c.crops[0],
		Temperature:  c.ranges[FieldTemperature].Default,
		Humidity:     c.ranges[FieldHumidity].Default,
		SoilMoisture: c.ranges[FieldSoilMoisture].Default,
		Area:         c.ranges[FieldArea].Default,
	}
}
