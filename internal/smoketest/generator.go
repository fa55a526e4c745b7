package smoketest

import (
	"errors"
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/okian/cropyield/internal/domain/catalog"
	"github.com/okian/cropyield/internal/domain/model"
)

// ErrEmptyCatalog is returned when the catalog has nothing to pick from.
var ErrEmptyCatalog = errors.New("catalog has no selectable values")

// generateRequests builds n valid requests from snap. The same seed and
// catalog always produce the same requests.
func generateRequests(snap catalog.Snapshot, n int, seed uint64) ([]model.Request, error) {
	if len(snap.States) == 0 || len(snap.Seasons) == 0 || len(snap.Crops) == 0 {
		return nil, ErrEmptyCatalog
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	reqs := make([]model.Request, n)
	for i := range reqs {
		state := pick(rng, snap.States)
		districts := snap.Districts[state]
		if len(districts) == 0 {
			return nil, ErrEmptyCatalog
		}
		year := stepped(rng, snap.Ranges[catalog.FieldCropYear])

		area := snap.Ranges[catalog.FieldArea]
		area.Min = math.Max(area.Min, minGeneratedArea)
		area.Max = math.Min(area.Max, maxGeneratedArea)

		reqs[i] = model.Request{
			State:        state,
			District:     pick(rng, districts),
			CropYear:     strconv.Itoa(int(year)),
			Season:       pick(rng, snap.Seasons),
			Crop:         pick(rng, snap.Crops),
			Temperature:  stepped(rng, snap.Ranges[catalog.FieldTemperature]),
			Humidity:     stepped(rng, snap.Ranges[catalog.FieldHumidity]),
			SoilMoisture: stepped(rng, snap.Ranges[catalog.FieldSoilMoisture]),
			Area:         stepped(rng, area),
		}
	}
	return reqs, nil
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.IntN(len(values))]
}

// stepped returns a value on the range's step grid, never outside [Min, Max].
func stepped(rng *rand.Rand, r catalog.Range) float64 {
	if r.Step <= 0 || r.Max <= r.Min {
		return r.Min
	}
	steps := int((r.Max - r.Min) / r.Step)
	v := r.Min + float64(rng.IntN(steps+1))*r.Step
	return math.Min(v, r.Max)
}
