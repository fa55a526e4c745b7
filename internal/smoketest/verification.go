package smoketest

import (
	"math"

	"github.com/okian/cropyield/internal/domain/model"
)

// productionMatches reports whether production equals yield times area.
func productionMatches(req model.Request, res model.Result) bool {
	want := res.PredictedYield * req.Area
	return math.Abs(res.PredictedProduction-want) <= productionTolerance*math.Max(1, math.Abs(want))
}

// sameResult reports whether two answers to the same request agree exactly.
func sameResult(a, b model.Result) bool {
	return a.PredictedYield == b.PredictedYield &&
		a.PredictedProduction == b.PredictedProduction &&
		a.IsFallback == b.IsFallback
}
