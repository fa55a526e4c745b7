package smoketest

// Verification constants.
const (
	// determinismSample is how many successful requests are resubmitted.
	determinismSample    = 10
	productionTolerance  = 1e-9
	maxGeneratedArea     = 1000.0
	minGeneratedArea     = 1.0
	PercentageMultiplier = 100
)
