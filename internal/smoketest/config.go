package smoketest

import (
	"time"

	"github.com/okian/cropyield/internal/domain/model"
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Requests int           // Number of predictions to submit
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // HTTP request timeout
	Seed     uint64        // Seed for request generation
	Verbose  bool          // Log every response
	RunID    string        // Prefix of the X-Request-ID of every call
}

// Stats holds run statistics.
type Stats struct {
	Generated        int
	Submitted        int
	Successful       int
	Fallback         int
	Failed           int
	Mismatches       int
	Resubmitted      int
	NonDeterministic int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}

// outcome is the answer to one submitted request.
type outcome struct {
	req    model.Request
	result model.Result
	err    error
}
