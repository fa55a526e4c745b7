package smoketest

import "os"

// ShowHelp prints usage information for the smoke tool.
func ShowHelp() {
	os.Stdout.WriteString(`Crop Yield Smoke Tool
=====================

Submits seeded random predictions to a running instance concurrently and
checks every answer.

Usage:
  go run ./cmd/smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -requests int
        Number of predictions to submit (default 200)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -seed uint
        Seed for request generation (default 1)
  -verbose
        Log every response
  -help
        Show this help message

Checks:
  - /healthz answers 200
  - the catalog can be fetched
  - every prediction satisfies production = yield * area
  - resubmitting a sample returns identical results

Examples:
  # Smoke a local instance
  go run ./cmd/smoke

  # Heavier run against another host
  go run ./cmd/smoke -requests 5000 -workers 32 -url http://yield.internal:8080
`)
}
