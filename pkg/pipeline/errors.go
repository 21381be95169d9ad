package pipeline

import (
	"errors"
	"fmt"
)

// Failure taxonomy for one pipeline run. All of these are fatal: the run
// either writes exactly one export file or reports one of these kinds.
// The CLI layer maps them to distinct exit codes.
var (
	// ErrDataLoad covers transport/remote failures reading the catalog or
	// the sales source. The core never retries; the caller may retry the
	// whole run.
	ErrDataLoad = errors.New("data load failed")

	// ErrDataQuality indicates a structural mismatch in a loaded source,
	// such as missing required columns after an upstream schema change.
	ErrDataQuality = errors.New("data quality check failed")

	// ErrTooManyFiles specializes ErrDataLoad: the requested range exceeds
	// the safety bound. Raised from range arithmetic before any fetch.
	ErrTooManyFiles = fmt.Errorf("%w: too many sales files", ErrDataLoad)

	// ErrJoinIntegrity reports a many-to-one cardinality violation after
	// catalog deduplication. Should be unreachable, but checked.
	ErrJoinIntegrity = errors.New("join cardinality violated")
)
