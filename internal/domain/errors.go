package domain

import "errors"

// Error taxonomy for the pipeline and query layer. Wrap with fmt.Errorf
// ("...: %w") and check with errors.Is.
var (
	// ErrSourceUnavailable marks a network or parse failure in a source
	// adapter. Fatal to the current pipeline run, never retried.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrStoreWrite marks a constraint or storage failure during a replace
	// load. Fatal to the current pipeline run.
	ErrStoreWrite = errors.New("store write failed")

	// ErrQuery marks a malformed or failing read-only query. Recoverable:
	// callers render the message and keep going.
	ErrQuery = errors.New("query failed")
)
