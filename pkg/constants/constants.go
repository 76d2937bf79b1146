// Package constants provides shared constants used throughout the tradematch
// codebase: window sizes, reserved column names, outcome labels, file
// permissions and CLI defaults.
package constants

import "time"

// Processing limits.
const (
	// DefaultChunkSize is the number of records processed per window during
	// key generation and identity derivation.
	DefaultChunkSize = 100_000

	// MinChunkSize is the smallest accepted window.
	MinChunkSize = 1

	// DefaultParallelContexts bounds how many business contexts the CLI
	// reconciles at once.
	DefaultParallelContexts = 2

	// SQLiteBatchSize is the number of identities inserted per transaction by
	// the spill-to-disk index.
	SQLiteBatchSize = 10_000
)

// Reserved column names added by the engine.
const (
	// DeduplicationKeyColumn exposes the deduplication identity for auditing.
	DeduplicationKeyColumn = "deduplication_key"

	// MatchOutcomeColumn carries matched, left-only or right-only.
	MatchOutcomeColumn = "match_outcome"

	// MatchKeyColumn names the key pair that produced a match.
	MatchKeyColumn = "match_key"

	// ReportDateColumn is appended by the CLI when a report date is known.
	ReportDateColumn = "report_date"

	// EntityNameSuffix names the column added next to an enriched LEI
	// column: "Reporting Counterparty LEI" gains
	// "Reporting Counterparty LEI Entity Name".
	EntityNameSuffix = " Entity Name"

	// PlaceholderPrefix starts synthetic identities for records whose
	// candidate identity fields are all empty. Lowercase and underscore keep
	// it disjoint from normalized identities, which are [A-Z0-9] only.
	PlaceholderPrefix = "missing_placeholder_"
)

// Side labels.
const (
	SidePrimary   = "primary"
	SideReference = "reference"
)

// Columns read from a GLEIF entity extract.
const (
	GLEIFLEIColumn  = "LEI"
	GLEIFNameColumn = "Entity Name"
)

// Default side prefixes applied before matching.
const (
	DefaultPrimaryPrefix   = "TSR_"
	DefaultReferencePrefix = "Deriv1_"
)

// Output defaults.
const (
	// DefaultOutputSeparator is the delimiter of written reconciliation files.
	DefaultOutputSeparator = '|'

	// DefaultInputSeparator is the delimiter of ingested CSV files.
	DefaultInputSeparator = ','

	// UnmatchedLabel replaces left-only in written output when relabelling
	// is enabled.
	UnmatchedLabel = "unmatched"
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Timeouts.
const (
	// ShutdownTimeout bounds cleanup after a failed CLI run.
	ShutdownTimeout = 5 * time.Second
)
