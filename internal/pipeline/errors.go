package pipeline

import "fmt"

// IngestionError marks a source that failed to read or parse. It is fatal:
// overlap counting needs every source present, so no partial merge is
// attempted.
type IngestionError struct {
	Tag  string
	Path string
	Err  error
}

func (e *IngestionError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("ingest source %q (%s): %v", e.Tag, e.Path, e.Err)
	}
	return fmt.Sprintf("ingest source %q: %v", e.Tag, e.Err)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// ConfigurationError marks a run whose alias configuration could not locate
// the identifier column in any source. It aborts the run before scoring.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("column %s not found after normalization; check the aliases configuration", e.Field)
}
