package app

// Config contains the orchestrator's runtime options.
type Config struct {
	// BatchWorkers bounds concurrent URL analysis in AnalyzeBatch. Values
	// <= 1 process the batch sequentially in input order. Results are
	// always index-ordered regardless.
	BatchWorkers int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BatchWorkers: 1,
	}
}
