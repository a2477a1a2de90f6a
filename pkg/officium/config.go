package officium

// Config holds the safety limits for the resolution engine.
type Config struct {
	// MaxInclusionPasses bounds the fixpoint expansion of inclusion
	// directives within a single section. Self-referential data files
	// terminate with their remaining directives left verbatim instead of
	// looping.
	MaxInclusionPasses int
}

// DefaultConfig returns a Config with safe default values.
func DefaultConfig() Config {
	return Config{
		MaxInclusionPasses: 10,
	}
}
