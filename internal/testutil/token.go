package testutil

// FixedTokenGenerator returns the same trace token every time.
//
// Stores minted with a fixed token produce byte-identical golden
// snapshots across runs, unlike the store's default UUIDv7 tokens.
//
// Thread-safety: FixedTokenGenerator is stateless and safe for
// concurrent use.
type FixedTokenGenerator struct {
	token string
}

// NewFixedTokenGenerator creates a fixed trace token generator.
//
// The token is typically set in the scenario YAML:
//
//	trace_token: "test-trace-00000000-0000-0000-0000-000000000001"
//
// If token is empty, Generate() returns "test-trace-default".
func NewFixedTokenGenerator(token string) *FixedTokenGenerator {
	if token == "" {
		token = "test-trace-default"
	}
	return &FixedTokenGenerator{token: token}
}

// Generate returns the fixed trace token.
func (g *FixedTokenGenerator) Generate() string {
	return g.token
}
