package domain

// ProviderCandidate is one upstream vendor+model pairing eligible to
// serve a slug. Candidates are tried strictly in configuration order.
type ProviderCandidate struct {
	ProviderName    string
	ProviderModelID string
	ExtraOptions    map[string]string
}

// ModelRoute maps a user-facing slug to its ordered provider fallback
// chain. Routes are loaded once at startup and never mutated.
type ModelRoute struct {
	Slug       string
	Category   Category
	Candidates []ProviderCandidate
}
