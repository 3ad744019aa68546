package config

import "os"

// applyEnvFallbacks maps conventional provider env vars onto config fields
// that were not set through the HOPQA namespace.
func applyEnvFallbacks(cfg *Config) {
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Embedding.APIKey == "" {
		// A single-provider setup can reuse the reasoning key for embeddings
		// when the base URL points at a compatible gateway.
		if cfg.Embedding.BaseURL != "" {
			cfg.Embedding.APIKey = cfg.LLM.APIKey
		}
	}
}
