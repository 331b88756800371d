package config

const (
	defaultProvider   = "groq"
	defaultModel      = "llama-3.3-70b-versatile"
	defaultLLMTimeout = "2m"

	defaultHubEndpoint    = "https://huggingface.co"
	defaultHubRevision    = "main"
	defaultHubConcurrency = 4

	defaultArtifactsRoot     = "."
	defaultArtifactsAttempts = 2

	defaultAPIListen = ":8080"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		LLM: LLMConfig{
			Provider: defaultProvider,
			Model:    defaultModel,
			Timeout:  defaultLLMTimeout,
		},
		Hub: HubConfig{
			Endpoint:    defaultHubEndpoint,
			Revision:    defaultHubRevision,
			Concurrency: defaultHubConcurrency,
		},
		Artifacts: ArtifactsConfig{
			Root:     defaultArtifactsRoot,
			Attempts: defaultArtifactsAttempts,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
	}
}
