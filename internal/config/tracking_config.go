package config

type TrackingConfig interface {
	GetPostHogAPIKey() string
	GetPostHogEndpoint() string
}

type Tracking struct{}

var _ TrackingConfig = Tracking{}

// GetPostHogAPIKey returns the PostHog project API key. When empty, inference
// tracking is a no-op.
func (Tracking) GetPostHogAPIKey() string {
	return GetEnv("POSTHOG_API_KEY", "")
}

func (Tracking) GetPostHogEndpoint() string {
	return GetEnv("POSTHOG_ENDPOINT", "https://app.posthog.com")
}
