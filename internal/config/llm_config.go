package config

import (
	"strconv"
	"time"
)

type LLMConfig interface {
	GetOpenAIAPIKey() string
	GetOpenAIBaseURL() string
	GetLLMModel() string
	GetLLMMaxTokens() int
	GetLLMTemperature() float64
	GetLLMRequestTimeout() time.Duration
}

type LLM struct{}

var _ LLMConfig = LLM{}

// GetOpenAIAPIKey returns the completion API key. When empty the service runs
// against the deterministic mock provider instead of a live backend.
func (LLM) GetOpenAIAPIKey() string {
	return GetEnv("OPENAI_API_KEY", "")
}

func (LLM) GetOpenAIBaseURL() string {
	return GetEnv("OPENAI_BASE_URL", "https://api.openai.com/v1")
}

func (LLM) GetLLMModel() string {
	return GetEnv("LLM_MODEL", "gpt-4o-mini")
}

func (LLM) GetLLMMaxTokens() int {
	n, err := strconv.Atoi(GetEnv("LLM_MAX_TOKENS", "1024"))
	if err != nil || n <= 0 {
		n = 1024
	}
	return n
}

func (LLM) GetLLMTemperature() float64 {
	f, err := strconv.ParseFloat(GetEnv("LLM_TEMPERATURE", "0.7"), 64)
	if err != nil || f < 0 {
		f = 0.7
	}
	return f
}

func (LLM) GetLLMRequestTimeout() time.Duration {
	seconds, err := strconv.Atoi(GetEnv("LLM_REQUEST_TIMEOUT_SECONDS", "60"))
	if err != nil || seconds <= 0 {
		seconds = 60
	}
	return time.Duration(seconds) * time.Second
}
