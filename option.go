package realtime

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/wirevox/realtime-go/events"
	"github.com/wirevox/realtime-go/tool"
)

const (
	ApiKeyEnvVarNameShort = "OPENAI_KEY"
	ApiKeyEnvVarNameLong  = "OPENAI_API_KEY"

	defaultAzureAPIVersion = "2024-10-01-preview"
	defaultAzurePath       = "/openai/realtime"
)

type clientConfig struct {
	model            string
	apiKey           string
	azureEndpoint    string
	azureDeployment  string
	azureAPIVersion  string
	azurePath        string
	azureNoConfigAck bool
	instructions     string
	voice            string
	temperature      float64
	tools            []tool.Tool
	transcription    *events.InputAudioTranscription
	turnDetection    *events.TurnDetection
	logger           *slog.Logger
}

func (c *clientConfig) isAzure() bool { return c.azureEndpoint != "" }

func (c *clientConfig) validate() error {
	if c.apiKey == "" {
		return fmt.Errorf("missing api key")
	}
	if c.isAzure() {
		if c.azureDeployment == "" {
			return fmt.Errorf("missing azure deployment")
		}
		return nil
	}
	if c.model == "" {
		return fmt.Errorf("missing model")
	}
	return nil
}

type ClientOption func(*clientConfig)

func WithKey(apiKey string) ClientOption {
	return func(o *clientConfig) {
		o.apiKey = apiKey
	}
}

func WithEnvKey(vars ...string) ClientOption {
	return func(o *clientConfig) {
		for _, envVarName := range vars {
			if k := os.Getenv(envVarName); k != "" {
				o.apiKey = k
				return
			}
		}
	}
}

func WithModel(model string) ClientOption {
	return func(o *clientConfig) {
		o.model = model
	}
}

// WithAzureEndpoint switches the client to an Azure OpenAI resource,
// e.g. "wss://my-resource.openai.azure.com".
func WithAzureEndpoint(endpoint, deployment string) ClientOption {
	return func(o *clientConfig) {
		o.azureEndpoint = endpoint
		o.azureDeployment = deployment
	}
}

func WithAzureAPIVersion(version string) ClientOption {
	return func(o *clientConfig) {
		o.azureAPIVersion = version
	}
}

// WithAzureNoConfigAck marks the deployment as one that never
// acknowledges session.update. Configure then builds the session
// snapshot from the request itself; the snapshot will not reflect any
// server-side adjustment of the requested values.
func WithAzureNoConfigAck() ClientOption {
	return func(o *clientConfig) {
		o.azureNoConfigAck = true
	}
}

func WithVoice(voice string) ClientOption {
	return func(o *clientConfig) {
		o.voice = voice
	}
}

func WithInstructions(instructions string) ClientOption {
	return func(o *clientConfig) {
		o.instructions = instructions
	}
}

func WithTemperature(temperature float64) ClientOption {
	return func(o *clientConfig) {
		o.temperature = temperature
	}
}

func WithTools(tools ...tool.Tool) ClientOption {
	return func(o *clientConfig) {
		o.tools = tools
	}
}

// WithInputAudioTranscription requests transcription of committed
// input audio, e.g. model "whisper-1".
func WithInputAudioTranscription(t *events.InputAudioTranscription) ClientOption {
	return func(o *clientConfig) {
		o.transcription = t
	}
}

func WithTurnDetection(td *events.TurnDetection) ClientOption {
	return func(o *clientConfig) {
		o.turnDetection = td
	}
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(o *clientConfig) {
		o.logger = logger
	}
}

func WithDefaultLogger() ClientOption {
	return WithLogger(slog.Default())
}

func WithOptions(opts ...ClientOption) ClientOption {
	return func(o *clientConfig) {
		for _, opt := range opts {
			opt(o)
		}
	}
}

func withDefaults() ClientOption {
	return WithOptions(
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithModel("gpt-4o-realtime-preview"),
		WithVoice("coral"),
		WithTemperature(0.7),
		WithEnvKey(ApiKeyEnvVarNameShort, ApiKeyEnvVarNameLong),
		WithAzureAPIVersion(defaultAzureAPIVersion),
	)
}
