package sketchui

// Request carries model selection and generation parameters.
// The provider uses its own defaults when fields are zero/nil.
type Request struct {
	Model        string // model ID, provider-specific; empty = provider default
	SystemPrompt string
	Messages     []Message
	MaxTokens    int      // 0 = provider default
	Temperature  *float64 // nil = provider default
}
