// Package groq implements [sketchui.Provider] for Groq's OpenAI-compatible
// chat completions API.
//
// Images are sent inline as base64 data URLs. The response is read as SSE
// "data:" lines terminated by a "[DONE]" sentinel.
package groq

const (
	defaultBaseURL = "https://api.groq.com"
	// DefaultModel is the multimodal model used when a request names none.
	DefaultModel    = "meta-llama/llama-4-scout-17b-16e-instruct"
	completionsPath = "/openai/v1/chat/completions"
	doneSentinel    = "[DONE]"
)

// apiRequest is the JSON body sent to the chat completions endpoint.
type apiRequest struct {
	Model               string       `json:"model"`
	Messages            []apiMessage `json:"messages"`
	Stream              bool         `json:"stream"`
	MaxCompletionTokens int          `json:"max_completion_tokens,omitempty"`
	Temperature         *float64     `json:"temperature,omitempty"`
}

// apiMessage content is a plain string for system and assistant turns and
// a part list for user turns.
type apiMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type apiPart struct {
	Type     string       `json:"type"`
	Text     string       `json:"text,omitempty"`
	ImageURL *apiImageURL `json:"image_url,omitempty"`
}

type apiImageURL struct {
	URL string `json:"url"`
}

type apiChunk struct {
	ID      string      `json:"id"`
	Choices []apiChoice `json:"choices"`
	Usage   *apiUsage   `json:"usage"`
	XGroq   *struct {
		Usage *apiUsage `json:"usage"`
	} `json:"x_groq"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type apiChoice struct {
	Index int `json:"index"`
	Delta struct {
		Content   string `json:"content"`
		Reasoning string `json:"reasoning"`
	} `json:"delta"`
	FinishReason *string `json:"finish_reason"`
}

type apiUsage struct {
	PromptTokens        int `json:"prompt_tokens"`
	CompletionTokens    int `json:"completion_tokens"`
	PromptTokensDetails *struct {
		CachedTokens int `json:"cached_tokens"`
	} `json:"prompt_tokens_details"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}
