// Package gemini implements [sketchui.Provider] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK. The sketch travels as inline
// image data; streaming uses the SDK's iter.Seq2 iterator, pulled one
// chunk at a time behind the [sketchui.Stream] interface.
package gemini

const (
	defaultModel     = "gemini-2.5-flash"
	defaultMaxTokens = 65536
)
