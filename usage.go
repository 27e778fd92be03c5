package sketchui

// Usage is the token accounting reported with an AssistantMessage.
//
// InputTokens excludes cached tokens. Providers whose API reports cached
// tokens as part of the prompt count subtract them and clamp at zero.
type Usage struct {
	InputTokens      int
	OutputTokens     int
	CacheReadTokens  int
	CacheWriteTokens int
}

// TotalInput is the full prompt size including cache reads and writes.
func (u Usage) TotalInput() int {
	return u.InputTokens + u.CacheReadTokens + u.CacheWriteTokens
}
