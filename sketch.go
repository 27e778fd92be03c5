package sketchui

// Sketch is the source image of a session. Ref is an opaque handle, usually
// the file path it was loaded from. Data is read once and shared read-only
// across every iteration of a session.
type Sketch struct {
	Ref      string
	Data     []byte
	MimeType string
}

// Image returns the sketch as an image content block.
func (s Sketch) Image() ImageBlock {
	return ImageBlock{Data: s.Data, MimeType: s.MimeType}
}
