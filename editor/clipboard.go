package editor

// Clipboard provides editor-level clipboard integration.
//
// Errors must not crash the UI; failures are logged and ignored.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(s string) error
}

// HTMLClipboard is a Clipboard that also carries rich content. Copy writes
// both flavors; paste prefers HTML.
type HTMLClipboard interface {
	Clipboard
	ReadHTML() (string, error)
	WriteHTML(s string) error
}
