package websocket

const FrameError = "error"

// ErrorFrame tells a session why one of its frames was rejected.
type ErrorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}
