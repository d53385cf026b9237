package runtime

import "os"

type ServiceOption func(*ServiceCtx)

// WithServiceTermination overrides the channel the dispatcher listens on for
// shutdown signals. Tests use it to trigger shutdown without raising a real
// process signal.
func WithServiceTermination(ch chan os.Signal) ServiceOption {
	return func(s *ServiceCtx) {
		s.shutdownChannel = ch
	}
}

// WithWaitingForServer enables WaitForServer, which blocks until the HTTP
// listener is accepting connections.
func WithWaitingForServer() ServiceOption {
	return func(s *ServiceCtx) {
		s.serverReady = make(chan struct{})
	}
}
