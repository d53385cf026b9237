package middleware

import (
	"bufio"
	"net"
	"net/http"
)

// ResponseRecorder wraps http.ResponseWriter to capture the status code and
// the number of bytes written, while still exposing the optional Flusher and
// Hijacker capabilities of the underlying writer.
type ResponseRecorder struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten uint64
	wroteHeader  bool
}

func NewResponseRecorder(w http.ResponseWriter) *ResponseRecorder {
	return &ResponseRecorder{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (w *ResponseRecorder) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}

	w.statusCode = code
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *ResponseRecorder) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}

	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += uint64(n)

	return n, err
}

func (w *ResponseRecorder) StatusCode() int {
	return w.statusCode
}

func (w *ResponseRecorder) BytesWritten() uint64 {
	return w.bytesWritten
}

func (w *ResponseRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *ResponseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}

	return nil, nil, http.ErrNotSupported
}

func (w *ResponseRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
