package utils

import "io"

type flushableWriter interface {
	Flush() error
}

type flushingWriter struct {
	delegate io.Writer
}

// NewFlushingWriter wraps the provided writer so every write is immediately
// flushed when the underlying writer supports flushing.
func NewFlushingWriter(delegate io.Writer) io.Writer {
	return flushingWriter{delegate: delegate}
}

// Write writes the payload and flushes the delegate when possible.
func (writer flushingWriter) Write(payload []byte) (int, error) {
	bytesWritten, writeError := writer.delegate.Write(payload)
	if writeError != nil {
		return bytesWritten, writeError
	}
	if flusher, supportsFlush := writer.delegate.(flushableWriter); supportsFlush {
		if flushError := flusher.Flush(); flushError != nil {
			return bytesWritten, flushError
		}
	}
	return bytesWritten, nil
}
