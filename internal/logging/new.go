package logging

import "io"

// New returns a zap file logger when path is set, otherwise an slog text
// logger on w.
func New(w io.Writer, level, path string) (Logger, error) {
	if path == "" {
		return NewTextLogger(w, level), nil
	}
	return NewFileLogger(FileOptions{Path: path, Level: level})
}
