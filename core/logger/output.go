package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// output serializes whole lines onto stdout and an optional log file.
type output struct {
	mu   sync.Mutex
	w    io.Writer
	file *os.File
}

func openOutput(path string) (*output, error) {
	o := &output{w: os.Stdout}
	if path == "" {
		return o, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logger: create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: open log file: %w", err)
	}
	o.file = f
	o.w = io.MultiWriter(os.Stdout, f)
	return o, nil
}

func newOutput(w io.Writer) *output { return &output{w: w} }

func (o *output) write(line []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := o.w.Write(line)
	return err
}

func (o *output) close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.file == nil {
		return nil
	}
	err := o.file.Close()
	o.file = nil
	o.w = os.Stdout
	return err
}
