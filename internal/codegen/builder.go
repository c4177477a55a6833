// SPDX-License-Identifier: AGPL-3.0-or-later

// Package codegen provides the output sink used by artifact generators.
package codegen

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LazyCreateBuilder defers creating an output file until a generator asks for
// a Writer. The file is written to a temporary name and moved into place on
// Close, so a failed generation never leaves a partial artifact behind.
type LazyCreateBuilder struct {
	path string
	mode os.FileMode

	tmp    *os.File
	writer *Writer
	done   bool
}

// NewLazyCreateBuilder prepares an output at path. Nothing touches the disk yet.
func NewLazyCreateBuilder(path string) *LazyCreateBuilder {
	return &LazyCreateBuilder{path: path, mode: 0o644}
}

// Path returns the final output path.
func (b *LazyCreateBuilder) Path() string { return b.path }

// Finalized reports whether Finalize has been called.
func (b *LazyCreateBuilder) Finalized() bool { return b.writer != nil }

// Finalize creates the temporary file and returns a Writer for it. Calling
// it again returns the same Writer.
func (b *LazyCreateBuilder) Finalize() (*Writer, error) {
	if b.done {
		return nil, fmt.Errorf("output %s already closed", b.path)
	}
	if b.writer != nil {
		return b.writer, nil
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".debcrafter-tmp-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}

	b.tmp = tmp
	b.writer = NewWriter(tmp)
	return b.writer, nil
}

// Close flushes buffered output and moves the file into place. It is a no-op
// when Finalize was never called or the builder was abandoned.
func (b *LazyCreateBuilder) Close() error {
	if b.done {
		return nil
	}
	b.done = true
	if b.tmp == nil {
		return nil
	}
	tmpName := b.tmp.Name()
	defer os.Remove(tmpName)

	if err := b.writer.Flush(); err != nil {
		b.tmp.Close()
		return fmt.Errorf("writing %s: %w", b.path, err)
	}
	if err := b.tmp.Chmod(b.mode); err != nil {
		b.tmp.Close()
		return fmt.Errorf("setting mode of %s: %w", b.path, err)
	}
	if err := b.tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		return fmt.Errorf("moving temp file to %s: %w", b.path, err)
	}
	return nil
}

// Abandon discards anything written so far. It is a no-op after Close.
func (b *LazyCreateBuilder) Abandon() {
	if b.done {
		return
	}
	b.done = true
	if b.tmp != nil {
		b.tmp.Close()
		os.Remove(b.tmp.Name())
	}
}

// Writer is a buffered text writer with a separator operation.
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) Write(p []byte) (int, error) { return w.w.Write(p) }

// WriteString writes s.
func (w *Writer) WriteString(s string) (int, error) { return w.w.WriteString(s) }

// Separator writes sep. It is written unconditionally, including before
// the first stanza of a file.
func (w *Writer) Separator(sep string) error {
	_, err := w.w.WriteString(sep)
	return err
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error { return w.w.Flush() }
