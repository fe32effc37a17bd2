// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

package export

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/retr0h/gatekeeper/internal/audit"
)

// FileExporter writes events as JSON lines to a file on fs.
type FileExporter struct {
	Path string

	fs      afero.Fs
	file    afero.File
	writer  *bufio.Writer
	written int
}

// NewFileExporter creates a FileExporter for path on fs.
func NewFileExporter(
	fs afero.Fs,
	path string,
) *FileExporter {
	return &FileExporter{
		Path: path,
		fs:   fs,
	}
}

// Open creates or truncates the export file. Audit exports may hold client
// addresses, so the file is owner-only.
func (e *FileExporter) Open(
	_ context.Context,
) error {
	f, err := e.fs.OpenFile(e.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("opening export file: %w", err)
	}

	e.file = f
	e.writer = bufio.NewWriter(f)
	e.written = 0

	return nil
}

// Write appends event as one JSON line.
func (e *FileExporter) Write(
	_ context.Context,
	event audit.Event,
) error {
	if e.writer == nil {
		return fmt.Errorf("exporter not opened")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	data = append(data, '\n')
	if _, err := e.writer.Write(data); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	e.written++

	return nil
}

// Written returns the number of events written since Open.
func (e *FileExporter) Written() int {
	return e.written
}

// Close flushes buffered lines and closes the file.
func (e *FileExporter) Close(
	_ context.Context,
) error {
	if e.writer == nil {
		return fmt.Errorf("exporter not opened")
	}

	if err := e.writer.Flush(); err != nil {
		_ = e.file.Close()
		return fmt.Errorf("flushing writer: %w", err)
	}

	if err := e.file.Close(); err != nil {
		return fmt.Errorf("closing file: %w", err)
	}

	e.writer = nil

	return nil
}
