package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// rotatingFile implements io.Writer and rotates the log file once it grows
// past maxSize bytes. Backups are kept as <name>.1 .. <name>.N, newest first.
type rotatingFile struct {
	name       string
	maxSize    int64
	maxBackups int
	file       *os.File
	size       int64
	mu         sync.Mutex
}

// Setup points the standard logger at stdout plus a size-rotated file and
// applies the configured level. Level filtering is line-based: when the level
// is INFO, lines tagged [DEBUG] are dropped before they reach any writer.
func Setup(filename string, maxSizeMB int64, maxBackups int, level string) {
	out := io.Writer(os.Stdout)

	rf := &rotatingFile{
		name:       filename,
		maxSize:    maxSizeMB * 1024 * 1024,
		maxBackups: maxBackups,
	}
	if err := rf.openExistingOrNew(); err != nil {
		log.Printf("Failed to open log file, using stdout only: %v", err)
	} else {
		out = io.MultiWriter(os.Stdout, rf)
	}

	if !strings.EqualFold(level, "DEBUG") {
		out = &debugFilter{next: out}
	}

	log.SetOutput(out)
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

// Debugf logs a line the INFO filter will drop.
func Debugf(format string, args ...any) {
	log.Printf("[DEBUG] "+format, args...)
}

// debugFilter silently drops [DEBUG]-tagged lines.
type debugFilter struct {
	next io.Writer
}

func (f *debugFilter) Write(p []byte) (int, error) {
	if strings.Contains(string(p), "[DEBUG]") {
		return len(p), nil
	}
	return f.next.Write(p)
}

func (r *rotatingFile) openExistingOrNew() error {
	info, err := os.Stat(r.name)
	if os.IsNotExist(err) {
		return r.openNew()
	}
	if err != nil {
		return err
	}

	// File exists, open it in append mode
	f, err := os.OpenFile(r.name, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	r.file = f
	r.size = info.Size()
	return nil
}

func (r *rotatingFile) openNew() error {
	f, err := os.OpenFile(r.name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	r.file = f
	r.size = 0
	return nil
}

// Write satisfies the io.Writer interface. It checks size and rotates if needed.
func (r *rotatingFile) Write(p []byte) (n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	writeLen := int64(len(p))

	if r.file == nil {
		if err = r.openExistingOrNew(); err != nil {
			return 0, err
		}
	}

	if r.size+writeLen > r.maxSize {
		if err := r.rotate(); err != nil {
			// Keep writing to the current file rather than lose the line.
			fmt.Fprintf(os.Stderr, "Log rotation failed: %v\n", err)
		}
	}

	n, err = r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// rotate closes the current file, shifts backups up one slot, and opens a
// fresh file. The oldest backup past maxBackups is overwritten.
func (r *rotatingFile) rotate() error {
	if r.file != nil {
		r.file.Close()
	}

	for i := r.maxBackups - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", r.name, i)
		newPath := fmt.Sprintf("%s.%d", r.name, i+1)

		if _, err := os.Stat(oldPath); os.IsNotExist(err) {
			continue
		}
		os.Rename(oldPath, newPath)
	}

	if _, err := os.Stat(r.name); err == nil {
		os.Rename(r.name, fmt.Sprintf("%s.1", r.name))
	}

	return r.openNew()
}
