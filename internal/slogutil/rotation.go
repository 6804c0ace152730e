package slogutil

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// RotatingFile is the --log-file writer. Once a write would push the file past
// maxSize it is renamed to path.1, older backups shift up, and anything beyond
// maxBackups is removed. maxSize 0 never rotates.
type RotatingFile struct {
	path       string
	maxSize    int64
	maxBackups int

	mu   sync.Mutex
	f    *os.File
	size int64
}

// OpenRotatingFile appends to path, creating it and its directory if needed.
func OpenRotatingFile(path string, maxSize int64, maxBackups int) (*RotatingFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	rf := &RotatingFile{path: path, maxSize: maxSize, maxBackups: max(maxBackups, 0)}
	if err := rf.reopen(); err != nil {
		return nil, err
	}
	return rf, nil
}

func (r *RotatingFile) reopen() error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	r.f, r.size = f, st.Size()
	return nil
}

func (r *RotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.f == nil {
		return 0, os.ErrClosed
	}
	if r.maxSize > 0 && r.size > 0 && r.size+int64(len(p)) > r.maxSize {
		if err := r.rotate(); err != nil && r.f == nil {
			return 0, err
		}
	}
	n, err := r.f.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *RotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}

// rotate must be called with mu held. On failure the current file stays open
// when possible so lines keep flowing somewhere.
func (r *RotatingFile) rotate() error {
	if err := r.f.Close(); err != nil {
		return err
	}
	r.f = nil

	backup := func(n int) string { return r.path + "." + strconv.Itoa(n) }
	if r.maxBackups == 0 {
		os.Remove(r.path)
	} else {
		os.Remove(backup(r.maxBackups))
		for n := r.maxBackups - 1; n >= 1; n-- {
			os.Rename(backup(n), backup(n+1)) // missing backups are fine
		}
		os.Rename(r.path, backup(1))
	}
	return r.reopen()
}

var sizeUnits = []struct {
	suffix string
	bytes  float64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseSize reads logging.maxSize values such as "10MB", "1.5GB", "500kb" or
// a plain byte count. Empty or unparseable input is 0.
func ParseSize(s string) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	mult := 1.0
	for _, u := range sizeUnits {
		if num, ok := strings.CutSuffix(s, u.suffix); ok {
			s, mult = strings.TrimSpace(num), u.bytes
			break
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return int64(v * mult)
}
