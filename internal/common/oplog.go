package common

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Op names the kind of in-place mutation applied to a slide.
type Op string

const (
	OpZeroFill Op = "zero-fill"
	OpSplice   Op = "splice"
)

// OpEntry captures a single destructive operation for the audit trail. Strip
// regions are too large to journal byte-for-byte, so before/after state is
// recorded as whole-file SHA-256 digests.
type OpEntry struct {
	Op        Op        `json:"op"`
	Path      string    `json:"path"`
	Offset    int64     `json:"offset,omitempty"`
	Length    int64     `json:"length,omitempty"`
	BeforeSHA string    `json:"beforeSha256,omitempty"`
	AfterSHA  string    `json:"afterSha256,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Ts        time.Time `json:"ts"`
}

// OpLog provides append-only access to a JSONL audit log.
type OpLog struct {
	path string
	mu   sync.Mutex
}

// NewOpLog returns an OpLog that writes to the provided path.
func NewOpLog(path string) *OpLog {
	return &OpLog{path: path}
}

// Path returns the backing file path for the log.
func (l *OpLog) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Append writes a new entry to the audit log, one JSON object per line.
// Appending to a nil log is a no-op so callers can thread an optional log
// without branching.
func (l *OpLog) Append(entry OpEntry) error {
	if l == nil {
		return nil
	}
	if entry.Op == "" {
		return errors.New("op entry missing operation kind")
	}
	if entry.Ts.IsZero() {
		entry.Ts = time.Now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	dir := filepath.Dir(l.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return err
	}
	return f.Sync()
}

// ReadOpLog loads every entry from the supplied JSONL file.
func ReadOpLog(path string) ([]OpEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	var entries []OpEntry
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry OpEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, fmt.Errorf("decode op entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
