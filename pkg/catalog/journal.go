package catalog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Journal is an append-only log of catalog mutations. Entries are JSON
// lines; on open the catalog replays and removes any files left behind by
// a previous run.
type Journal struct {
	path       string
	file       *os.File
	writer     *bufio.Writer
	mu         sync.Mutex
	flushTimer *time.Timer
	closed     bool
}

// JournalEntry records one key/payload mutation.
type JournalEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Key       string    `json:"key"`
	Payload   []byte    `json:"payload"`
}

// NewJournal creates a journal under dataPath/journal.
func NewJournal(dataPath string) (*Journal, error) {
	journalPath := filepath.Join(dataPath, "journal")
	if err := os.MkdirAll(journalPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	filename := filepath.Join(journalPath, fmt.Sprintf("journal-%d.log", time.Now().Unix()))
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal file: %w", err)
	}

	j := &Journal{
		path:   journalPath,
		file:   file,
		writer: bufio.NewWriter(file),
	}

	// Flush to disk once a second.
	j.flushTimer = time.AfterFunc(1*time.Second, j.autoFlush)

	return j, nil
}

// Append appends one mutation to the journal.
func (j *Journal) Append(key string, payload []byte) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	entry := JournalEntry{
		Timestamp: time.Now(),
		Key:       key,
		Payload:   payload,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal journal entry: %w", err)
	}

	if _, err := j.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write to journal: %w", err)
	}
	if err := j.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

// Flush flushes buffered entries to disk.
func (j *Journal) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush journal: %w", err)
	}

	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync journal: %w", err)
	}

	return nil
}

// autoFlush periodically flushes the journal. A flush racing Close must
// not touch the closed file or re-arm the stopped timer.
func (j *Journal) autoFlush() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return
	}

	j.writer.Flush()
	j.file.Sync()
	j.flushTimer.Reset(1 * time.Second)
}

// Close closes the journal.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}
	j.closed = true

	if j.flushTimer != nil {
		j.flushTimer.Stop()
	}

	if err := j.writer.Flush(); err != nil {
		return err
	}

	if err := j.file.Sync(); err != nil {
		return err
	}

	return j.file.Close()
}

// ReplayJournal replays leftover journal files for recovery, removing each
// file after its entries have been handled.
func ReplayJournal(dataPath string, handler func(*JournalEntry) error) error {
	journalPath := filepath.Join(dataPath, "journal")

	entries, err := os.ReadDir(journalPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No journal to replay
		}
		return fmt.Errorf("failed to read journal directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		filename := filepath.Join(journalPath, entry.Name())
		if err := replayJournalFile(filename, handler); err != nil {
			return fmt.Errorf("failed to replay %s: %w", filename, err)
		}

		os.Remove(filename)
	}

	return nil
}

// replayJournalFile replays a single journal file.
func replayJournalFile(filename string, handler func(*JournalEntry) error) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		var entry JournalEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return fmt.Errorf("failed to unmarshal journal entry: %w", err)
		}

		if err := handler(&entry); err != nil {
			return fmt.Errorf("failed to replay entry: %w", err)
		}
	}

	return scanner.Err()
}
