package docs

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/roach88/bddkit/internal/scenario"
)

// maxJournalLine bounds a single journal line when reading.
const maxJournalLine = 1 << 20

// Journal is a Publisher that writes one canonical JSON line per scenario.
//
// Thread-safety: Append may be called from many goroutines; lines are
// never interleaved.
type Journal struct {
	mu  sync.Mutex
	w   io.Writer
	ids IDGenerator
}

// NewJournal creates a journal writing to w.
func NewJournal(w io.Writer, opts ...Option) *Journal {
	o := applyOptions(opts)
	return &Journal{w: w, ids: o.ids}
}

// Append writes the scenario and its status as a single line.
// A cancelled ctx aborts before anything is written.
func (j *Journal) Append(ctx context.Context, sc scenario.Scenario, status TestStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("journal append: invalid status %d", int(status))
	}
	if err := sc.Validate(); err != nil {
		return fmt.Errorf("journal append: invalid scenario: %w", err)
	}

	rec := Record{ID: j.ids.Generate(), Scenario: sc, Status: status}
	line, err := MarshalCanonical(rec.toCanonicalMap())
	if err != nil {
		return fmt.Errorf("journal append: %w", err)
	}
	line = append(line, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.w.Write(line); err != nil {
		return fmt.Errorf("journal append: %w", err)
	}
	return nil
}

// ReadJournal parses journal lines written by Journal.
// Blank lines are skipped; unknown fields are rejected.
func ReadJournal(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxJournalLine)

	records := []Record{}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var rec Record
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("journal line %d: %w", lineNo, err)
		}
		if rec.ID == "" {
			return nil, fmt.Errorf("journal line %d: id is required", lineNo)
		}
		if err := rec.Scenario.Validate(); err != nil {
			return nil, fmt.Errorf("journal line %d: %w", lineNo, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return records, nil
}
