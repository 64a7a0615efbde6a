// Package id numbers the entries of a book.
package id

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sequencer hands out entry IDs like "2013-01-004": the year and month of
// the entry, then its position within that month. The zero value is ready
// to use.
type Sequencer struct {
	seq map[string]int
}

// Next returns the ID for an entry dated d.
func (s *Sequencer) Next(d time.Time) string {
	if s.seq == nil {
		s.seq = make(map[string]int)
	}
	month := d.Format("2006-01")
	s.seq[month]++
	return FormatEntryID(d.Year(), int(d.Month()), s.seq[month])
}

// FormatEntryID returns an entry ID like "2013-01-001".
func FormatEntryID(year, month, seq int) string {
	return fmt.Sprintf("%04d-%02d-%03d", year, month, seq)
}

// FormatPostingID returns the ID of the n-th posting of an entry, counting
// from zero: "2013-01-001a", "2013-01-001b" and so on.
func FormatPostingID(entryID string, n int) string {
	return entryID + string(rune('a'+n))
}

// ParseEntryID parses "2013-01-001", or a posting ID, into its parts.
func ParseEntryID(id string) (year, month, seq int, err error) {
	parts := strings.SplitN(EntryOf(id), "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid entry ID format: %q", id)
	}

	if year, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in entry ID %q: %w", id, err)
	}
	if month, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid month in entry ID %q: %w", id, err)
	}
	if month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("invalid month in entry ID %q", id)
	}
	if seq, err = strconv.Atoi(parts[2]); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid sequence in entry ID %q: %w", id, err)
	}
	return year, month, seq, nil
}

// EntryOf strips the posting suffix.
// "2013-01-001b" -> "2013-01-001"
func EntryOf(postingID string) string {
	return strings.TrimRightFunc(postingID, func(r rune) bool {
		return r >= 'a' && r <= 'z'
	})
}
