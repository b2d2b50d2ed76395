package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// The generated-menu selection is stored on the user row as a single text
// field of entries like [2025-10-14,42,2],[2025-10-14,58,3]. Legacy entries
// omit the slot and default to dinner.

const legacySlot = 3

var selectionEntryRE = regexp.MustCompile(
	`\[\s*(\d{4}-\d{2}-\d{2})\s*,\s*([0-9]+)\s*(?:,\s*([123])\s*)?\]`)

type SelectionEntry struct {
	Date   string `json:"date"` // YYYY-MM-DD
	ItemID int    `json:"item_id"`
	Slot   int    `json:"slot"` // 1 breakfast, 2 lunch, 3 dinner
}

func (e SelectionEntry) String() string {
	return fmt.Sprintf("[%s,%d,%d]", e.Date, e.ItemID, e.Slot)
}

// ParseSelection extracts all well-formed entries; malformed fragments are
// skipped rather than failing the whole string.
func ParseSelection(s string) []SelectionEntry {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	matches := selectionEntryRE.FindAllStringSubmatch(s, -1)
	entries := make([]SelectionEntry, 0, len(matches))
	for _, m := range matches {
		id, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		slot := legacySlot
		if m[3] != "" {
			slot, _ = strconv.Atoi(m[3])
		}
		entries = append(entries, SelectionEntry{Date: m[1], ItemID: id, Slot: slot})
	}
	return entries
}

// HasSelection reports whether an entry already exists for the (date, slot)
// pair. Existing entries are never overwritten.
func HasSelection(entries []SelectionEntry, date string, slot int) bool {
	for _, e := range entries {
		if e.Date == date && e.Slot == slot {
			return true
		}
	}
	return false
}

// AppendSelection appends a new entry to the serialized string without
// disturbing prior entries.
func AppendSelection(existing string, e SelectionEntry) string {
	if strings.TrimSpace(existing) == "" {
		return e.String()
	}
	return existing + "," + e.String()
}
