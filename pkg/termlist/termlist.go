// Package termlist loads vocabulary lists from JSON files and stores them in
// bulk.
package termlist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/japaniel/lingoreader/pkg/vocab"
)

// Term is one vocabulary item from a list. A nil Status takes the importer's
// default.
type Term struct {
	Content string
	Status  *vocab.Status
	Entries []string
	Notes   string
}

type record struct {
	Content string          `json:"content"`
	Status  json.RawMessage `json:"status"`
	Entries []string        `json:"entries"`
	Notes   string          `json:"notes"`
}

// Load reads a term list file. The file holds either {"terms": [...]} or a
// bare array of terms. A status may be a number or a name such as "known".
func Load(path string) ([]Term, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	terms, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return terms, nil
}

// Parse decodes a term list.
func Parse(data []byte) ([]Term, error) {
	var records []record
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var wrapper struct {
			Terms []record `json:"terms"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("parse term list: %w", err)
		}
		records = wrapper.Terms
	} else if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse term list as object or array: %w", err)
	}

	terms := make([]Term, 0, len(records))
	for i, r := range records {
		t := Term{Content: r.Content, Entries: r.Entries, Notes: r.Notes}
		if len(r.Status) > 0 && string(r.Status) != "null" {
			st, err := parseStatus(r.Status)
			if err != nil {
				return nil, fmt.Errorf("term %d (%q): %w", i+1, r.Content, err)
			}
			t.Status = &st
		}
		terms = append(terms, t)
	}
	return terms, nil
}

func parseStatus(raw json.RawMessage) (vocab.Status, error) {
	s := string(raw)
	if raw[0] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %s", vocab.ErrInvalidStatus, s)
		}
		s = unquoted
	}
	return vocab.ParseStatus(s)
}
