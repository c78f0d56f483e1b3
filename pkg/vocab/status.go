package vocab

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status is the learner's memorization level for a word or phrase.
type Status int

const (
	New     Status = 0
	Level1  Status = 1
	Level2  Status = 2
	Level3  Status = 3
	Level4  Status = 4
	Level5  Status = 5
	Ignored Status = 98
	Known   Status = 99
)

var ErrInvalidStatus = errors.New("invalid status")

// Valid reports whether s is one of the defined status codes.
func (s Status) Valid() bool {
	return (s >= New && s <= Level5) || s == Ignored || s == Known
}

func (s Status) String() string {
	switch s {
	case New:
		return "new"
	case Ignored:
		return "ignored"
	case Known:
		return "known"
	}
	if s.Valid() {
		return strconv.Itoa(int(s))
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ParseStatus accepts a numeric code or one of "new", "ignored", "known".
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "new":
		return New, nil
	case "ignored", "ignore":
		return Ignored, nil
	case "known", "wellknown":
		return Known, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	st := Status(n)
	if !st.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidStatus, n)
	}
	return st, nil
}

// Key is the lookup key for content: its full Unicode lower case.
func Key(content string) string {
	// Casers carry state and are not safe for concurrent use.
	return cases.Lower(language.Und).String(content)
}

// Entry is one stored vocabulary item. A phrase has TokenCount > 1.
type Entry struct {
	ID         int64
	LanguageID int64
	Content    string
	Key        string
	Status     Status
	TokenCount int
	Entries    []string
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsPhrase reports whether e spans more than one token.
func (e Entry) IsPhrase() bool { return e.TokenCount > 1 }
