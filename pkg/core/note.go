package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ID identifies a note. Remote ids may be serialized as JSON numbers or
// strings; both decode to the same textual form so equality is always ==.
type ID string

// UnmarshalJSON accepts both string and number literals.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid note id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// DateLayout is the wire format of Date.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day. The zero value means unspecified.
type Date struct {
	t time.Time
}

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Time() time.Time { return d.t }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid date %s: %w", data, err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Note is the central entity of the domain.
// Body is opaque rich-text markup and is never interpreted.
type Note struct {
	ID        ID     `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Date      Date   `json:"date"`
	Important bool   `json:"important"`
}

// Draft returns the note's content without its identity.
func (n Note) Draft() Draft {
	return Draft{Title: n.Title, Body: n.Body, Date: n.Date, Important: n.Important}
}

// Draft is a note that has not been assigned an id yet.
type Draft struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	Date      Date   `json:"date"`
	Important bool   `json:"important"`
}

// Note attaches an id to the draft.
func (d Draft) Note(id ID) Note {
	return Note{ID: id, Title: d.Title, Body: d.Body, Date: d.Date, Important: d.Important}
}

// Patch carries the fields of an edit. Nil fields are left untouched and are
// omitted from the wire body.
type Patch struct {
	Title     *string `json:"title,omitempty"`
	Body      *string `json:"body,omitempty"`
	Date      *Date   `json:"date,omitempty"`
	Important *bool   `json:"important,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Body == nil && p.Date == nil && p.Important == nil
}

// Apply returns n with the patch's fields overwritten.
func (p Patch) Apply(n Note) Note {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Body != nil {
		n.Body = *p.Body
	}
	if p.Date != nil {
		n.Date = *p.Date
	}
	if p.Important != nil {
		n.Important = *p.Important
	}
	return n
}

// Filter selects notes for display.
type Filter struct {
	// Query is matched case-insensitively against title and body.
	Query         string
	ImportantOnly bool
}

// Match reports whether n passes the filter.
func (f Filter) Match(n Note) bool {
	if f.ImportantOnly && !n.Important {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	return strings.Contains(strings.ToLower(n.Title), q) ||
		strings.Contains(strings.ToLower(n.Body), q)
}

// dedupe drops earlier occurrences of repeated ids, keeping order of the last ones.
func dedupe(notes []Note) []Note {
	last := make(map[ID]int, len(notes))
	for i, n := range notes {
		last[n.ID] = i
	}
	if len(last) == len(notes) {
		return notes
	}
	out := make([]Note, 0, len(last))
	for i, n := range notes {
		if last[n.ID] == i {
			out = append(out, n)
		}
	}
	return out
}
