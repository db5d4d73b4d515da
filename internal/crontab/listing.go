// Package crontab models the scheduler configuration as typed lines and
// provides the backends that read and install it.
//
// A crontab is kept as an ordered slice of lines. Parsing never drops or
// rewrites anything: Render(Parse(text)) reproduces every line of text, only
// normalizing the trailing newline.
package crontab

import (
	"strings"

	"github.com/wasilibs/go-re2"
)

// Kind classifies a crontab line.
type Kind int

const (
	// Blank is an empty or whitespace-only line.
	Blank Kind = iota
	// Comment is a comment line that does not name a job.
	Comment
	// Marker is a comment line of the form "# <identifier>".
	Marker
	// Entry is any other line: a schedule line, an environment assignment, etc.
	Entry
)

func (k Kind) String() string {
	switch k {
	case Blank:
		return "blank"
	case Comment:
		return "comment"
	case Marker:
		return "marker"
	case Entry:
		return "entry"
	default:
		return "unknown"
	}
}

// markerPattern matches "# LABEL" where LABEL is a single token.
var markerPattern = re2.MustCompile(`^# ([A-Za-z0-9_.:-]+)$`)

// identifierPattern is the grammar of identifiers this package writes.
var identifierPattern = re2.MustCompile(`^[A-Za-z0-9_.:-]+$`)

// Line is one line of a crontab.
type Line struct {
	Raw   string
	Kind  Kind
	Label string // identifier for Marker lines
}

// IsComment reports whether the line starts a comment, marker or not.
func (l Line) IsComment() bool {
	return l.Kind == Comment || l.Kind == Marker
}

// IsMarkerFor reports whether the line is exactly the marker of id.
func (l Line) IsMarkerFor(id string) bool {
	return l.Kind == Marker && l.Label == id
}

// ValidIdentifier reports whether id can be written as a marker.
func ValidIdentifier(id string) bool {
	return identifierPattern.MatchString(id)
}

// MarkerLine returns the marker line for id.
func MarkerLine(id string) string {
	return "# " + id
}

// Classify builds a Line from raw text.
func Classify(raw string) Line {
	trimmed := strings.TrimSpace(raw)
	switch {
	case trimmed == "":
		return Line{Raw: raw, Kind: Blank}
	case strings.HasPrefix(trimmed, "#"):
		if m := markerPattern.FindStringSubmatch(trimmed); m != nil {
			return Line{Raw: raw, Kind: Marker, Label: m[1]}
		}
		return Line{Raw: raw, Kind: Comment}
	default:
		return Line{Raw: raw, Kind: Entry}
	}
}

// Listing is a parsed crontab.
type Listing struct {
	Lines []Line
}

// Parse splits text into typed lines. Empty text yields an empty listing.
func Parse(text string) *Listing {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")

	l := &Listing{}
	if text == "" {
		return l
	}

	for _, raw := range strings.Split(text, "\n") {
		l.Lines = append(l.Lines, Classify(raw))
	}
	return l
}

// Render joins the lines back together with a trailing newline.
// cron ignores a final line that is not newline-terminated, so one is always written.
func (l *Listing) Render() string {
	if len(l.Lines) == 0 {
		return ""
	}

	var b strings.Builder
	for _, line := range l.Lines {
		b.WriteString(line.Raw)
		b.WriteByte('\n')
	}
	return b.String()
}

// Append adds raw lines at the end of the listing.
func (l *Listing) Append(raw ...string) {
	for _, r := range raw {
		l.Lines = append(l.Lines, Classify(r))
	}
}

// IndexOf returns the index of the first marker for id, or -1.
func (l *Listing) IndexOf(id string) int {
	for i, line := range l.Lines {
		if line.IsMarkerFor(id) {
			return i
		}
	}
	return -1
}

// Contains reports whether a marker for id is present.
func (l *Listing) Contains(id string) bool {
	return l.IndexOf(id) >= 0
}

// EntryAfter returns the index of the first Entry line of the block starting
// at marker index i. Blank and plain comment lines are skipped; the search
// stops at the next marker. It returns -1 when the block has no entry.
func (l *Listing) EntryAfter(i int) int {
	for j := i + 1; j < len(l.Lines); j++ {
		switch l.Lines[j].Kind {
		case Entry:
			return j
		case Marker:
			return -1
		}
	}
	return -1
}

// Clone returns a deep copy of the listing.
func (l *Listing) Clone() *Listing {
	c := &Listing{Lines: make([]Line, len(l.Lines))}
	copy(c.Lines, l.Lines)
	return c
}
