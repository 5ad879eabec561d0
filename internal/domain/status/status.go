package status

import (
	"errors"
	"regexp"
	"strings"
)

// Status is the pipeline stage shown at the head of a notification
type Status int

const (
	New Status = iota
	UnderReview
	Interview
	Accepted
	Rejected
)

var (
	// ErrUnknownReaction is returned for reaction codes that map to no status
	ErrUnknownReaction = errors.New("status: unknown reaction code")

	// ErrUnrecognizedContent is returned when a message carries no known source marker
	ErrUnrecognizedContent = errors.New("status: unrecognized content pattern")
)

var markers = [...]string{
	New:         "🟢 **New**",
	UnderReview: "👀 **На рассмотрении**",
	Interview:   "☎️ **Собес**",
	Accepted:    "✅ **Принят**",
	Rejected:    "❌ **Отклонено**",
}

var reactions = map[string]Status{
	"👀":  UnderReview,
	"☎️": Interview,
	"✅":  Accepted,
	"❌":  Rejected,
}

// markerPattern matches the first status marker at the start of any line
var markerPattern = func() *regexp.Regexp {
	quoted := make([]string, 0, len(markers))
	for _, m := range markers {
		quoted = append(quoted, regexp.QuoteMeta(m))
	}
	return regexp.MustCompile(`(?m)^\s*(` + strings.Join(quoted, "|") + `)`)
}()

// Marker returns the serialized form of s
func (s Status) Marker() string {
	if s < New || int(s) >= len(markers) {
		return ""
	}
	return markers[s]
}

func (s Status) String() string {
	switch s {
	case New:
		return "new"
	case UnderReview:
		return "under_review"
	case Interview:
		return "interview"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// FromReaction maps an emoji reaction to a status
func FromReaction(code string) (Status, error) {
	s, ok := reactions[code]
	if !ok {
		return 0, ErrUnknownReaction
	}
	return s, nil
}

// Parse returns the status found at the head of content
func Parse(content string) (Status, bool) {
	m := markerPattern.FindStringSubmatch(content)
	if m == nil {
		return 0, false
	}
	for i, marker := range markers {
		if marker == m[1] {
			return Status(i), true
		}
	}
	return 0, false
}

// Transition rewrites content so it carries the status mapped from code.
// An existing marker is replaced in place; otherwise the marker is prepended.
// Indentation and blank lines in front of an existing marker are kept as
// they are, only the marker word itself is swapped.
func Transition(content, code string) (string, error) {
	next, err := FromReaction(code)
	if err != nil {
		return "", err
	}
	marker := next.Marker()

	loc := markerPattern.FindStringSubmatchIndex(content)
	if loc == nil {
		return marker + " " + strings.TrimSpace(content), nil
	}
	return content[:loc[2]] + marker + content[loc[3]:], nil
}
