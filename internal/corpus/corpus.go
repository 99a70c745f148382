// Package corpus holds the ordered FAQ lines the engine answers from.
package corpus

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyCorpus is returned when the raw text contains no non-blank lines.
	ErrEmptyCorpus = errors.New("corpus is empty")
	// ErrIndexOutOfRange is returned by Get for an index outside [0, Len()).
	ErrIndexOutOfRange = errors.New("line index out of range")
	// ErrInvalidMarkers is returned when a marker is blank or both markers are equal.
	ErrInvalidMarkers = errors.New("invalid line markers")
)

// Kind tags a corpus line. It is computed once at load time.
type Kind int

const (
	// Plain is a line with neither marker.
	Plain Kind = iota
	// Question is a line that starts with the question marker.
	Question
	// Answer is a line that starts with the answer marker.
	Answer
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case Question:
		return "question"
	case Answer:
		return "answer"
	default:
		return "plain"
	}
}

// Markers are the literal prefixes that tag question and answer lines.
type Markers struct {
	Question string
	Answer   string
}

// DefaultMarkers returns the "Q:" / "A:" markers.
func DefaultMarkers() Markers {
	return Markers{Question: "Q:", Answer: "A:"}
}

// Validate reports whether both markers are usable.
func (m Markers) Validate() error {
	q, a := strings.TrimSpace(m.Question), strings.TrimSpace(m.Answer)
	if q == "" || a == "" {
		return fmt.Errorf("%w: question and answer markers are required", ErrInvalidMarkers)
	}
	if q == a {
		return fmt.Errorf("%w: question and answer markers must differ (%q)", ErrInvalidMarkers, q)
	}
	return nil
}

func (m Markers) classify(text string) Kind {
	switch {
	case strings.HasPrefix(text, m.Answer):
		return Answer
	case strings.HasPrefix(text, m.Question):
		return Question
	default:
		return Plain
	}
}

// Line is one non-blank corpus entry.
type Line struct {
	Index int
	Text  string
	Kind  Kind
}

// Store is the immutable, ordered sequence of corpus lines.
type Store struct {
	lines   []Line
	markers Markers
	// answerOf maps a question line index to the index of its answer line.
	answerOf map[int]int
}

// Load splits raw into trimmed non-blank lines and tags each one.
// Question→answer links are resolved here: every question in a run of
// consecutive question lines maps to the answer line that directly follows
// the run. A question still unlinked after that maps to the line two below
// it when that line is an answer, whatever sits in between.
func Load(raw string, markers Markers) (*Store, error) {
	if err := markers.Validate(); err != nil {
		return nil, err
	}
	markers.Question = strings.TrimSpace(markers.Question)
	markers.Answer = strings.TrimSpace(markers.Answer)

	var lines []Line
	for _, l := range strings.Split(raw, "\n") {
		text := strings.TrimSpace(l)
		if text == "" {
			continue
		}
		lines = append(lines, Line{
			Index: len(lines),
			Text:  text,
			Kind:  markers.classify(text),
		})
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCorpus
	}

	s := &Store{
		lines:    lines,
		markers:  markers,
		answerOf: make(map[int]int),
	}
	s.linkQuestions()
	return s, nil
}

func (s *Store) linkQuestions() {
	groupStart := -1
	for i, line := range s.lines {
		switch line.Kind {
		case Question:
			if groupStart < 0 {
				groupStart = i
			}
		case Answer:
			if groupStart >= 0 {
				for q := groupStart; q < i; q++ {
					s.answerOf[q] = i
				}
			}
			groupStart = -1
		default:
			groupStart = -1
		}
	}
	for i, line := range s.lines {
		if line.Kind != Question || i+2 >= len(s.lines) {
			continue
		}
		if _, ok := s.answerOf[i]; ok {
			continue
		}
		if s.lines[i+2].Kind == Answer {
			s.answerOf[i] = i + 2
		}
	}
}

// Len returns the number of lines.
func (s *Store) Len() int {
	return len(s.lines)
}

// Get returns the line at index i.
func (s *Store) Get(i int) (Line, error) {
	if i < 0 || i >= len(s.lines) {
		return Line{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(s.lines))
	}
	return s.lines[i], nil
}

// Texts returns the line texts in corpus order.
func (s *Store) Texts() []string {
	texts := make([]string, len(s.lines))
	for i, l := range s.lines {
		texts[i] = l.Text
	}
	return texts
}

// AnswerFor returns the answer line linked to the question at index i.
// It returns false for non-question lines and for orphan questions.
func (s *Store) AnswerFor(i int) (Line, bool) {
	a, ok := s.answerOf[i]
	if !ok {
		return Line{}, false
	}
	return s.lines[a], true
}

// AnswerText returns the body of an answer line: marker stripped, trimmed.
// Lines of other kinds are returned trimmed and unchanged.
func (s *Store) AnswerText(line Line) string {
	if line.Kind != Answer {
		return strings.TrimSpace(line.Text)
	}
	return strings.TrimSpace(strings.TrimPrefix(line.Text, s.markers.Answer))
}

// Markers returns the markers the store was loaded with.
func (s *Store) Markers() Markers {
	return s.markers
}

// Stats summarizes the corpus by line kind.
type Stats struct {
	Lines     int `json:"lines"`
	Questions int `json:"questions"`
	Answers   int `json:"answers"`
	Orphans   int `json:"orphan_questions"`
}

// Stats counts lines per kind and questions that have no linked answer.
func (s *Store) Stats() Stats {
	st := Stats{Lines: len(s.lines)}
	for _, l := range s.lines {
		switch l.Kind {
		case Question:
			st.Questions++
			if _, ok := s.answerOf[l.Index]; !ok {
				st.Orphans++
			}
		case Answer:
			st.Answers++
		}
	}
	return st
}
