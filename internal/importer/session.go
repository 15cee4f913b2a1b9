package importer

import (
	apperrors "trading-journal/internal/errors"
)

// Session walks a batch of candidates one incomplete row at a time.
// Edits are staged on a working copy of the current row until Apply.
type Session struct {
	records []Candidate
	index   int
	working Candidate
}

// NewSession starts a session positioned on the first incomplete row.
func NewSession(records []Candidate) *Session {
	s := &Session{records: records}
	s.moveTo(FirstIncomplete(records, 0))
	return s
}

func (s *Session) moveTo(i int) {
	s.index = i
	if i < 0 {
		s.working = nil
		return
	}
	s.working = s.records[i].Clone()
}

// Done reports whether every row is complete.
func (s *Session) Done() bool {
	return s.index < 0
}

// Index returns the position of the row being fixed, or -1 when done.
func (s *Session) Index() int {
	return s.index
}

// Current returns the staged copy of the row being fixed, or nil when done.
func (s *Session) Current() Candidate {
	return s.working
}

// Missing returns the required fields the staged row still lacks.
func (s *Session) Missing() []string {
	if s.Done() {
		return nil
	}
	return MissingFields(s.working, RequiredFields)
}

// Set stages a value for field on the current row.
func (s *Session) Set(field string, value any) {
	if s.Done() {
		return
	}
	s.working[field] = value
}

// Apply commits the staged row and advances to the next incomplete row
// after it. A row that is still incomplete is not committed.
func (s *Session) Apply() error {
	if s.Done() {
		return nil
	}
	if !IsComplete(s.working, RequiredFields) {
		return apperrors.Wrapf(apperrors.ErrIncompleteRecord, "row %d", s.index)
	}
	s.records[s.index] = s.working
	s.moveTo(FirstIncomplete(s.records, s.index+1))
	return nil
}

// Skip discards staged edits and moves to the next incomplete row after the
// current one, leaving the current row as it was.
func (s *Session) Skip() {
	if s.Done() {
		return
	}
	s.moveTo(FirstIncomplete(s.records, s.index+1))
}

// ApplyToAll commits every staged edit of the current row, then copies the
// staged value of field to each later row that lacks it. It returns how many
// rows gained the field, the current one included. The session stays on the
// current row, so a later Skip keeps what was committed here.
func (s *Session) ApplyToAll(field string) int {
	if s.Done() {
		return 0
	}
	value := s.working[field]
	if IsMissing(value) {
		return 0
	}
	changed := 0
	if IsMissing(s.records[s.index][field]) {
		changed++
	}
	s.records[s.index] = s.working.Clone()
	return changed + FillMissing(s.records, s.index+1, field, value)
}

// Records returns the underlying rows, including committed fixes.
func (s *Session) Records() []Candidate {
	return s.records
}
