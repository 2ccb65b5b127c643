package dialogue

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvariantViolation marks an append that would break log ordering or
// answerability rules. It indicates a logic bug, not a recoverable
// condition.
var ErrInvariantViolation = errors.New("dialogue: invariant violation")

// Log is an append-only, strictly ordered message sequence. It maintains a
// cached pointer to the single open question so answerability lookups are
// O(1) regardless of log length.
type Log struct {
	entries []Message
	openIdx int // index of the unanswered question, -1 when none
	nextSeq int
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{openIdx: -1}
}

// Append adds a message to the log. It enforces three invariants: sequence
// numbers increase by exactly one, at most one question is unanswered at a
// time, and nothing follows a classification.
func (l *Log) Append(m Message) error {
	if m.Seq != l.nextSeq {
		return fmt.Errorf("%w: seq %d, want %d", ErrInvariantViolation, m.Seq, l.nextSeq)
	}
	if l.IsTerminal() {
		return fmt.Errorf("%w: append after classification", ErrInvariantViolation)
	}

	switch m.Kind {
	case KindQuestion:
		if l.openIdx >= 0 {
			return fmt.Errorf("%w: open question already exists", ErrInvariantViolation)
		}
		if m.Answered {
			return fmt.Errorf("%w: question appended as already answered", ErrInvariantViolation)
		}
		l.entries = append(l.entries, m)
		l.openIdx = len(l.entries) - 1
	case KindAnswer, KindClassification:
		l.entries = append(l.entries, m)
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvariantViolation, m.Kind)
	}

	l.nextSeq++
	return nil
}

// OpenQuestionID returns the id of the unique unanswered question, if any.
func (l *Log) OpenQuestionID() (uuid.UUID, bool) {
	if l.openIdx < 0 {
		return uuid.Nil, false
	}
	return l.entries[l.openIdx].ID, true
}

// AnswerOpen marks the open question answered and clears the pointer. The
// returned index can be handed back to Reopen to roll the flag back.
func (l *Log) AnswerOpen() (int, bool) {
	if l.openIdx < 0 {
		return 0, false
	}
	idx := l.openIdx
	l.entries[idx].Answered = true
	l.openIdx = -1
	return idx, true
}

// Reopen restores the answered flag of the question at idx, making it the
// open question again. Only valid when no other question is open.
func (l *Log) Reopen(idx int) error {
	if idx < 0 || idx >= len(l.entries) || l.entries[idx].Kind != KindQuestion {
		return fmt.Errorf("%w: reopen of non-question index %d", ErrInvariantViolation, idx)
	}
	if l.openIdx >= 0 {
		return fmt.Errorf("%w: reopen while another question is open", ErrInvariantViolation)
	}
	l.entries[idx].Answered = false
	l.openIdx = idx
	return nil
}

// IsTerminal reports whether a classification has been appended.
func (l *Log) IsTerminal() bool {
	n := len(l.entries)
	return n > 0 && l.entries[n-1].Kind == KindClassification
}

// NextSeq returns the sequence number the next appended message must carry.
func (l *Log) NextSeq() int { return l.nextSeq }

// Len returns the number of messages in the log.
func (l *Log) Len() int { return len(l.entries) }

// Messages returns a copy of the log contents in append order.
func (l *Log) Messages() []Message {
	out := make([]Message, len(l.entries))
	copy(out, l.entries)
	return out
}
