package pkg

import "github.com/qnkhuat/chesstutor/pkg/tutor"

const (
	// ContextSize is how many user/tutor messages are replayed to the tutor.
	ContextSize = 20
	// MaxTranscript bounds the entries kept for display.
	MaxTranscript = 500
)

type Role int

const (
	RoleSystem Role = iota
	RoleUser
	RoleAI
)

func (r Role) String() string {
	switch r {
	case RoleSystem:
		return "system"
	case RoleUser:
		return "user"
	case RoleAI:
		return "ai"
	default:
		return "unknown"
	}
}

type Entry struct {
	Seq  uint64 // increases with every append, across Clear and Reset
	Role Role
	Text string
}

// Transcript is the chat shown next to the board. Display entries and the
// tutor context are kept apart: clearing the screen keeps the conversation.
type Transcript struct {
	entries []Entry
	context []tutor.Message
	seq     uint64
}

func (t *Transcript) Append(role Role, text string) {
	t.seq++
	t.entries = append(t.entries, Entry{Seq: t.seq, Role: role, Text: text})
	if len(t.entries) > MaxTranscript {
		t.entries = t.entries[len(t.entries)-MaxTranscript:]
	}

	switch role {
	case RoleUser:
		t.remember(tutor.RoleUser, text)
	case RoleAI:
		t.remember(tutor.RoleAssistant, text)
	}
}

func (t *Transcript) remember(role tutor.Role, text string) {
	t.context = append(t.context, tutor.Message{Role: role, Content: text})
	if len(t.context) > ContextSize {
		t.context = t.context[len(t.context)-ContextSize:]
	}
}

// Clear wipes what is displayed only.
func (t *Transcript) Clear() {
	t.entries = nil
}

// Reset forgets everything, for a new game.
func (t *Transcript) Reset() {
	t.entries = nil
	t.context = nil
}

func (t *Transcript) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

func (t *Transcript) Context() []tutor.Message {
	return append([]tutor.Message(nil), t.context...)
}
