package intake

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Entry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Transcript is append-only; entries keep conversational order.
type Transcript struct {
	entries []Entry
}

func NewTranscript(entries ...Entry) Transcript {
	t := Transcript{}
	t.entries = append(t.entries, entries...)
	return t
}

func (t *Transcript) Append(role Role, content string) {
	t.entries = append(t.entries, Entry{Role: role, Content: content})
}

// Entries returns a copy of all entries.
func (t Transcript) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Since returns a copy of the entries appended after the first n.
func (t Transcript) Since(n int) []Entry {
	if n < 0 {
		n = 0
	}
	if n >= len(t.entries) {
		return nil
	}
	out := make([]Entry, len(t.entries)-n)
	copy(out, t.entries[n:])
	return out
}

// Tail returns up to n of the most recent entries.
func (t Transcript) Tail(n int) []Entry {
	return t.Since(len(t.entries) - n)
}

func (t Transcript) Len() int {
	return len(t.entries)
}

func (t Transcript) Last() (Entry, bool) {
	if len(t.entries) == 0 {
		return Entry{}, false
	}
	return t.entries[len(t.entries)-1], true
}

func (t Transcript) clone() Transcript {
	return NewTranscript(t.entries...)
}
