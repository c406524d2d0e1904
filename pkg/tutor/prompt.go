package tutor

import (
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// HistoryWindow is how many of the latest plies go into the prompt.
const HistoryWindow = 10

const Persona = "You are a professional chess tutor running inside a DOS terminal."

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is an earlier exchange replayed to the model as context.
type Message struct {
	Role    Role
	Content string
}

// Request is everything the tutor knows about the game when asked.
type Request struct {
	FEN        string
	History    []string // SAN, from the first move
	PGN        string
	Evaluation string
	Opening    string
	LegalMoves []string
	Question   string
	Transcript []Message
	Window     int // plies of history shown, HistoryWindow when 0
}

// BuildPrompt renders req into the final user message. The same request
// always yields the same prompt.
func BuildPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("You are a Grandmaster Chess Tutor inside a DOS terminal.\n")
	b.WriteString("Analyze this chess position.\n\n")

	b.WriteString("CURRENT_STATE:\n")
	fmt.Fprintf(&b, "- FEN: %s\n", req.FEN)
	window := req.Window
	if window <= 0 {
		window = HistoryWindow
	}
	fmt.Fprintf(&b, "- HISTORY: %s\n", RecentMoves(req.History, window))
	if req.PGN != "" {
		fmt.Fprintf(&b, "- PGN: %s\n", req.PGN)
	}
	fmt.Fprintf(&b, "- EVALUATION: %s\n", req.Evaluation)
	if req.Opening != "" {
		fmt.Fprintf(&b, "- OPENING: %s\n", req.Opening)
	}
	if len(req.LegalMoves) > 0 {
		fmt.Fprintf(&b, "- LEGAL_MOVES: %s\n", strings.Join(req.LegalMoves, ", "))
	}
	b.WriteString("\n")

	if q := strings.TrimSpace(req.Question); q != "" {
		fmt.Fprintf(&b, "USER_QUERY: %q\n\n", q)
		b.WriteString("RESPONSE_GUIDELINES: Answer the user's question directly and concisely.\n")
	} else {
		b.WriteString("RESPONSE_GUIDELINES: Identify one major strategic theme or a direct threat.\n")
	}

	b.WriteString("\nVOICE:\n")
	b.WriteString("- High-intensity, ultra-concise, professional.\n")
	b.WriteString("- Use square names (e4, d5).\n")
	b.WriteString("- Max 2 sentences.\n")
	b.WriteString("- No pleasantries.\n")
	return b.String()
}

// Messages is the full conversation sent for req: persona, earlier
// exchanges, then the prompt.
func Messages(req Request) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Transcript)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: Persona})
	for _, m := range req.Transcript {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(req)})
	return msgs
}

// RecentMoves numbers the last n plies of history, e.g. "3... Nf6 4. Bc4".
func RecentMoves(history []string, n int) string {
	if len(history) == 0 {
		return "(none)"
	}
	start := 0
	if n > 0 && len(history) > n {
		start = len(history) - n
	}

	parts := make([]string, 0, len(history)-start)
	for i := start; i < len(history); i++ {
		switch {
		case i%2 == 0:
			parts = append(parts, fmt.Sprintf("%d. %s", i/2+1, history[i]))
		case i == start:
			parts = append(parts, fmt.Sprintf("%d... %s", i/2+1, history[i]))
		default:
			parts = append(parts, history[i])
		}
	}
	return strings.Join(parts, " ")
}
