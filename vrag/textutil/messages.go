package textutil

// Message is a single chat turn in OpenAI message format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// PackUserAssistantMessages turns contents into alternating user/assistant turns,
// starting with user.
func PackUserAssistantMessages(contents ...string) []Message {
	roles := [2]string{RoleUser, RoleAssistant}
	msgs := make([]Message, len(contents))
	for i, c := range contents {
		msgs[i] = Message{Role: roles[i%2], Content: c}
	}
	return msgs
}
