package domain

// Turn is one prior exchange in a conversation: a role tag plus content text.
// Turns exist only for the duration of one relay call; nothing is persisted.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RoleUser marks a turn authored by the human. Any other role is treated as
// the model's side when the history is forwarded upstream.
const RoleUser = "user"
