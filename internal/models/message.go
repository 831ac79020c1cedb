package models

// MessageStatus tracks admin handling of a contact message.
type MessageStatus string

const (
	MessageStatusNew     MessageStatus = "new"
	MessageStatusRead    MessageStatus = "read"
	MessageStatusReplied MessageStatus = "replied"
)

// Valid reports whether s is a known status.
func (s MessageStatus) Valid() bool {
	switch s {
	case MessageStatusNew, MessageStatusRead, MessageStatusReplied:
		return true
	}
	return false
}

// messageTransitions is the forward-only lifecycle new < read < replied.
var messageTransitions = map[MessageStatus][]MessageStatus{
	MessageStatusNew:  {MessageStatusRead, MessageStatusReplied},
	MessageStatusRead: {MessageStatusReplied},
}

// CanTransition reports whether from -> to is a legal move.
func (s MessageStatus) CanTransition(to MessageStatus) bool {
	for _, next := range messageTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// ContactMessage is a visitor enquiry from the public contact form.
type ContactMessage struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Subject   string        `json:"subject"`
	Message   string        `json:"message"`
	Status    MessageStatus `json:"status"`
	CreatedAt Timestamp     `json:"createdAt"`
	UpdatedAt *Timestamp    `json:"updatedAt,omitempty"`
}
