package domain

import "time"

// Turn is one answered question.
type Turn struct {
	// Seq orders turns within a conversation, starting at 0.
	Seq int `json:"seq"`

	// Question is the user's question.
	Question string `json:"question"`

	// Answer is the grounded answer text.
	Answer string `json:"answer"`

	// ChunkIDs are the retrieved chunks the answer was grounded in.
	ChunkIDs []string `json:"chunk_ids"`

	// AskedAt is when the question was submitted.
	AskedAt time.Time `json:"asked_at"`
}

// Conversation is the ordered question history for one document.
type Conversation struct {
	DocumentID string `json:"document_id"`
	Turns      []Turn `json:"turns"`
}

// Last returns up to n most recent turns, oldest first.
func (c *Conversation) Last(n int) []Turn {
	if c == nil || n <= 0 || len(c.Turns) == 0 {
		return nil
	}
	if n >= len(c.Turns) {
		return c.Turns
	}
	return c.Turns[len(c.Turns)-n:]
}

// Answer is returned to callers of the Q&A engine.
type Answer struct {
	Text     string   `json:"answer"`
	ChunkIDs []string `json:"chunk_ids"`
	Turn     int      `json:"turn"`
}
