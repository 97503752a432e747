package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// Ensure ConversationStore implements the interface.
var _ driven.ConversationStore = (*ConversationStore)(nil)

// ConversationStore is an in-memory implementation of driven.ConversationStore.
type ConversationStore struct {
	mu    sync.RWMutex
	turns map[string][]domain.Turn
}

// NewConversationStore creates a new in-memory conversation store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		turns: make(map[string][]domain.Turn),
	}
}

// AppendTurn adds a turn. The turn's Seq must equal the current turn count.
func (s *ConversationStore) AppendTurn(_ context.Context, documentID string, turn domain.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.turns[documentID]
	if turn.Seq != len(existing) {
		return fmt.Errorf("%w: turn %d appended after %d turns", domain.ErrInvalidInput, turn.Seq, len(existing))
	}
	turn.ChunkIDs = append([]string{}, turn.ChunkIDs...)
	s.turns[documentID] = append(existing, turn)
	return nil
}

// GetConversation returns the turns for a document.
func (s *ConversationStore) GetConversation(_ context.Context, documentID string) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := make([]domain.Turn, len(s.turns[documentID]))
	copy(turns, s.turns[documentID])
	return &domain.Conversation{DocumentID: documentID, Turns: turns}, nil
}

// DeleteConversation removes every turn for a document.
func (s *ConversationStore) DeleteConversation(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, documentID)
	return nil
}
