package server

import (
	"encoding/json"
	"sync"
)

// QuestEvent is the payload published to quest watchers: the creator
// watching for submissions, accepters watching for closure.
type QuestEvent struct {
	Type     string `json:"type"`
	QuestID  string `json:"questId"`
	UserID   string `json:"userId,omitempty"`
	UserName string `json:"userName,omitempty"`
}

const (
	eventQuestAccepted  = "quest_accepted"
	eventQuestAbandoned = "quest_abandoned"
	eventProofSubmitted = "proof_submitted"
	eventProofWithdrawn = "proof_withdrawn"
	eventQuestApproved  = "quest_approved"
	eventQuestClosed    = "quest_closed"
)

// Broker is an in-process pub/sub for SSE events, keyed by quest ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel receiving JSON-encoded events for the quest.
func (b *Broker) Subscribe(questID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[questID] == nil {
		b.subs[questID] = make(map[chan []byte]struct{})
	}
	b.subs[questID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the quest's subscribers.
func (b *Broker) Unsubscribe(questID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[questID], ch)
	if len(b.subs[questID]) == 0 {
		delete(b.subs, questID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the given quest.
func (b *Broker) Publish(questID string, event QuestEvent) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[questID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
