package ledger

// EventKind identifies what changed in the ledger.
type EventKind string

const (
	EventTransactionAdded   EventKind = "transaction_added"
	EventTransactionUpdated EventKind = "transaction_updated"
	EventTransactionDeleted EventKind = "transaction_deleted"
	EventSettingsUpdated    EventKind = "settings_updated"
	EventReset              EventKind = "reset"
	EventRestored           EventKind = "restored"
)

// Event is published to subscribers after a mutation has committed.
// TransactionID is set for the per-transaction kinds.
type Event struct {
	Kind          EventKind
	TransactionID string
}

// Subscribe registers a callback invoked synchronously after each committed
// mutation. The returned function cancels the subscription. Callbacks run
// outside the store lock, so they may call back into the store.
func (s *Store) Subscribe(fn func(Event)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(e Event) {
	s.subMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}
