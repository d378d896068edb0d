package events

import "sync"

// Recorded is an event captured by the Recorder together with its position in
// the emission sequence.
type Recorded struct {
	Sequence   uint64            `json:"sequence"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// Recorder retains every emitted event in order so the RPC layer can serve an
// event feed to indexers. It is safe for concurrent use.
type Recorder struct {
	mu     sync.RWMutex
	seq    uint64
	events []Recorded
}

// NewRecorder constructs an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Emit implements the Emitter interface.
func (r *Recorder) Emit(evt Event) {
	if r == nil || evt == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	attrs := make(map[string]string, len(evt.Attributes()))
	for k, v := range evt.Attributes() {
		attrs[k] = v
	}
	r.events = append(r.events, Recorded{Sequence: r.seq, Type: evt.EventType(), Attributes: attrs})
}

// Events returns the recorded events with sequence numbers strictly greater
// than after, up to limit entries. A limit of zero means no cap.
func (r *Recorder) Events(after uint64, limit int) []Recorded {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Recorded, 0)
	for _, evt := range r.events {
		if evt.Sequence <= after {
			continue
		}
		out = append(out, evt)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Len reports how many events have been recorded so far.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}
