package screen

import "sync/atomic"

// Sequencer hands out monotonically increasing tickets. A response is
// applied only while its ticket is still the latest one issued.
type Sequencer struct{ n atomic.Uint64 }

// Next returns the next ticket.
func (s *Sequencer) Next() uint64 { return s.n.Add(1) }

// Latest reports whether ticket is the most recent one.
func (s *Sequencer) Latest(ticket uint64) bool { return s.n.Load() == ticket }
