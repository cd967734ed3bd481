package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// sessionID identifies this editor process to export viewers.
var sessionID = uuid.NewString()

func SessionID() string {
	return sessionID
}

// Revision counts effective grid mutations. Readers on other goroutines
// (the export server) only ever see it through Load.
type Revision struct {
	n atomic.Uint64
}

func (r *Revision) next() uint64 {
	return r.n.Add(1)
}

func (r *Revision) Load() uint64 {
	return r.n.Load()
}
