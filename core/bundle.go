package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/relaymesh/dtnsim/state"
)

// Bundle is the atomic unit of data carried end-to-end via
// store-and-forward. It is created once per simulation run and is immutable
// except for its location, which the engine tracks.
type Bundle struct {
	Id          string
	Source      state.NodeId
	Destination state.NodeId
	Payload     []byte
	CreatedAt   time.Time
	Size        int
	// TTL is the bundle lifetime in logical seconds; zero means no expiry.
	TTL float64
}

func NewBundle(source, destination state.NodeId, payload []byte) Bundle {
	return Bundle{
		Id:          uuid.New().String(),
		Source:      source,
		Destination: destination,
		Payload:     payload,
		CreatedAt:   time.Now(),
		Size:        len(payload),
	}
}
