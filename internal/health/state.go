package health

import (
	"sync/atomic"
	"time"
)

// State tracks the readiness signals the surrounding service reports:
// whether the analysis model loaded and whether the stream connections are up.
// All fields are atomics; setters are called from the startup path and the
// stream layer, readers from the HTTP handlers.
type State struct {
	service string
	version string
	start   time.Time

	modelLoaded   atomic.Bool
	consumerReady atomic.Bool
	producerReady atomic.Bool
}

func NewState(service, version string) *State {
	return &State{
		service: service,
		version: version,
		start:   time.Now(),
	}
}

func (s *State) SetModelLoaded(loaded bool) {
	s.modelLoaded.Store(loaded)
}

func (s *State) SetStreamReady(consumer, producer bool) {
	s.consumerReady.Store(consumer)
	s.producerReady.Store(producer)
}

func (s *State) ModelLoaded() bool {
	return s.modelLoaded.Load()
}

func (s *State) StreamReady() (consumer, producer bool) {
	return s.consumerReady.Load(), s.producerReady.Load()
}

func (s *State) Uptime() time.Duration {
	return time.Since(s.start)
}
