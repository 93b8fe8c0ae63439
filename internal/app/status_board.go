package app

import (
	"sync"
	"time"

	"github.com/relabs-tech/air_monitor/internal/acquisition"
)

// Health is the station state served on /healthz.
type Health struct {
	Status        string  `json:"status"`
	Cycles        uint64  `json:"cycles"`
	Failures      uint64  `json:"failures"`
	LastCycle     float64 `json:"last_cycle,omitempty"`
	LastError     string  `json:"last_error,omitempty"`
	LastErrorKind string  `json:"last_error_kind,omitempty"`
}

// StatusBoard shares the status text and cycle outcomes between the
// acquisition loop and the HTTP handlers.
type StatusBoard struct {
	mu sync.RWMutex
	h  Health
}

func NewStatusBoard(text string) *StatusBoard {
	return &StatusBoard{h: Health{Status: text}}
}

// Observe records a cycle outcome together with the status text it left.
func (b *StatusBoard) Observe(text string, res acquisition.Result) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.h.Status = text
	b.h.Cycles++
	if !res.Started.IsZero() {
		b.h.LastCycle = float64(res.Started.UnixNano()) / float64(time.Second)
	}
	if res.Err != nil {
		b.h.Failures++
		b.h.LastError = res.Err.Error()
		b.h.LastErrorKind = acquisition.ErrorKind(res.Err)
		return
	}
	b.h.LastError = ""
	b.h.LastErrorKind = ""
}

func (b *StatusBoard) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.h.Status
}

func (b *StatusBoard) Health() Health {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.h
}
