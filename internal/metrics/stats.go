package metrics

import (
	"sync/atomic"
	"time"
)

// Stats counts what happened to each discovered file during one run.
type Stats struct {
	Found      int64
	Processed  int64
	Compressed int64
	Skipped    int64
	Fallback   int64
	Errors     int64

	BytesHashed int64
	Started     time.Time
	Finished    time.Time
}

func (s *Stats) Start() { s.Started = time.Now() }
func (s *Stats) Stop()  { s.Finished = time.Now() }
func (s *Stats) Duration() time.Duration {
	if s.Finished.IsZero() {
		return time.Since(s.Started)
	}
	return s.Finished.Sub(s.Started)
}

func (s *Stats) AddFound(n int64)  { atomic.AddInt64(&s.Found, n) }
func (s *Stats) IncProcessed()     { atomic.AddInt64(&s.Processed, 1) }
func (s *Stats) IncCompressed()    { atomic.AddInt64(&s.Compressed, 1) }
func (s *Stats) IncSkipped()       { atomic.AddInt64(&s.Skipped, 1) }
func (s *Stats) IncFallback()      { atomic.AddInt64(&s.Fallback, 1) }
func (s *Stats) IncErrors()        { atomic.AddInt64(&s.Errors, 1) }
func (s *Stats) AddHashed(n int64) { atomic.AddInt64(&s.BytesHashed, n) }
