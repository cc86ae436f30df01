// Package timeouts holds the deadlines handlers put on database work.
//
//   - Ping: health checks
//   - Short: single-document reads and writes
//   - Medium: list queries, cart merges, address book edits
//   - Long: checkout and status transitions touching orders and products
package timeouts

import (
	"sync/atomic"
	"time"
)

var (
	ping   atomic.Int64
	short  atomic.Int64
	medium atomic.Int64
	long   atomic.Int64
)

func init() { Reset() }

func Ping() time.Duration   { return time.Duration(ping.Load()) }
func Short() time.Duration  { return time.Duration(short.Load()) }
func Medium() time.Duration { return time.Duration(medium.Load()) }
func Long() time.Duration   { return time.Duration(long.Load()) }

// Set overrides the four deadlines. Non-positive values leave the current
// value in place.
func Set(p, s, m, l time.Duration) {
	for _, v := range []struct {
		dst *atomic.Int64
		d   time.Duration
	}{{&ping, p}, {&short, s}, {&medium, m}, {&long, l}} {
		if v.d > 0 {
			v.dst.Store(int64(v.d))
		}
	}
}

// Reset restores the defaults.
func Reset() {
	ping.Store(int64(2 * time.Second))
	short.Store(int64(5 * time.Second))
	medium.Store(int64(10 * time.Second))
	long.Store(int64(30 * time.Second))
}
