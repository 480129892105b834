package useragent

import (
	"crypto/rand"
	"math/big"
	"strings"
	"sync/atomic"
)

// DefaultPool holds current desktop browser User-Agents.
var DefaultPool = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36 Edg/131.0.0.0",
}

// Pool hands out User-Agents either round-robin or at random.
// It is safe for concurrent use.
type Pool struct {
	uas     []string
	random  bool
	counter atomic.Uint64
}

// NewPool creates a round-robin pool. An empty slice falls back to DefaultPool.
// Blank entries are dropped.
func NewPool(uas []string) *Pool {
	var kept []string
	for _, ua := range uas {
		if ua = strings.TrimSpace(ua); ua != "" {
			kept = append(kept, ua)
		}
	}
	if len(kept) == 0 {
		kept = append([]string(nil), DefaultPool...)
	}
	return &Pool{uas: kept}
}

// NewRandomPool is like NewPool but Next picks uniformly at random.
func NewRandomPool(uas []string) *Pool {
	p := NewPool(uas)
	p.random = true
	return p
}

// Next returns the next User-Agent according to the pool's mode.
func (p *Pool) Next() string {
	if p.random {
		return p.GetRandom()
	}
	return p.GetSequential()
}

// GetSequential returns the next User-Agent in round-robin order.
func (p *Pool) GetSequential() string {
	if len(p.uas) == 0 {
		return ""
	}
	idx := p.counter.Add(1) - 1
	return p.uas[idx%uint64(len(p.uas))]
}

// GetRandom returns a random User-Agent using crypto/rand, falling back to
// round-robin if the random source fails.
func (p *Pool) GetRandom() string {
	if len(p.uas) == 0 {
		return ""
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(p.uas))))
	if err != nil {
		return p.GetSequential()
	}
	return p.uas[n.Int64()]
}

// Len reports how many User-Agents the pool rotates through.
func (p *Pool) Len() int { return len(p.uas) }
