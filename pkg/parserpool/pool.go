// Package parserpool provides a pool of gnparser instances for concurrent
// name parsing. This is a pure package, parsing is computation, not I/O.
package parserpool

import (
	"errors"
	"runtime"
	"sync"

	"github.com/gnames/gnlib/ent/nomcode"
	"github.com/gnames/gnparser"
	"github.com/gnames/gnparser/ent/parsed"
)

// ErrClosed is returned by Parse after the pool was closed.
var ErrClosed = errors.New("parser pool is closed")

// Pool provides gnparser instances for concurrent parsing of scientific
// names under different nomenclatural codes.
type Pool interface {
	// Parse parses a name string using the parser configured for the given
	// nomenclatural code. Codes without a dedicated parser use a
	// code-agnostic one. It is safe for concurrent use.
	Parse(nameString string, code nomcode.Code) (parsed.Parsed, error)

	// Size returns the number of parsers per code.
	Size() int

	// Close shuts down the parser pools. Parse returns ErrClosed after
	// Close.
	Close()
}

type poolImpl struct {
	mu     sync.RWMutex
	closed bool
	size   int
	pools  map[nomcode.Code]chan gnparser.GNparser
}

// NewPool creates a new parser pool with the specified number of parsers
// per code. If jobsNum is 0, it defaults to runtime.NumCPU().
// Botanical and zoological names get dedicated parsers, all other codes
// share a code-agnostic pool.
func NewPool(jobsNum int) Pool {
	size := jobsNum
	if size <= 0 {
		size = runtime.NumCPU()
	}

	res := &poolImpl{
		size:  size,
		pools: make(map[nomcode.Code]chan gnparser.GNparser),
	}
	for _, code := range []nomcode.Code{
		nomcode.Botanical, nomcode.Zoological, nomcode.Unknown,
	} {
		cfg := gnparser.NewConfig(gnparser.OptCode(code))
		res.pools[code] = gnparser.NewPool(cfg, size)
	}
	return res
}

// Size returns the number of parsers per code.
func (p *poolImpl) Size() int {
	return p.size
}

// Parse takes a parser from the pool of the code, parses the name and
// returns the parser back.
func (p *poolImpl) Parse(
	nameString string,
	code nomcode.Code,
) (parsed.Parsed, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return parsed.Parsed{}, ErrClosed
	}

	ch, ok := p.pools[code]
	if !ok {
		ch = p.pools[nomcode.Unknown]
	}

	parser := <-ch
	res := parser.ParseName(nameString)
	ch <- parser

	return res, nil
}

// Close shuts down all parser pools. It is safe to call Close more than
// once.
func (p *poolImpl) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for _, ch := range p.pools {
		close(ch)
		for range ch {
		}
	}
}
