package chunk

import (
	"errors"
	"fmt"
	"log"

	"github.com/irfansharif/globe/internal/tile"
)

// Index addresses a slot in a Pool.
type Index int32

// NilIndex marks an absent child.
const NilIndex Index = -1

// ErrPoolExhausted is returned by Acquire when every slot is in use.
var ErrPoolExhausted = errors.New("chunk pool exhausted")

// Pool is a fixed-capacity arena of chunks. Slots are handed out from a free
// list, so acquiring and releasing are O(1) and chunk pointers stay valid for
// as long as the slot is held.
type Pool struct {
	chunks []Chunk
	inUse  []bool
	free   []Index
	strict bool
}

// NewPool returns a pool of the given capacity. In strict mode releasing a
// slot that is not held panics; otherwise it is logged and ignored.
func NewPool(capacity int, strict bool) *Pool {
	p := &Pool{
		chunks: make([]Chunk, capacity),
		inUse:  make([]bool, capacity),
		free:   make([]Index, 0, capacity),
		strict: strict,
	}
	p.Reset()
	return p
}

// Acquire takes a free slot and initializes it as a leaf for tile i.
func (p *Pool) Acquire(i tile.Index) (Index, error) {
	if len(p.free) == 0 {
		return NilIndex, ErrPoolExhausted
	}
	idx := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.inUse[idx] = true
	p.chunks[idx] = NewChunk(i)
	return idx, nil
}

// Release returns a slot to the free list.
func (p *Pool) Release(idx Index) {
	if idx < 0 || int(idx) >= len(p.chunks) || !p.inUse[idx] {
		if p.strict {
			panic(fmt.Sprintf("chunk pool: release of slot %d which is not in use", idx))
		}
		log.Printf("WARNING: chunk pool: ignoring release of slot %d which is not in use", idx)
		return
	}
	p.inUse[idx] = false
	p.chunks[idx] = Chunk{}
	p.free = append(p.free, idx)
}

// Get returns the chunk held in slot idx. The pointer is only meaningful
// while the slot is in use.
func (p *Pool) Get(idx Index) *Chunk { return &p.chunks[idx] }

// InUse reports whether slot idx is currently held.
func (p *Pool) InUse(idx Index) bool {
	return idx >= 0 && int(idx) < len(p.chunks) && p.inUse[idx]
}

// Cap returns the pool's capacity.
func (p *Pool) Cap() int { return len(p.chunks) }

// Len returns the number of slots in use.
func (p *Pool) Len() int { return len(p.chunks) - len(p.free) }

// Strict reports whether the pool panics on invalid releases.
func (p *Pool) Strict() bool { return p.strict }

// Reset releases every slot. Slots are handed out in ascending order
// afterwards.
func (p *Pool) Reset() {
	p.free = p.free[:0]
	for i := len(p.chunks) - 1; i >= 0; i-- {
		p.inUse[i] = false
		p.chunks[i] = Chunk{}
		p.free = append(p.free, Index(i))
	}
}

// Validate checks that the free list and the in-use bitmap agree.
func (p *Pool) Validate() error {
	var errs []string

	onFreeList := make([]bool, len(p.chunks))
	for _, idx := range p.free {
		if idx < 0 || int(idx) >= len(p.chunks) {
			errs = append(errs, fmt.Sprintf("free list holds out-of-range slot %d", idx))
			continue
		}
		if onFreeList[idx] {
			errs = append(errs, fmt.Sprintf("slot %d is on the free list twice", idx))
		}
		if p.inUse[idx] {
			errs = append(errs, fmt.Sprintf("slot %d is both free and in use", idx))
		}
		onFreeList[idx] = true
	}
	for idx, used := range p.inUse {
		if !used && !onFreeList[idx] {
			errs = append(errs, fmt.Sprintf("slot %d is neither free nor in use", idx))
		}
	}

	if len(errs) > 0 {
		log.Printf("chunk pool integrity check failed with %d errors:", len(errs))
		for _, err := range errs {
			log.Printf("  - %s", err)
		}
		return fmt.Errorf("chunk pool integrity check failed with %d errors", len(errs))
	}
	return nil
}
