package raknet

import (
	"fmt"
	"strconv"

	cache "github.com/patrickmn/go-cache"
)

// fragmentBuffer accumulates the chunks of one split payload until every
// index has arrived.
type fragmentBuffer struct {
	count  uint32
	chunks map[uint32][]byte
}

// FragmentAssembler buffers and reassembles payloads split across multiple
// frames. It is backed by github.com/patrickmn/go-cache, the same
// TTL-expiring map cppla-moto uses for its per-IP request counters
// (controller/server.go's ipCache): each split id gets a 30s expiration,
// and a background sweep every minute catches anything a tick-driven GC
// call missed. This buys time-based eviction of abandoned split buffers
// without a hand-rolled timestamp scan.
type FragmentAssembler struct {
	buffers *cache.Cache
}

// NewFragmentAssembler returns an assembler whose entries expire after
// FragmentExpiry.
func NewFragmentAssembler() *FragmentAssembler {
	return &FragmentAssembler{buffers: cache.New(FragmentExpiry, FragmentCleanupScan)}
}

// Insert adds one fragment to its split buffer. It returns the reassembled
// payload and true once every fragment for that split id has arrived;
// otherwise it returns (nil, false) and the frame stays buffered.
func (a *FragmentAssembler) Insert(split *SplitInfo, payload []byte) ([]byte, bool, error) {
	if split.Count == 0 || split.Count > MaxSplitCount {
		return nil, false, fmt.Errorf("raknet: split count %d out of range", split.Count)
	}
	if split.Index >= split.Count {
		return nil, false, fmt.Errorf("raknet: split index %d out of range for count %d", split.Index, split.Count)
	}

	key := strconv.FormatUint(uint64(split.ID), 10)

	var buf *fragmentBuffer
	if v, ok := a.buffers.Get(key); ok {
		buf = v.(*fragmentBuffer)
	} else {
		buf = &fragmentBuffer{count: split.Count, chunks: make(map[uint32][]byte, split.Count)}
	}

	buf.chunks[split.Index] = payload
	if uint32(len(buf.chunks)) < buf.count {
		a.buffers.Set(key, buf, FragmentExpiry)
		return nil, false, nil
	}

	a.buffers.Delete(key)
	out := make([]byte, 0, len(payload)*int(buf.count))
	for i := uint32(0); i < buf.count; i++ {
		out = append(out, buf.chunks[i]...)
	}
	return out, true, nil
}

// GC drops split buffers older than FragmentExpiry and reports how many
// were dropped. Called once per tick per the server's fixed schedule; the
// cache's own janitor goroutine also performs this sweep on its own
// interval as a backstop.
func (a *FragmentAssembler) GC() int {
	before := a.buffers.ItemCount()
	a.buffers.DeleteExpired()
	return before - a.buffers.ItemCount()
}

// Pending reports how many split ids currently have an in-flight buffer,
// used for metrics.
func (a *FragmentAssembler) Pending() int {
	return a.buffers.ItemCount()
}
