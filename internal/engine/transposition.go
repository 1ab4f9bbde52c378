package engine

import (
	"sync"
	"sync/atomic"

	"github.com/hailam/powerchess/internal/board"
)

// Number of shards for TT locking (power of 2 for fast modulo)
const ttShardCount = 256
const ttShardMask = ttShardCount - 1

// TTEntry remembers the best move found for a position. The table is only a
// move-ordering hint: scores are never read back, so a stale or colliding
// entry can change the search order but never the search result.
type TTEntry struct {
	Key      uint64
	BestMove board.Move
	Depth    int8
	Age      uint8
}

// TranspositionTable is a hash table of best-move hints, safe for use by
// the parallel root workers.
type TranspositionTable struct {
	entries []TTEntry
	shards  [ttShardCount]sync.RWMutex
	size    uint64
	mask    uint64
	age     atomic.Uint32

	hits   atomic.Uint64
	probes atomic.Uint64
}

// NewTranspositionTable creates a transposition table with the given size in MB.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	if sizeMB < 1 {
		sizeMB = 1
	}
	const entrySize = 16
	numEntries := roundDownToPowerOf2(uint64(sizeMB) * 1024 * 1024 / entrySize)

	return &TranspositionTable{
		entries: make([]TTEntry, numEntries),
		size:    numEntries,
		mask:    numEntries - 1,
	}
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Probe returns the hint stored for hash, if any.
func (tt *TranspositionTable) Probe(hash uint64) (TTEntry, bool) {
	tt.probes.Add(1)

	idx := hash & tt.mask
	shard := idx & ttShardMask

	tt.shards[shard].RLock()
	entry := tt.entries[idx]
	tt.shards[shard].RUnlock()

	if entry.Key == hash && entry.BestMove != board.NoMove {
		tt.hits.Add(1)
		return entry, true
	}
	return TTEntry{}, false
}

// Store records the best move for hash. Deeper entries from the current
// search are kept over shallower ones.
func (tt *TranspositionTable) Store(hash uint64, depth int, bestMove board.Move) {
	idx := hash & tt.mask
	shard := idx & ttShardMask

	tt.shards[shard].Lock()
	entry := &tt.entries[idx]
	currentAge := uint8(tt.age.Load())
	if entry.Age != currentAge || depth >= int(entry.Depth) {
		*entry = TTEntry{Key: hash, BestMove: bestMove, Depth: int8(depth), Age: currentAge}
	}
	tt.shards[shard].Unlock()
}

// NewSearch ages the table so entries from earlier searches are replaced
// first.
func (tt *TranspositionTable) NewSearch() {
	tt.age.Add(1)
}

// Clear empties the table.
func (tt *TranspositionTable) Clear() {
	for i := range tt.shards {
		tt.shards[i].Lock()
	}
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
	for i := range tt.shards {
		tt.shards[i].Unlock()
	}
	tt.age.Store(0)
	tt.hits.Store(0)
	tt.probes.Store(0)
}

// HashFull returns the permille of sampled entries written by the current
// search.
func (tt *TranspositionTable) HashFull() int {
	sampleSize := 1000
	if uint64(sampleSize) > tt.size {
		sampleSize = int(tt.size)
	}
	currentAge := uint8(tt.age.Load())
	used := 0
	for i := 0; i < sampleSize; i++ {
		shard := uint64(i) & ttShardMask
		tt.shards[shard].RLock()
		e := tt.entries[i]
		tt.shards[shard].RUnlock()
		if e.BestMove != board.NoMove && e.Age == currentAge {
			used++
		}
	}
	return used * 1000 / sampleSize
}

// HitRate returns the probe hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	probes := tt.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(tt.hits.Load()) / float64(probes) * 100
}
