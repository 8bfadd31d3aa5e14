// Package memmon provides heap accounting around measured operations.
package memmon

import "runtime"

// Sample is a point-in-time snapshot of heap usage.
type Sample struct {
	HeapAlloc  uint64
	TotalAlloc uint64
	NumGC      uint32
}

// Snapshot reads the current heap state.
func Snapshot() Sample {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return Sample{
		HeapAlloc:  ms.HeapAlloc,
		TotalAlloc: ms.TotalAlloc,
		NumGC:      ms.NumGC,
	}
}

// SnapshotAfterGC hints the collector to run first so the snapshot
// reflects live allocations rather than garbage awaiting collection.
func SnapshotAfterGC() Sample {
	runtime.GC()
	return Snapshot()
}

// HeapDelta returns the heap growth between two samples, clamped at
// zero: a collection between the samples can shrink the heap.
func HeapDelta(before, after Sample) uint64 {
	if after.HeapAlloc <= before.HeapAlloc {
		return 0
	}
	return after.HeapAlloc - before.HeapAlloc
}
