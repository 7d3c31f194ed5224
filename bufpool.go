package evkv

import "sync"

// bytePool provides reusable read-scratch buffers using a size-bucketed
// sync.Pool, reducing GC pressure from the per-connection, per-readiness
// 64 KiB scratch read (§4.6). Adapted from a bucketed byte-pool pattern
// for high-frequency non-blocking I/O: a small set of fixed bucket sizes,
// each backed by its own sync.Pool.
type bytePool struct {
	buckets []poolBucket
}

type poolBucket struct {
	size int
	pool sync.Pool
}

// defaultBytePool returns a bytePool sized for this server's one fixed
// scratch-read size; additional buckets are not needed since every
// connection reads into the same readScratchSize buffer.
func defaultBytePool() *bytePool {
	return newBytePool([]int{readScratchSize})
}

func newBytePool(sizes []int) *bytePool {
	buckets := make([]poolBucket, len(sizes))
	for i, sz := range sizes {
		sz := sz
		buckets[i] = poolBucket{size: sz}
		buckets[i].pool.New = func() any { return make([]byte, sz) }
	}
	return &bytePool{buckets: buckets}
}

// get returns a buffer with capacity >= n, taken from the first bucket
// whose size is at least n. If no bucket is that large, a fresh unpooled
// buffer is allocated.
func (bp *bytePool) get(n int) []byte {
	for i := range bp.buckets {
		if bp.buckets[i].size >= n {
			buf := bp.buckets[i].pool.Get().([]byte)
			return buf[:cap(buf)]
		}
	}
	return make([]byte, n)
}

// put returns buf to the pool if its capacity matches a known bucket size.
func (bp *bytePool) put(buf []byte) {
	capn := cap(buf)
	for i := range bp.buckets {
		if bp.buckets[i].size == capn {
			bp.buckets[i].pool.Put(buf[:capn])
			return
		}
	}
}
