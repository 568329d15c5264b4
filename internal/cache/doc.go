// Package cache provides a small bounded LRU cache.
//
// The renderer uses it to keep compiled shader binaries keyed by a hash of
// their source, so a shader file loaded twice is compiled once:
//
//	c := cache.New[[32]byte, []uint32](64)
//	spirv, err := c.GetOrCompute(key, func() ([]uint32, error) {
//	    return compile(src)
//	})
//
// Failed computations are not cached.
package cache
