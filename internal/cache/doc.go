// Package cache provides a generic LRU cache.
//
// The software engine keeps shaped word widths and font faces in it, so a
// re-layout at a new width does not shape the same words again:
//
//	widths := cache.New[measureKey, fixed.Int26_6](4096)
//	w := widths.GetOrCreate(key, func() fixed.Int26_6 { return shape(key) })
//
// # Thread Safety
//
// Cache is safe for concurrent use and must not be copied after creation
// (it contains a mutex).
package cache
