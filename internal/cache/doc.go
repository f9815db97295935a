// Package cache provides a small generic LRU cache with a soft limit.
//
// It memoizes values that are expensive to rebuild and keyed by a
// comparable value, such as rendering-function selections keyed by the
// render state that produced them:
//
//	c := cache.New[RenderState, Selection](16)
//	sel := c.GetOrCreate(state, func() Selection { return selectFor(state) })
//
// When the cache grows past its soft limit the least recently used quarter
// of the entries is dropped.
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
