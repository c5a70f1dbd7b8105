// Package cache holds a small generic LRU used to memoize values that are
// expensive to build and cheap to share, such as per-axis resampling
// tables.
//
//	c := cache.New[key, [][]tap](64)
//	t := c.GetOrCreate(k, func() [][]tap { return build(k) })
//
// Values handed out by the cache are shared between callers and must be
// treated as read-only.
package cache
