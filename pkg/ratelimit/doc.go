// Package ratelimit gates sensitive operations behind fixed-window request
// counting keyed by (namespace, caller identity).
//
// The FixedWindow limiter counts requests in discrete buckets: the first
// request in a window starts it with count 1, subsequent requests increment
// atomically, and admission is simply count <= limit. Counters live behind
// the Store interface with two backends: MemoryStore (built on the expiring
// cache, single process) and RedisStore (shared across instances).
//
// Identity resolution prefers an authenticated account identifier and falls
// back to a device fingerprint for anonymous callers; see Identity and the
// HTTP Middleware for the request-level wiring.
package ratelimit
