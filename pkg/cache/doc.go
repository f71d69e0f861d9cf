// Package cache provides a process-local expiring key-value store.
//
// TTLCache combines lazy expiration (expired entries are removed when read)
// with a periodic background sweep that bounds memory regardless of access
// patterns. All operations on a single key are serialized by the cache mutex,
// so reads never observe partially applied writes and the atomic Update
// primitive can back higher-level constructs like rate-limit counters.
//
// The store is not durable and not shared across processes. Deployments
// running multiple instances need an externally shared equivalent (for
// example Redis) wherever cross-instance consistency matters.
package cache
