// Package registry provides a generic thread-safe registry for values indexed by key.
//
// Registry is designed for the setup-then-read pattern of an analysis job:
// filters and producers are registered once while the job is configured and
// then looked up concurrently by every worker. Reads take a sync.RWMutex read
// lock, so lookups from many workers do not serialize.
//
// # Basic Usage
//
//	r := registry.New[string, filter.Filter]()
//	if err := r.RegisterUnique("ElectronTriggerMatchingFilter", f); err != nil {
//	    return err // duplicate id
//	}
//
//	f, ok := r.Get("ElectronTriggerMatchingFilter")
//
// # Ordering
//
// Go maps have no order. SortedKeys returns the keys in ascending order so
// that anything derived from a registry (listings, default filter chains)
// is reproducible from run to run.
//
// # Thread Safety
//
// All Registry methods are safe for concurrent use.
package registry
