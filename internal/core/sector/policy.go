package sector

import "github.com/zeusync/sectors/internal/core/models/interfaces"

// CreationPolicy picks the pool that creation, destruction and enumeration are
// routed to. pools is never empty and is in insertion order. It is a copy, so
// a policy may keep or reorder it without affecting the manager.
type CreationPolicy func(pools []interfaces.EntityPool) interfaces.EntityPool

// FirstPool routes everything to the pool the manager was constructed with.
func FirstPool(pools []interfaces.EntityPool) interfaces.EntityPool {
	return pools[0]
}
