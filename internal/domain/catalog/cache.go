package catalog

import "context"

// Cache holds normalized catalogs between the details fetch and the commit,
// so the commit step can reconcile provider-omitted fields without a second
// details round-trip. Entries are short-lived; a miss is not an error.
type Cache interface {
	Put(ctx context.Context, key string, cat *RateCatalog) error
	Get(ctx context.Context, key string) (*RateCatalog, bool, error)
}
