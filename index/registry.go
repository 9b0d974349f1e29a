package index

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
	"sync"
	"time"
)

// Builder creates the dataset for a key, e.g. by loading the records of an operator.
type Builder func(key string) (*Dataset, error)

// Registry lazily builds and caches one dataset per key. Concurrent first requests for the same key result in exactly
// one build whose result is shared, requests for other keys are not blocked by it. Failed builds are not cached, the
// next request tries again.
type Registry struct {
	builder       Builder
	datasets      map[string]*Dataset
	datasetsMutex *sync.RWMutex
	builds        *singleflight.Group
}

func NewRegistry(builder Builder) *Registry {
	return &Registry{
		builder:       builder,
		datasets:      map[string]*Dataset{},
		datasetsMutex: &sync.RWMutex{},
		builds:        &singleflight.Group{},
	}
}

func (r *Registry) Get(key string) (*Dataset, error) {
	if dataset, ok := r.cached(key); ok {
		return dataset, nil
	}

	value, err, _ := r.builds.Do(key, func() (interface{}, error) {
		// Another build for this key might have finished between the cache check and this call.
		if dataset, ok := r.cached(key); ok {
			return dataset, nil
		}

		sigolo.Infof("Build dataset '%s'", key)
		buildStartTime := time.Now()

		dataset, err := r.builder(key)
		if err != nil {
			return nil, errors.Wrapf(err, "Unable to build dataset '%s'", key)
		}

		r.datasetsMutex.Lock()
		r.datasets[key] = dataset
		r.datasetsMutex.Unlock()

		sigolo.Infof("Built dataset '%s' with %d records in %s", key, dataset.RecordCount(), time.Since(buildStartTime))
		return dataset, nil
	})
	if err != nil {
		return nil, err
	}

	return value.(*Dataset), nil
}

// Has checks whether the dataset of the given key has already been built.
func (r *Registry) Has(key string) bool {
	_, ok := r.cached(key)
	return ok
}

func (r *Registry) cached(key string) (*Dataset, bool) {
	r.datasetsMutex.RLock()
	defer r.datasetsMutex.RUnlock()

	dataset, ok := r.datasets[key]
	return dataset, ok
}
