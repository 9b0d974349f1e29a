package index

import (
	"github.com/pkg/errors"
	"netcov/feature"
	"netcov/util"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRegistry_buildsOnceAndCaches(t *testing.T) {
	// Arrange
	var buildCount int32
	registry := NewRegistry(func(key string) (*Dataset, error) {
		atomic.AddInt32(&buildCount, 1)
		return BuildDataset(
			[]*feature.Record{newRecord(1, 48.8566, 2.3522)},
			0.5,
		)
	})

	// Act
	first, err := registry.Get("Orange")
	util.AssertNil(t, err)
	second, err := registry.Get("Orange")
	util.AssertNil(t, err)

	// Assert
	util.AssertTrue(t, first == second)
	util.AssertEqual(t, int32(1), atomic.LoadInt32(&buildCount))
	util.AssertTrue(t, registry.Has("Orange"))
	util.AssertFalse(t, registry.Has("SFR"))
}

func TestRegistry_concurrentFirstAccessBuildsOnce(t *testing.T) {
	// Arrange
	var buildCount int32
	registry := NewRegistry(func(key string) (*Dataset, error) {
		atomic.AddInt32(&buildCount, 1)
		time.Sleep(50 * time.Millisecond)
		return BuildDataset([]*feature.Record{newRecord(1, 48.8566, 2.3522)}, 0.5)
	})

	callers := 32
	results := make([]*Dataset, callers)
	errs := make([]error, callers)
	start := make(chan struct{})
	wg := &sync.WaitGroup{}

	// Act
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = registry.Get("Free")
		}(i)
	}
	close(start)
	wg.Wait()

	// Assert
	util.AssertEqual(t, int32(1), atomic.LoadInt32(&buildCount))
	for i := 0; i < callers; i++ {
		util.AssertNil(t, errs[i])
		util.AssertTrue(t, results[i] == results[0])
	}
	util.AssertNotNil(t, results[0])
}

func TestRegistry_failedBuildIsNotCached(t *testing.T) {
	var buildCount int32
	registry := NewRegistry(func(key string) (*Dataset, error) {
		if atomic.AddInt32(&buildCount, 1) == 1 {
			return BuildDataset(nil, 0.5)
		}
		return BuildDataset([]*feature.Record{newRecord(1, 48.8566, 2.3522)}, 0.5)
	})

	dataset, err := registry.Get("SFR")
	util.AssertNil(t, dataset)
	util.AssertErrorIs(t, ErrEmptyInput, err)
	util.AssertFalse(t, registry.Has("SFR"))

	dataset, err = registry.Get("SFR")
	util.AssertNil(t, err)
	util.AssertNotNil(t, dataset)
	util.AssertEqual(t, int32(2), atomic.LoadInt32(&buildCount))
}

func TestRegistry_differentKeysDoNotBlockEachOther(t *testing.T) {
	// Arrange
	releaseSlowBuild := make(chan struct{})
	registry := NewRegistry(func(key string) (*Dataset, error) {
		if key == "slow" {
			<-releaseSlowBuild
		}
		return BuildDataset([]*feature.Record{newRecord(1, 48.8566, 2.3522)}, 0.5)
	})

	slowDone := make(chan error)
	go func() {
		_, err := registry.Get("slow")
		slowDone <- err
	}()

	// Act
	fastDone := make(chan error)
	go func() {
		_, err := registry.Get("fast")
		fastDone <- err
	}()

	// Assert
	select {
	case err := <-fastDone:
		util.AssertNil(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Build of key 'fast' was blocked by build of key 'slow'")
	}

	close(releaseSlowBuild)
	util.AssertNil(t, <-slowDone)
}

func TestRegistry_builderErrorIsWrapped(t *testing.T) {
	registry := NewRegistry(func(key string) (*Dataset, error) {
		return nil, errors.New("file not found")
	})

	_, err := registry.Get("Bouygue")

	util.AssertError(t, "Unable to build dataset 'Bouygue': file not found", err)
}
