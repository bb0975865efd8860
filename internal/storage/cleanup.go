package storage

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// CleanupObserver is told about media objects that could not be removed.
type CleanupObserver interface {
	CleanupFailed(storageID, reason string, err error)
}

// LogObserver logs failed cleanups and counts the objects left behind.
type LogObserver struct {
	logger  logrus.FieldLogger
	orphans atomic.Int64
}

func NewLogObserver(logger logrus.FieldLogger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) CleanupFailed(storageID, reason string, err error) {
	n := o.orphans.Add(1)
	o.logger.WithFields(logrus.Fields{
		"storage_id": storageID,
		"reason":     reason,
		"orphans":    n,
	}).WithError(err).Warn("media cleanup failed")
}

// Orphans returns how many cleanups have failed so far.
func (o *LogObserver) Orphans() int64 {
	return o.orphans.Load()
}

// Cleaner deletes media objects in the background without failing the request
// that asked for it.
type Cleaner struct {
	store    Service
	observer CleanupObserver
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewCleaner(store Service, observer CleanupObserver) *Cleaner {
	return &Cleaner{
		store:    store,
		observer: observer,
		timeout:  30 * time.Second,
	}
}

// Remove schedules deletion of storageID. Empty ids are ignored.
func (c *Cleaner) Remove(storageID, reason string) {
	if storageID == "" {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		if err := c.store.Delete(ctx, storageID); err != nil && c.observer != nil {
			c.observer.CleanupFailed(storageID, reason, err)
		}
	}()
}

// Wait blocks until every scheduled deletion has finished.
func (c *Cleaner) Wait() {
	c.wg.Wait()
}
