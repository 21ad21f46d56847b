package db

import (
	"context"
	"errors"
	"log"

	"marketops/models"
)

// ErrManagerStopped is returned for operations submitted after Stop.
var ErrManagerStopped = errors.New("database manager stopped")

// Operation represents a database write that needs to be executed
type Operation struct {
	Execute func() error
	Result  chan error
}

// DBManager serializes writes to the database. SQLite allows one writer at a
// time; funneling upserts through a single worker keeps concurrent refreshes
// from tripping over busy errors while reads stay unserialized.
type DBManager struct {
	opQueue  chan Operation
	stopping chan struct{}
	stopped  chan struct{}
}

// NewDBManager creates a new database manager
func NewDBManager() *DBManager {
	m := &DBManager{
		opQueue:  make(chan Operation, 100),
		stopping: make(chan struct{}),
		stopped:  make(chan struct{}),
	}

	// Start the worker goroutine
	go m.worker()
	log.Println("Database access manager started")

	return m
}

// worker processes operations one at a time
func (m *DBManager) worker() {
	defer close(m.stopped)
	for {
		select {
		case op := <-m.opQueue:
			op.Result <- op.Execute()
		case <-m.stopping:
			return
		}
	}
}

// ExecuteOperation executes a database write on the worker. Once the manager
// is stopped it returns ErrManagerStopped instead of blocking on a queue
// nobody drains.
func (m *DBManager) ExecuteOperation(execute func() error) error {
	resultChan := make(chan error, 1)
	select {
	case m.opQueue <- Operation{Execute: execute, Result: resultChan}:
	case <-m.stopping:
		return ErrManagerStopped
	}
	select {
	case err := <-resultChan:
		return err
	case <-m.stopped:
		// The worker may have executed the operation just before exiting;
		// prefer its result over the sentinel
		select {
		case err := <-resultChan:
			return err
		default:
			return ErrManagerStopped
		}
	}
}

// Stop stops the database manager and waits for the worker to exit.
func (m *DBManager) Stop() {
	close(m.stopping)
	<-m.stopped
}

// Methods for specific repository operations

// UpsertMarketplaceStatus serializes marketplace status upserts
func (m *DBManager) UpsertMarketplaceStatus(repo MarketplaceStatusRepository, ctx context.Context, status *models.MarketplaceStatus) error {
	return m.ExecuteOperation(func() error {
		return repo.Upsert(ctx, status)
	})
}

// UpsertOperationalHours serializes operational hours upserts
func (m *DBManager) UpsertOperationalHours(repo OperationalHoursRepository, ctx context.Context, hours *models.OperationalHours) error {
	return m.ExecuteOperation(func() error {
		return repo.Upsert(ctx, hours)
	})
}

// UpsertGeolocation serializes geolocation cache upserts
func (m *DBManager) UpsertGeolocation(repo GeolocationRepository, ctx context.Context, cache *models.GeolocationCache) error {
	return m.ExecuteOperation(func() error {
		return repo.Upsert(ctx, cache)
	})
}
