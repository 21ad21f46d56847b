package db_test

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"marketops/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBManager_ExecuteOperation(t *testing.T) {
	manager := db.NewDBManager()
	defer manager.Stop()

	var ran atomic.Bool
	err := manager.ExecuteOperation(func() error {
		ran.Store(true)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran.Load())

	opErr := errors.New("disk full")
	err = manager.ExecuteOperation(func() error { return opErr })
	assert.Equal(t, opErr, err)
}

func TestDBManager_ExecuteOperationAfterStop(t *testing.T) {
	manager := db.NewDBManager()
	manager.Stop()

	var ran atomic.Bool
	done := make(chan error, 1)
	go func() {
		done <- manager.ExecuteOperation(func() error {
			ran.Store(true)
			return nil
		})
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, db.ErrManagerStopped)
	case <-time.After(2 * time.Second):
		t.Fatal("ExecuteOperation blocked after Stop")
	}
	assert.False(t, ran.Load())
}
