// Package inmemdb provides map-backed repositories for tests and local runs
// without a database.
package inmemdb

import (
	"sync"

	"github.com/FAHMIDA-78/copo/core/batch"
	"github.com/FAHMIDA-78/copo/core/user"
)

type (
	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
	}

	batchTable struct {
		mutex   sync.RWMutex
		batches map[string]*batch.ProcessedBatch
	}

	DB struct {
		user  *userTable
		batch *batchTable
	}
)

func NewDB() *DB {
	return &DB{
		user:  &userTable{table: make(map[string]*user.User)},
		batch: &batchTable{batches: make(map[string]*batch.ProcessedBatch)},
	}
}
