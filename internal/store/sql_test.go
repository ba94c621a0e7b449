package store

import (
	"testing"

	"github.com/erazemk/najdeno/internal/db"
)

func TestSQLStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		return NewSQLStore(db.NewTestDB(t))
	})
}
