package migrations

import (
	"fmt"
	"io/fs"
	"sync"

	squadup "github.com/dylanswipeyourbite/squadupv2"
)

// sources holds the migration trees handed to go-persistence-bun. The
// embedded squadup schema is always first; hosts append extensions with
// Register before running the migrator.
var sources struct {
	sync.RWMutex
	trees []fs.FS
}

func init() {
	core, err := fs.Sub(squadup.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		panic(fmt.Sprintf("migrations: embedded schema unavailable: %v", err))
	}
	Register(core)
}

// Register appends a migration tree laid out like data/sql/migrations, with
// Postgres files at the root and SQLite overrides under sqlite/.
func Register(tree fs.FS) {
	if tree == nil {
		return
	}
	sources.Lock()
	sources.trees = append(sources.trees, tree)
	sources.Unlock()
}

// Filesystems returns the registered trees in registration order.
func Filesystems() []fs.FS {
	sources.RLock()
	defer sources.RUnlock()
	return append([]fs.FS(nil), sources.trees...)
}
