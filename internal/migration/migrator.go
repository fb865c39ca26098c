package migration

import "context"

// Migrator prepares the run history store
type Migrator interface {
	Run(ctx context.Context) error
}
