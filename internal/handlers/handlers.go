package handlers

import (
	"media-convert/internal/database"
	"media-convert/internal/orchestrator"
	"media-convert/internal/startup"
)

// Handlers bundles the HTTP surface's dependencies.
type Handlers struct {
	pool   *orchestrator.Pool
	db     *database.Database
	config *startup.Config
}

// New creates the handler set. db may be nil when job history is
// disabled.
func New(pool *orchestrator.Pool, db *database.Database, config *startup.Config) *Handlers {
	return &Handlers{
		pool:   pool,
		db:     db,
		config: config,
	}
}
