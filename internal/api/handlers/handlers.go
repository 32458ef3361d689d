// SPDX-License-Identifier: AGPL-3.0-only
package handlers

import (
	"database/sql"

	"github.com/fluffyriot/profilescope/internal/analysis"
	"github.com/fluffyriot/profilescope/internal/config"
	"github.com/fluffyriot/profilescope/internal/database"
	"github.com/fluffyriot/profilescope/internal/graph"
	"github.com/fluffyriot/profilescope/internal/worker"
)

type Handler struct {
	DB     *database.Queries
	DBConn *sql.DB
	Config *config.AppConfig
	Worker *worker.Worker
	Engine *analysis.Engine
	Graph  *graph.Builder
}

func NewHandler(db *database.Queries, cfg *config.AppConfig, w *worker.Worker, engine *analysis.Engine, builder *graph.Builder) *Handler {
	return &Handler{
		DB:     db,
		DBConn: db.DB(),
		Config: cfg,
		Worker: w,
		Engine: engine,
		Graph:  builder,
	}
}
