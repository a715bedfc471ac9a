package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/tambiyash/image-lizard/internal/clock"
	"github.com/tambiyash/image-lizard/internal/config"
	"github.com/tambiyash/image-lizard/internal/migration"
	"github.com/tambiyash/image-lizard/internal/observability"
	"github.com/tambiyash/image-lizard/internal/scheduler"
	"github.com/tambiyash/image-lizard/internal/seed"
	"github.com/tambiyash/image-lizard/internal/server"
	"github.com/tambiyash/image-lizard/pkg/db"
	"github.com/tambiyash/image-lizard/pkg/redisconn"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		redisconn.Module,
		clock.Module,
		migration.Module,
		seed.Module,

		// HTTP surface plus the feature modules it serves
		server.Module,
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
