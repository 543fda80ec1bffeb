package app

import (
	"context"

	"github.com/savrasov/HeapDB/src/cli"
)

var rootCmd = cli.Init("heapdb")

func MustExecute(ctx context.Context) {
	initCreateTable()
	initDropTable()
	initInsert()
	initGet()
	initDelete()
	initScan()
	initStats()

	rootCmd.MustExecute(ctx)
}
