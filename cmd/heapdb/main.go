package main

import (
	"context"

	"github.com/savrasov/HeapDB/cmd/heapdb/app"
)

func main() {
	app.MustExecute(context.Background())
}
