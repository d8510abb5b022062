// Command duesort orders record files by due date and id.
package main

import (
	"context"
	"os"

	"github.com/amp-labs/duesort/logger"
	"github.com/amp-labs/duesort/shutdown"
)

func main() {
	var handler shutdown.Handler

	ctx, stop := handler.Listen(context.Background())

	err := newRootCmd(&handler).ExecuteContext(ctx)

	stop()

	if err != nil {
		logger.Get(ctx).Error("duesort failed", "error", err)
		os.Exit(1)
	}
}
