package main

import (
	"context"
	"trending-etl/cmd/trending-cli/commands"
	"trending-etl/lib/serviceutil"
)

func main() {
	ctx, stop := serviceutil.SignalContext(context.Background())
	defer stop()
	commands.ExecuteContext(ctx)
}
