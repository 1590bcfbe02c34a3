package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
)

func create(ctx context.Context, recreate, stack bool) error {
	_, err := os.Stat("go.mod")
	if os.IsNotExist(err) {
		return fmt.Errorf("the dev environment must be created in the repository root (the same directory as the 'go.mod' file)")
	}

	if recreate {
		err = os.RemoveAll("dev/.state")
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	err = os.MkdirAll("dev/.state", 0777)
	if err != nil && !os.IsExist(err) {
		return err
	}

	if stack {
		err = CreateLocalStack()
		if err != nil {
			return err
		}
	}
	err = CreateEmptyStore(ctx)
	if err != nil {
		return err
	}
	err = CreateLocalConfig(stack)
	if err != nil {
		return err
	}
	PrintConfigLocations()

	return nil
}

func main() {
	recreate := flag.Bool("recreate", false, "recreate the dev environment from scratch")
	stack := flag.Bool("stack", false, "start the mysql and postgres containers in dev/local_stack")
	flag.Parse()

	err := create(context.Background(), *recreate, *stack)
	if err != nil {
		slog.Error("failed to create dev environment", "err", err.Error())
		os.Exit(1)
	}

	slog.Info("dev environment created sucessfully!")
}
