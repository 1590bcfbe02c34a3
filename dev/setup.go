package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"trending-etl/lib/configutil"
	"trending-etl/lib/trendstore"
)

func cmd(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	fullCmd := name
	for _, a := range args {
		fullCmd += " "
		fullCmd += a
	}

	fmt.Printf("$ %s\n", fullCmd)
	return cmd.Run()
}

func CreateLocalStack() error {
	return cmd("docker", "compose", "-f", "dev/local_stack/docker-compose.yml", "up", "-d")
}

func CreateEmptyStore(ctx context.Context) error {
	store, err := trendstore.Open(trendstore.Config{File: trendstore.DefaultFile})
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Println("ensuring schema of", trendstore.DefaultFile)
	return store.EnsureSchema(ctx)
}

const localStackConfig = `{
  storage: {
    driver: "mysql",
    host: "127.0.0.1",
    port: 3306,
    user: "trending",
    password: "trending",
    database: "github",
  },
}
`

const localConfig = `{
  source: {
    layout: "current",
  },
}
`

func CreateLocalConfig(stack bool) error {
	path := configutil.LocalPath("config.json5")
	_, err := os.Stat(path)
	if err == nil {
		fmt.Println("local config already exists at", path)
		return nil
	}

	contents := localConfig
	if stack {
		contents = localStackConfig
	}
	fmt.Println("writing local config to", path)
	return os.WriteFile(path, []byte(contents), 0600)
}

func PrintConfigLocations() {
	fmt.Println("configuration is read from:")
	fmt.Println("\tconfig.json5")
	fmt.Println("\t" + configutil.LocalPath("config.json5") + " (overrides)")
	fmt.Println("\ttelemetry.json5 (optional, searched upwards from the working directory)")
}
