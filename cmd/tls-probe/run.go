// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/H0llyW00dzZ/tls-client-engine/src/cli"
	"github.com/H0llyW00dzZ/tls-client-engine/src/logger"
	verpkg "github.com/H0llyW00dzZ/tls-client-engine/src/version"
)

var version string // set by ldflags or defaults to imported version

func init() {
	if version == "" {
		version = verpkg.Version
	}
}

func main() {
	log := logger.NewLeveled(os.Stderr, logger.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, version, log); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}
