package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	specerrors "github.com/twitter/speculator/common/errors"
	"github.com/twitter/speculator/common/log/hooks"
	"github.com/twitter/speculator/speculator/cli"
)

func main() {
	log.AddHook(hooks.NewContextHook())

	logLevelFlag := flag.String("log_level", "info", "Log everything at this level and above (error|info|debug)")
	flag.Parse()

	level, err := log.ParseLevel(*logLevelFlag)
	if err != nil {
		log.Error(err)
		return
	}
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.MakeSpeculatorCLI(ctx)
	cmd.SetArgs(flag.Args())
	if err := cmd.Execute(); err != nil {
		stop()
		log.Error(err)
		os.Exit(int(specerrors.GetExitCode(err)))
	}
}
