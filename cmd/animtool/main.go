// animtool is a CLI for inspecting and exercising the animation core on a
// procedural rig.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/boneblend/internal/assets"
	"github.com/Faultbox/boneblend/internal/config"
	"github.com/Faultbox/boneblend/internal/logger"
)

var errUsage = errors.New("usage")

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)

	args := config.Args()
	if len(args) < 1 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	lib := assets.NewManager()
	err = run(ctx, cfg, lib, args[0], args[1:], os.Stdout)
	stop()
	lib.Close()
	logger.Sync()

	switch {
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		printUsage(os.Stderr)
		os.Exit(1)
	case err != nil:
		logger.Error("command failed", zap.String("command", args[0]), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, lib *assets.Manager, command string, args []string, out io.Writer) error {
	switch command {
	case "info":
		return cmdInfo(cfg, lib, out)
	case "pose":
		return cmdPose(cfg, lib, args, out)
	case "compress":
		return cmdCompress(cfg, lib, args, out)
	case "simulate", "sim":
		return cmdSimulate(ctx, cfg, lib, out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		return fmt.Errorf("unknown command %q: %w", command, errUsage)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `animtool - skeletal animation core utility

Usage:
  animtool [global flags] <command> [options]

Global flags:
  -config <file>    Config file (default ./config.yaml or user config dir)
  -debug            Debug logging
  -workers <n>      Instances updated in parallel
  -instances <n>    Instances to simulate
  -frames <n>       Frames to simulate
  -root             Include the model root transform

Commands:
  info                                   Show the rig's skeleton, animations and meshes
  pose [-anim name] [-time s] [-weight w] [-replace]
                                         Blend one animation and print bone positions
  compress [-t tol] [-r degrees]         Compress the rig's animations and report savings
  simulate                               Update many instances for many frames

Examples:
  animtool info
  animtool pose -anim swing -time 0.5
  animtool -instances 1000 -workers 8 simulate`)
}
