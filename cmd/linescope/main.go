package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/five82/linescope/internal/app"
	"github.com/five82/linescope/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("linescope", pflag.ContinueOnError)
	flags.SetOutput(os.Stderr)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: linescope [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Plot delimited numeric rows from a serial port or file in the terminal.\n\n")
		flags.PrintDefaults()
	}

	configPath := flags.String("config", "", "config file (default ~/.config/linescope/config.toml)")
	device := flags.StringP("device", "d", "", "substring of the serial port name, product or serial number")
	baud := flags.IntP("baud", "b", 0, "serial baud rate")
	file := flags.StringP("file", "f", "", "read rows from a capture file or named pipe instead of a serial port")
	pace := flags.Duration("pace", 0, "delay between rows read from --file")
	labels := flags.StringP("labels", "l", "", "comma-separated field names, in column order")
	window := flags.IntP("window", "w", 0, "samples kept per field")
	delim := flags.String("delim", "", `field delimiter: one character, "tab" or "space"`)
	interval := flags.Duration("interval", 0, "render interval")
	mode := flags.StringP("mode", "m", "", "line or bar")
	logFile := flags.String("log-file", "", "write logs to this file")
	logLevel := flags.String("log-level", "", "debug, info, warn or error")
	metricsAddr := flags.String("metrics-addr", "", "serve prometheus metrics on this address, e.g. :9464")
	list := flags.Bool("list", false, "list serial ports and exit")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *list {
		if err := app.ListPorts(os.Stdout, nil); err != nil {
			fmt.Fprintf(os.Stderr, "linescope: %v\n", err)
			return 1
		}
		return 0
	}

	var delimiter rune
	if flags.Changed("delim") {
		d, err := config.ParseDelimiter(*delim)
		if err != nil {
			fmt.Fprintf(os.Stderr, "linescope: --delim: %v\n", err)
			return 2
		}
		delimiter = d
	}

	configure := func(cfg *config.Config) {
		if flags.Changed("device") {
			cfg.Device = *device
		}
		if flags.Changed("baud") {
			cfg.Baud = *baud
		}
		if flags.Changed("file") {
			cfg.File = *file
		}
		if flags.Changed("labels") {
			cfg.Labels = config.ParseLabels(*labels)
		}
		if flags.Changed("window") {
			cfg.Window = *window
		}
		if flags.Changed("delim") {
			cfg.Delimiter = delimiter
		}
		if flags.Changed("interval") {
			cfg.Interval = *interval
		}
		if flags.Changed("mode") {
			cfg.Mode = config.Mode(*mode)
		}
		if flags.Changed("log-file") {
			cfg.LogFile = *logFile
		}
		if flags.Changed("log-level") {
			cfg.LogLevel = *logLevel
		}
		if flags.Changed("metrics-addr") {
			cfg.MetricsAddr = *metricsAddr
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		Configure:  configure,
		Pace:       *pace,
	}
	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "linescope: %v\n", err)
		return 1
	}
	return 0
}
