// Copyright (c) 2026 guidoreina. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.

// Command pktsaver captures packets from a network interface into a
// pcap capture file, with an optional protocol/port filter.
package main

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/guidoreina/pktsaver/capture"
	"github.com/guidoreina/pktsaver/internal/size"
)

func usage(fs *flag.FlagSet) func() {
	return func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: %s [options] <interface> <pathname>\n", os.Args[0])
		fmt.Fprintf(out, "\tOptions:\n")
		fmt.Fprintf(out, "\t\t-s <ring-size>          Ring size in MiB (M) or GiB (G) (%d MB .. %d GB)\n",
			capture.MinRingSize/(1024*1024), capture.MaxRingSize/(1024*1024*1024))
		fmt.Fprintf(out, "\t\t-m <max-pcap-filesize>  If bigger than 0, the program will preallocate max-pcap-filesize\n")
		fmt.Fprintf(out, "\t\t\t\t\tbytes in memory and will only write the capture file upon reception\n")
		fmt.Fprintf(out, "\t\t\t\t\tof a signal\n")
		fmt.Fprintf(out, "\t\t-f \"<filter-list>\"      List of filters\n")
		fmt.Fprintf(out, "\n")
		fmt.Fprintf(out, "Filter list:\n")
		fmt.Fprintf(out, "\tThe filter list is a list of filters separated by spaces.\n")
		fmt.Fprintf(out, "\tSupported filters are:\n")
		fmt.Fprintf(out, "\t\ticmp                            Filter ICMP protocol\n")
		fmt.Fprintf(out, "\t\tport[-port]                     Filter TCP and UDP port or range of ports\n")
		fmt.Fprintf(out, "\t\t(sport|dport):port:port[-port]  Filter TCP and UDP ports by source or\n")
		fmt.Fprintf(out, "\t\t\t\t\t\tdestination port\n\n")
		fmt.Fprintf(out, "\t\ttcp                             Filter TCP protocol\n")
		fmt.Fprintf(out, "\t\ttcp:port[-port]                 Filter TCP port or range of ports\n")
		fmt.Fprintf(out, "\t\ttcp:(sport|dport):port:port[-port] Filter TCP port or range of ports by source or\n")
		fmt.Fprintf(out, "\t\t\t\t\t\tdestination port\n\n")
		fmt.Fprintf(out, "\t\tudp                             Filter UDP protocol\n")
		fmt.Fprintf(out, "\t\tudp:port[-port]                 Filter UDP port or range of ports\n")
		fmt.Fprintf(out, "\t\tudp:(sport|dport):port:port[-port] Filter UDP port or range of ports by source or\n")
		fmt.Fprintf(out, "\t\t\t\t\t\tdestination port\n")
		fmt.Fprintf(out, "\n")
		fmt.Fprintf(out, "\tIf no filter is specified, everything is captured.\n")
		fmt.Fprintf(out, "\n")
	}
}

var errUsage = errors.New("usage")

// parseArgs wraps the standard flag package: -s/-m/-f may appear in
// any order ahead of the two trailing positionals (interface and
// output path), matching the reference sniffer's grammar.
func parseArgs(args []string) (cfg capture.Config, err error) {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.Usage = usage(fs)
	fs.SetOutput(os.Stderr)

	ringSize := fs.String("s", "", "ring size in MiB (M) or GiB (G)")
	maxPcapSize := fs.String("m", "", "preallocated capture file size in MiB (M) or GiB (G)")
	filterExpr := fs.String("f", "", "filter list")

	if err := fs.Parse(args[1:]); err != nil {
		return cfg, errUsage
	}

	rest := fs.Args()
	if len(rest) != 2 {
		fs.Usage()
		return cfg, errUsage
	}

	cfg.RingSizeBytes = int(capture.DefaultRingSize)
	if *ringSize != "" {
		n, perr := size.Parse(*ringSize, capture.MinRingSize, capture.MaxRingSize)
		if perr != nil {
			return cfg, fmt.Errorf("invalid ring size %s: %w", *ringSize, perr)
		}
		cfg.RingSizeBytes = int(n)
	}

	if *maxPcapSize != "" {
		n, perr := size.Parse(*maxPcapSize, 0, math.MaxUint64)
		if perr != nil {
			return cfg, fmt.Errorf("invalid max-pcap-filesize %s: %w", *maxPcapSize, perr)
		}
		cfg.MaxPcapFileBytes = int(n)
	}

	cfg.FilterExpr = *filterExpr
	cfg.Interface = rest[0]
	cfg.OutputPath = rest[1]
	return cfg, nil
}

func main() {
	os.Exit(run(os.Args))
}

func run(argv []string) int {
	cfg, err := parseArgs(argv)
	if err != nil {
		return 1
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	cfg.Logger = log

	engine, err := capture.Setup(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCode(err)
	}

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-osSignals
		log.Info("signal received, stopping")
		engine.Stop()
	}()

	if err := engine.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCode(err)
	}

	return 0
}

func exitCode(err error) int {
	var cfgErr *capture.ConfigError
	if errors.As(err, &cfgErr) {
		return 1
	}

	var setupErr *capture.SetupError
	if errors.As(err, &setupErr) {
		return 2
	}

	var ioErr *capture.IoError
	if errors.As(err, &ioErr) {
		return 3
	}

	return 1
}
