// Command ethersim runs the ETHERC/EDMAC driver against a simulated MAC and PHY.
// A YAML scenario plugs and unplugs the cable, injects traffic from a peer
// station and exercises wake-on-LAN while an echo application answers ARP and
// UDP port 7 through the driver's zero-copy API. With -tap the simulated wire
// is bridged to a host TAP interface and the simulation runs until interrupted.
//
//	ethersim -scenario testdata/scenario.yaml -v
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/netip"
	"os"
	"os/signal"
	"strings"

	"github.com/soypat/etherc/internal"
)

func main() {
	err := run()
	if err != nil {
		log.Fatalln("failed:", err)
	}
}

func run() error {
	var (
		flagScenario = flag.String("scenario", "", "YAML scenario file (required)")
		flagVerbose  = flag.Bool("v", false, "log every transmitted frame")
		flagLevel    = flag.String("level", "info", "log level: trace, debug, info, warn or error")
		flagTap      = flag.String("tap", "", "bridge the simulated wire to the named TAP interface")
		flagTapIP    = flag.String("tapip", "192.168.10.1/24", "host address assigned to the TAP interface")
	)
	flag.Parse()
	if *flagScenario == "" {
		flag.Usage()
		return fmt.Errorf("missing -scenario")
	}
	lvl, err := parseLevel(*flagLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	sc, err := LoadScenario(*flagScenario)
	if err != nil {
		return err
	}
	r, err := newRunner(sc, logger)
	if err != nil {
		return err
	}
	r.verbose = *flagVerbose
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *flagTap != "" {
		prefix, err := netip.ParsePrefix(*flagTapIP)
		if err != nil {
			return err
		}
		tap, err := internal.NewTap(*flagTap, prefix)
		if err != nil {
			return err
		}
		defer tap.Close()
		err = r.attachTap(tap)
		if err != nil {
			return err
		}
		logger.Info("bridging", slog.String("tap", tap.Name()), slog.String("hostip", prefix.String()))
	}
	rep, err := r.run(ctx)
	if err != nil {
		return err
	}
	logger.Info("done",
		slog.Int("steps", rep.Steps),
		slog.Bool("linkup", rep.LinkUp),
		slog.Int("injected", rep.Injected),
		slog.Int("sent", rep.Sent),
		slog.Int("echoes", rep.Echoes),
		slog.Int("bridged", rep.Bridged),
		slog.Uint64("rxframes", rep.Stats.RxFrames),
		slog.Uint64("rxerrors", rep.Stats.RxErrors),
		slog.Uint64("txframes", rep.Stats.TxFrames),
		slog.Uint64("txringfull", rep.Stats.TxRingFull),
		slog.Uint64("linkups", rep.Stats.LinkUps),
		slog.Uint64("linkdowns", rep.Stats.LinkDowns),
		slog.Uint64("wakeups", rep.Stats.Wakeups),
	)
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	if strings.EqualFold(s, "trace") {
		return internal.LevelTrace, nil
	}
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(s))
	return lvl, err
}
