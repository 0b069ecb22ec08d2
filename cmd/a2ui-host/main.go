// Command a2ui-host connects to an A2UI agent and prints every surface it
// builds as a text outline.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ag-ui/a2ui-go/internal/outline"
	"github.com/ag-ui/a2ui-go/pkg/client"
	"github.com/ag-ui/a2ui-go/pkg/core/events"
	"github.com/ag-ui/a2ui-go/pkg/processor"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	initial := flag.String("context", "", "initial context sent when connecting (overrides the config)")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *initial != "" {
		cfg.InitialContext = *initial
	}

	logger := cfg.Logger()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Fatal("host stopped")
	}
}

func run(ctx context.Context, cfg *Config, logger *logrus.Logger, out io.Writer) error {
	entry := logrus.NewEntry(logger)
	c, err := client.New(cfg.ClientConfig(entry))
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Connect(ctx, cfg.InitialContext); err != nil {
		entry.WithError(err).Warn("initial connect failed, retrying every tick")
	}

	return c.Run(ctx, func(res client.TickResult) {
		report(entry, res)
		if res.Applied == 0 {
			return
		}
		c.View(func(p *processor.Processor) {
			printSurfaces(out, p, touched(res.Events))
		})
	})
}

func report(logger *logrus.Entry, res client.TickResult) {
	for _, ev := range res.Status {
		switch e := ev.(type) {
		case *events.TaskStatusEvent:
			logger.WithFields(logrus.Fields{"task_id": e.TaskID, "state": e.State}).Info("task status")
		case *events.ErrorEvent:
			logger.WithField("code", e.Code).Warn(e.Message)
		default:
			logger.Info(string(ev.Type()))
		}
	}
	for _, err := range res.Errors {
		logger.WithError(err).Warn("message skipped")
	}
}

// touched lists the surfaces named by processor events, in first-seen order.
func touched(evs []events.Event) []string {
	seen := map[string]bool{}
	var ids []string
	for _, ev := range evs {
		se, ok := ev.(events.SurfaceEvent)
		if !ok || seen[se.GetSurfaceID()] {
			continue
		}
		seen[se.GetSurfaceID()] = true
		ids = append(ids, se.GetSurfaceID())
	}
	return ids
}

func printSurfaces(w io.Writer, p *processor.Processor, ids []string) {
	for _, id := range ids {
		if _, ok := p.Surface(id); !ok {
			fmt.Fprintf(w, "== %s (deleted)\n", id)
			continue
		}
		fmt.Fprintf(w, "== %s\n", id)
		_ = outline.Write(w, p, id)
	}
}
