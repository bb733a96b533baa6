// Command ls-orrery is a terminal orrery driven by reference frames, timelines
// and rotation models.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/engine"
	"github.com/litescript/ls-orrery/internal/lighting"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/report"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/ui"
)

// CLI flags for headless mode
var (
	summaryMode   bool
	watchInterval time.Duration
	snapshotPath  string
	eclipseDays   float64
)

const (
	defaultRefresh = 100 * time.Millisecond
	minRefresh     = 20 * time.Millisecond
	maxRefresh     = 5 * time.Second
)

func main() {
	scenePath := flag.String("scene", "", "Scene file (TOML); empty loads the built-in solar system")
	startTime := flag.String("time", "", "Start time, RFC 3339 (default now)")
	rate := flag.Float64("rate", state.DefaultConfig().TimeScale, "Simulated days per real second")
	refresh := flag.Duration("refresh", defaultRefresh, "Evaluation interval (e.g., 100ms, 1s)")
	focus := flag.String("focus", "", "Body to focus on start")
	observer := flag.String("observer", state.DefaultConfig().Observer, "Body the illuminated fraction is seen from")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g., :9090)")
	flag.BoolVar(&summaryMode, "summary", false, "Print text summary instead of TUI")
	flag.DurationVar(&watchInterval, "watch", 0, "Repeat output at interval (e.g., 30s)")
	flag.StringVar(&snapshotPath, "snapshot-path", "", "Export JSON snapshot to file (use - for stdout)")
	flag.Float64Var(&eclipseDays, "eclipses", 0, "List eclipses involving -focus (default Earth) over this many days")
	flag.Parse()

	if *refresh < minRefresh {
		*refresh = minRefresh
	} else if *refresh > maxRefresh {
		*refresh = maxRefresh
	}

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	logger := logging.New(level)

	start := time.Now().UTC()
	if *startTime != "" {
		start, err = time.Parse(time.RFC3339, *startTime)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid -time: %v\n", err)
			os.Exit(2)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var rec metrics.Recorder = metrics.Nop{}
	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		rec = metrics.NewCollector(reg)
		go serveMetrics(ctx, *metricsAddr, reg, logger.Named("metrics"))
	}

	universe, err := loadScene(*scenePath, rec, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	stateCfg := state.DefaultConfig()
	stateCfg.TimeScale = *rate
	stateCfg.Observer = *observer
	stateCfg.Recorder = rec
	stateMgr := state.NewManager(universe, start, stateCfg, logger.Named("state"))

	// Headless mode: no TUI
	if summaryMode || snapshotPath != "" || eclipseDays > 0 {
		if err := runHeadless(ctx, stateMgr, *focus); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: stdout is not a terminal; use -summary or -snapshot-path")
		os.Exit(2)
	}

	stateMgr.Evaluate()
	model := ui.New(stateMgr, *focus)
	p := tea.NewProgram(model, tea.WithAltScreen())

	go runClockLoop(ctx, stateMgr, p, *refresh, logger)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func loadScene(path string, rec metrics.Recorder, logger *logging.Logger) (*engine.Universe, error) {
	loader := scene.NewLoader(logger.Named("scene")).WithRecorder(rec)
	if path == "" {
		return loader.LoadDefault()
	}
	return loader.LoadFile(path)
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Serving metrics on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Metrics server failed: %v", err)
	}
}

// runClockLoop advances simulated time by the real time elapsed between
// ticks and pushes each evaluation to the UI.
func runClockLoop(ctx context.Context, stateMgr *state.Manager, p *tea.Program, interval time.Duration, logger *logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			logger.Debug("Clock loop shutting down")
			p.Quit()
			return
		case now := <-ticker.C:
			snap := stateMgr.Step(now.Sub(last))
			last = now
			p.Send(ui.DataUpdateMsg{Snapshot: snap})
		}
	}
}

// runHeadless handles all headless modes without starting TUI.
func runHeadless(ctx context.Context, stateMgr *state.Manager, focus string) error {
	outputOnce := func() error {
		snap := stateMgr.Evaluate()

		if snapshotPath != "" {
			export := report.ExportSnapshot(snap, time.Now().UTC())
			if snapshotPath == "-" {
				if err := export.WriteJSON(os.Stdout); err != nil {
					return fmt.Errorf("write JSON to stdout: %w", err)
				}
			} else {
				f, err := os.Create(snapshotPath)
				if err != nil {
					return fmt.Errorf("create snapshot file: %w", err)
				}
				defer f.Close()
				if err := export.WriteJSON(f); err != nil {
					return fmt.Errorf("write JSON to file: %w", err)
				}
			}
		}

		if summaryMode {
			report.WriteSummaryTable(os.Stdout, snap)
			report.WriteDeepSkyTable(os.Stdout, stateMgr.Universe())
		}

		if eclipseDays > 0 {
			if err := writeEclipses(ctx, stateMgr, focus, snap.TDB); err != nil {
				return err
			}
		}
		return nil
	}

	if watchInterval == 0 {
		return outputOnce()
	}

	// Watch mode: advance the clock by the real interval between outputs.
	if err := outputOnce(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stateMgr.Advance(watchInterval)
			fmt.Println()
			if err := outputOnce(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}
}

func writeEclipses(ctx context.Context, stateMgr *state.Manager, focus string, tdb float64) error {
	if focus == "" {
		focus = "Earth"
	}
	body := stateMgr.Universe().FindBody(focus)
	if body == nil {
		return fmt.Errorf("no body named %q", focus)
	}

	eclipses, err := lighting.FindEclipses(ctx, body, tdb, tdb+eclipseDays, lighting.SolarEclipse|lighting.LunarEclipse)
	if err != nil {
		return fmt.Errorf("find eclipses: %w", err)
	}
	fmt.Printf("\nEclipses of %s, %s to %s\n", body.Name(),
		astro.TDBToUTC(tdb).Format("2006-01-02"), astro.TDBToUTC(tdb+eclipseDays).Format("2006-01-02"))
	report.WriteEclipseTable(os.Stdout, eclipses)
	return nil
}
