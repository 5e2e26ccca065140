// Command uwb-localizer reads poses from a Pozyx UWB tag and publishes them
// on a local pose topic, optionally served over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/banshee-data/uwbpose/internal/config"
	"github.com/banshee-data/uwbpose/internal/localizer"
	"github.com/banshee-data/uwbpose/internal/monitoring"
	"github.com/banshee-data/uwbpose/internal/pose"
	"github.com/banshee-data/uwbpose/internal/posebus"
	"github.com/banshee-data/uwbpose/internal/pozyx"
	"github.com/banshee-data/uwbpose/internal/serialport"
	"github.com/banshee-data/uwbpose/internal/version"
)

const exampleUsage = `  uwb-localizer
  uwb-localizer site/PozyxConfig.yaml --port /dev/ttyACM0 --persist
  uwb-localizer --simulate --cycles 20 --listen 127.0.0.1:9100`

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	s := config.Default()
	var cfgPath string

	cmd := &cobra.Command{
		Use:           "uwb-localizer [anchors.yaml]",
		Short:         "Publish poses from a Pozyx UWB tag",
		Example:       exampleUsage,
		Version:       version.String(),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveSettings(cmd, &s, cfgPath); err != nil {
				return report(err)
			}
			monitoring.Logf("uwb-localizer %s", version.String())
			anchorsPath := config.DefaultAnchorsPath
			if len(args) == 1 {
				anchorsPath = args[0]
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return report(run(ctx, s, anchorsPath, newSDK(s)))
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgPath, "config", "", "settings file (default "+config.DefaultPath+" if present)")
	f.StringVar(&s.Port, "port", s.Port, "serial port of the tag; empty auto-detects")
	f.IntVar(&s.BaudRate, "baud", s.BaudRate, "serial baud rate")
	f.StringVar(&s.Algorithm, "algorithm", s.Algorithm, "positioning algorithm: UWB_ONLY or TRACKING")
	f.StringVar(&s.Dimension, "dimension", s.Dimension, "positioning dimension: 2D, 2.5D or 3D")
	f.IntVar(&s.HeightMM, "height", s.HeightMM, "tag height in millimetres, used for 2.5D")
	f.BoolVar(&s.HeightAsZ, "height-as-z", s.HeightAsZ, "report the height as z when not solving in 3D")
	f.BoolVar(&s.Persist, "persist", s.Persist, "save the anchor list to the tag's flash")
	f.DurationVar(&s.Interval, "interval", s.Interval, "time between polls; 0 polls back to back")
	f.IntVar(&s.Cycles, "cycles", s.Cycles, "stop after this many polls; 0 runs until interrupted")
	f.StringVar(&s.Listen, "listen", s.Listen, "address for /metrics and /debug routes; empty disables")
	f.StringVar(&s.LogLevel, "log-level", s.LogLevel, "log level: debug, info, warn or error")
	f.BoolVar(&s.Simulate, "simulate", s.Simulate, "use a simulated tag instead of a serial device")
	return cmd
}

// resolveSettings layers the settings file and UWB_* environment under the
// flags that were set explicitly.
func resolveSettings(cmd *cobra.Command, s *config.Settings, cfgPath string) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	path := cfgPath
	if path == "" && config.FileExists(config.DefaultPath) {
		path = config.DefaultPath
	}
	if path != "" {
		fc, err := config.LoadFile(path)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		if err := config.ApplyFile(s, fc, changed); err != nil {
			return err
		}
	}
	if err := config.ApplyEnv(s, changed); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	return monitoring.SetLevel(s.LogLevel)
}

func report(err error) error {
	if err != nil {
		log := monitoring.Logger()
		log.Error().Err(err).Msg("uwb-localizer")
	}
	return err
}

func newSDK(s config.Settings) pozyx.SDK {
	if s.Simulate {
		return pozyx.NewSimulator("simulated")
	}
	return &pozyx.SerialSDK{Port: serialport.PortOptions{BaudRate: s.BaudRate}}
}

// run connects, provisions and polls until ctx ends or the configured
// cycles are done.
func run(ctx context.Context, s config.Settings, anchorsPath string, sdk pozyx.SDK) error {
	log := monitoring.Logger()

	metrics, err := monitoring.NewCollector(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	opts := localizer.Options{
		Algorithm: s.GetAlgorithm(),
		Dimension: s.GetDimension(),
		HeightMM:  s.HeightMM,
		HeightAsZ: s.HeightAsZ,
		Metrics:   metrics,
	}
	session, provisioned, err := localizer.Open(ctx, anchorsPath, s.Port, sdk, opts, s.Persist)
	if err != nil {
		return err
	}
	defer session.Close()
	if !provisioned {
		log.Warn().Str("anchors", anchorsPath).Msg("anchor provisioning incomplete, positions may be unreliable")
	}

	log.Info().
		Str("port", session.Port()).
		Stringer("algorithm", opts.Algorithm).
		Stringer("dimension", opts.Dimension).
		Int("height_mm", opts.HeightMM).
		Msg("tag ready")

	bus := posebus.New()
	defer bus.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	if s.Listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		bus.AttachAdminRoutes(mux)
		server := &http.Server{Addr: s.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		wg.Add(1)
		go func() {
			defer wg.Done()
			serve(ctx, server, log)
		}()
	}

	runner := &localizer.Runner{
		Session:  session,
		Sink:     logSink(bus, log),
		Interval: s.Interval,
		Cycles:   s.Cycles,
		Metrics:  metrics,
	}
	err = runner.Run(ctx)
	cancel()
	wg.Wait()

	if errors.Is(err, context.Canceled) {
		log.Info().Msg("shutdown complete")
		return nil
	}
	return err
}

func logSink(bus *posebus.Bus, log zerolog.Logger) localizer.Sink {
	return localizer.SinkFunc(func(p pose.Stamped) {
		bus.Publish(p)
		log.Debug().
			Uint64("seq", p.Header.Seq).
			Str("status", p.Status).
			Float64("x", p.Pose.Position.X).
			Float64("y", p.Pose.Position.Y).
			Float64("z", p.Pose.Position.Z).
			Float64("yaw", p.Pose.Yaw()).
			Float64("q_norm", p.Pose.OrientationNorm()).
			Msg("pose")
	})
}

func serve(ctx context.Context, server *http.Server, log zerolog.Logger) {
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info().Str("addr", server.Addr).Msg("serving metrics and debug routes")

	select {
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
		return
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP server shutdown")
		if err := server.Close(); err != nil {
			log.Warn().Err(err).Msg("HTTP server force close")
		}
	}
}
