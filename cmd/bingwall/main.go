package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dixieflatline76/BingWall/config"
	"github.com/dixieflatline76/BingWall/pkg/wallpaper"
	"github.com/dixieflatline76/BingWall/pkg/wallpaper/providers/bing"
	"github.com/dixieflatline76/BingWall/util"
	"github.com/dixieflatline76/BingWall/util/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const (
	configFlag   = "config"
	logLevelFlag = "log-level"
	forceFlag    = "force"
)

// newSetter is replaced in tests.
var newSetter = wallpaper.NewSetter

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatalf("%v", err)
	}
}

func newApp() *cli.App {
	defaultConfig, err := config.GetFilename()
	if err != nil {
		defaultConfig = config.ConfigFileName
	}

	app := cli.NewApp()
	app.Name = "bingwall"
	app.Usage = "Sets the Bing image of the day as your desktop wallpaper"
	app.Version = config.AppVersion
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    configFlag,
			Aliases: []string{"c"},
			Value:   defaultConfig,
			Usage:   "Path to the TOML configuration file",
		},
		&cli.StringFlag{
			Name:  logLevelFlag,
			Usage: "Minimum log level: dump, debug, info, warn, error or critical (overrides debug.level)",
		},
	}
	app.Commands = []*cli.Command{
		runCommand(),
		onceCommand(),
		checkUpdateCommand(),
		initConfigCommand(),
	}
	app.Action = runAction
	return app
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Update the wallpaper now and then every configured interval",
		Action: runAction,
	}
}

func onceCommand() *cli.Command {
	return &cli.Command{
		Name:        "once",
		Usage:       "Run a single update cycle and exit",
		Description: "Exits with status 1 when no wallpaper could be applied",
		Action:      onceAction,
	}
}

func checkUpdateCommand() *cli.Command {
	return &cli.Command{
		Name:   "check-update",
		Usage:  "Check GitHub for a newer release",
		Action: checkUpdateAction,
	}
}

func initConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "init-config",
		Usage: "Write a default configuration file",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  forceFlag,
				Usage: "Overwrite an existing file",
			},
		},
		Action: initConfigAction,
	}
}

// setup loads the configuration once to apply logging options.
func setup(c *cli.Context) (*config.Config, string, error) {
	path := c.String(configFlag)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}

	level := cfg.Debug.Level
	if c.IsSet(logLevelFlag) {
		level = c.String(logLevelFlag)
	}
	l, err := log.ParseLevel(level)
	if err != nil {
		return nil, path, err
	}
	log.SetLevel(l)

	if cfg.Debug.LogFile != "" {
		log.SetOutputFile(cfg.Debug.LogFile)
	}
	return cfg, path, nil
}

func newScheduler(path string, metrics *wallpaper.Metrics) (*wallpaper.Scheduler, error) {
	factory, err := wallpaper.LookupProvider(bing.ProviderName)
	if err != nil {
		return nil, err
	}
	fetcher := wallpaper.NewHTTPFetcher(nil).WithMetrics(metrics)
	loader := func() (*config.Config, error) { return config.Load(path) }
	return wallpaper.NewScheduler(loader, factory, fetcher, newSetter()).WithMetrics(metrics), nil
}

func runAction(c *cli.Context) error {
	cfg, path, err := setup(c)
	if err != nil {
		return err
	}
	if !cfg.Settings.Autostart {
		log.Print("Autostart is disabled in the configuration, exiting")
		return nil
	}

	ok, err := acquireLock()
	if err != nil {
		return err
	}
	if !ok {
		return cli.Exit(fmt.Sprintf("Another instance of %s is already running.", config.AppName), 1)
	}
	defer releaseLock()

	log.Printf("%s %s starting with config %s", config.AppName, config.AppVersion, path)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := wallpaper.NewMetrics(registry)
	sched, err := newScheduler(path, metrics)
	if err != nil {
		return err
	}
	watcher := wallpaper.NewConfigWatcher(path, wallpaper.TriggerDebounce, sched.Trigger)

	g, ctx := errgroup.WithContext(c.Context)
	g.Go(func() error { return sched.Run(ctx) })
	g.Go(func() error {
		if err := watcher.Run(ctx); err != nil {
			// The daemon still works without live reload
			log.Warnf("Config watcher disabled: %v", err)
		}
		return nil
	})
	if cfg.Debug.MetricsAddr != "" {
		g.Go(func() error { return serveMetrics(ctx, cfg.Debug.MetricsAddr, registry) })
	}

	return g.Wait()
}

func serveMetrics(ctx context.Context, addr string, registry *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Serving metrics on %s/metrics", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warnf("Metrics server shutdown: %v", err)
		}
		return nil
	}
}

func onceAction(c *cli.Context) error {
	_, path, err := setup(c)
	if err != nil {
		return err
	}

	sched, err := newScheduler(path, nil)
	if err != nil {
		return err
	}
	out := sched.RunCycle(c.Context)
	if out.Kind == wallpaper.NothingToDo {
		return cli.Exit("No wallpaper was applied", 1)
	}
	fmt.Fprintln(c.App.Writer, out.Path)
	return nil
}

func checkUpdateAction(c *cli.Context) error {
	if _, _, err := setup(c); err != nil {
		return err
	}

	res, err := util.CheckForUpdates(c.Context, wallpaper.NewHTTPClient())
	if err != nil {
		return err
	}
	if !res.UpdateAvailable {
		fmt.Fprintf(c.App.Writer, "%s %s is up to date\n", config.AppName, res.CurrentVersion)
		return nil
	}
	fmt.Fprintf(c.App.Writer, "%s %s is available (running %s): %s\n",
		config.AppName, res.LatestVersion, res.CurrentVersion, res.ReleaseURL)
	return nil
}

func initConfigAction(c *cli.Context) error {
	path := c.String(configFlag)
	if err := config.WriteDefault(path, c.Bool(forceFlag)); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Wrote default configuration to %s\n", path)
	return nil
}
