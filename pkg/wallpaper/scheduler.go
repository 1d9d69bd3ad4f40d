package wallpaper

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/dixieflatline76/BingWall/config"
	"github.com/dixieflatline76/BingWall/pkg/provider"
	"github.com/dixieflatline76/BingWall/util"
	"github.com/dixieflatline76/BingWall/util/log"
	"github.com/google/uuid"
)

// OutcomeKind classifies the result of one update cycle.
type OutcomeKind int

// Cycle outcomes
const (
	NothingToDo OutcomeKind = iota
	Downloaded
	AlreadyPresent
)

func (k OutcomeKind) String() string {
	switch k {
	case Downloaded:
		return "downloaded"
	case AlreadyPresent:
		return "already_present"
	default:
		return "nothing_to_do"
	}
}

// CycleOutcome is the result of one update cycle and the delay before the next one.
type CycleOutcome struct {
	ID    string // correlates the log lines of one cycle
	Kind  OutcomeKind
	Path  string // local image, empty for NothingToDo
	Delay time.Duration
}

// ConfigLoader returns the current configuration. It is called at the start of every cycle.
type ConfigLoader func() (*config.Config, error)

// Scheduler runs update cycles one at a time and decides when the next one happens.
type Scheduler struct {
	loadConfig  ConfigLoader
	newProvider ProviderFactory
	fetcher     provider.Fetcher
	setter      Setter
	metrics     *Metrics

	mu  sync.Mutex
	cfg *config.Config // last configuration that loaded successfully

	trigger chan struct{}
	running util.SafeFlag
	cycles  util.SafeCounter
}

// NewScheduler creates a scheduler. fetcher is used both by providers and for image downloads.
func NewScheduler(loadConfig ConfigLoader, newProvider ProviderFactory, fetcher provider.Fetcher, setter Setter) *Scheduler {
	return &Scheduler{
		loadConfig:  loadConfig,
		newProvider: newProvider,
		fetcher:     fetcher,
		setter:      setter,
		trigger:     make(chan struct{}, 1),
	}
}

// WithMetrics records cycle results into m.
func (s *Scheduler) WithMetrics(m *Metrics) *Scheduler {
	s.metrics = m
	return s
}

// Cycles returns the number of cycles started so far.
func (s *Scheduler) Cycles() int {
	return s.cycles.Value()
}

// Trigger requests an immediate cycle. Requests made while a cycle is running
// collapse into a single follow-up cycle.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run executes cycles until ctx is cancelled, waiting the delay of each outcome
// or until Trigger is called.
func (s *Scheduler) Run(ctx context.Context) error {
	log.Print("Scheduler started")
	defer log.Print("Scheduler stopped")

	for {
		out := s.RunCycle(ctx)
		if ctx.Err() != nil {
			return nil
		}

		timer := time.NewTimer(out.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		case <-s.trigger:
			timer.Stop()
			log.Printf("Update triggered before the scheduled time")
		}
	}
}

// RunCycle executes one update cycle. It never panics and never runs concurrently
// with another cycle of the same scheduler.
func (s *Scheduler) RunCycle(ctx context.Context) (out CycleOutcome) {
	id := uuid.NewString()
	if !s.running.CompareAndSwap(false, true) {
		log.Warnf("[%s] Update cycle already in progress, skipping", id)
		return CycleOutcome{ID: id, Kind: NothingToDo, Delay: RetryDelay}
	}
	defer s.running.Set(false)

	n := s.cycles.Increment()
	start := time.Now()
	log.Printf("[%s] Update cycle %d started", id, n)

	defer func() {
		if r := recover(); r != nil {
			log.Criticalf("[%s] Update cycle panicked: %v\n%s", id, r, debug.Stack())
			out = CycleOutcome{ID: id, Kind: NothingToDo, Delay: RetryDelay}
		}
		s.metrics.observeOutcome(out)
		log.Printf("[%s] Update cycle finished in %s: %s %s, next run in %s",
			id, time.Since(start).Round(time.Millisecond), out.Kind, out.Path, out.Delay)
	}()

	out = s.runCycle(ctx)
	out.ID = id
	return out
}

func (s *Scheduler) runCycle(ctx context.Context) CycleOutcome {
	cfg, err := s.currentConfig()
	if err != nil {
		if cfg != nil && provider.IsValidation(err) {
			log.Errorf("Invalid configuration: %v", err)
			return CycleOutcome{Kind: NothingToDo, Delay: cfg.Interval()}
		}
		log.Errorf("%v", err)
		return CycleOutcome{Kind: NothingToDo, Delay: RetryDelay}
	}
	interval := cfg.Interval()

	dir, collect := cfg.OutputDir()
	fm := NewFileManager(dir, collect)
	if err := fm.Prepare(); err != nil {
		log.Criticalf("%v", err)
	}

	p, err := s.newProvider(cfg, s.fetcher)
	if err != nil {
		if provider.IsValidation(err) {
			log.Errorf("Invalid configuration: %v", err)
			return CycleOutcome{Kind: NothingToDo, Delay: interval}
		}
		log.Errorf("Failed to create image provider: %v", err)
		return CycleOutcome{Kind: NothingToDo, Delay: RetryDelay}
	}

	img, err := p.FetchImage(ctx)
	if err != nil {
		if provider.IsValidation(err) {
			log.Errorf("Invalid configuration: %v", err)
			return CycleOutcome{Kind: NothingToDo, Delay: interval}
		}
		s.metrics.metadataFailure()
		log.Errorf("%s: can not load image metadata: %v", p.Name(), err)
		return CycleOutcome{Kind: NothingToDo, Delay: RetryDelay}
	}

	target := fm.TargetPath(img.ID, img.Path)
	log.Debugf("Output file: %s", target)

	kind := AlreadyPresent
	if fm.Exists(target) {
		log.Print("File has been downloaded before, just set wallpaper")
	} else {
		if removed := fm.CleanupStale(target); removed > 0 {
			log.Printf("Removed %d previous image(s) from %s", removed, fm.Dir())
		}
		if err := s.download(ctx, fm, img, target); err != nil {
			log.Errorf("%v", err)
			log.Print("Bad luck, no wallpaper today")
			return CycleOutcome{Kind: NothingToDo, Delay: interval}
		}
		kind = Downloaded
	}

	if img.Title != "" || img.Attribution != "" {
		log.Printf("Today's image: %s %s", img.Title, img.Attribution)
	}
	if err := s.setter.SetWallpaper(target); err != nil {
		log.Errorf("Failed to set wallpaper %s: %v", target, err)
	} else {
		log.Printf("Wallpaper set to %s", target)
	}

	return CycleOutcome{Kind: kind, Path: target, Delay: interval}
}

// currentConfig loads the configuration, falling back to the last good one.
// Without a previous configuration the error is returned along with whatever
// the loader decoded.
func (s *Scheduler) currentConfig() (*config.Config, error) {
	cfg, err := s.loadConfig()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if s.cfg == nil {
			return cfg, fmt.Errorf("failed to load configuration: %w", err)
		}
		log.Errorf("Failed to load configuration, keeping previous settings: %v", err)
		return s.cfg, nil
	}
	s.cfg = cfg
	return cfg, nil
}

func (s *Scheduler) download(ctx context.Context, fm *FileManager, img provider.Image, target string) error {
	log.Printf("Downloading %s", img.Path)
	data := s.fetcher.Fetch(ctx, img.Path, nil, false)
	if len(data) == 0 {
		return fmt.Errorf("no data downloaded from %s", img.Path)
	}
	if err := fm.Save(target, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", target, err)
	}
	log.Printf("Saved %d bytes to %s", len(data), target)
	return nil
}
