package relay

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"transcriptrelay/internal/relay/archive"
	"transcriptrelay/internal/relay/logging"
	"transcriptrelay/internal/relay/scanner"
	"transcriptrelay/internal/relay/webhook"
)

// lockFileName is created inside the watch root to keep a second relay
// instance off the same directory. Two workers racing on read/rename is
// unsupported.
const lockFileName = ".relay.lock"

// ErrAlreadyRunning indicates another relay instance holds the watch root lock.
var ErrAlreadyRunning = errors.New("another relay instance is already watching this directory")

// SeenSet tracks paths terminally handled during this process run. It is
// deliberately not persisted: a restarted process re-offers any file still
// physically present in the watch root.
type SeenSet struct {
	paths map[string]struct{}
}

// NewSeenSet creates an empty SeenSet.
func NewSeenSet() *SeenSet {
	return &SeenSet{paths: make(map[string]struct{})}
}

// Add marks a path as terminally handled.
func (s *SeenSet) Add(path string) {
	s.paths[path] = struct{}{}
}

// Contains reports whether the path has been terminally handled.
func (s *SeenSet) Contains(path string) bool {
	_, ok := s.paths[path]
	return ok
}

// Len returns the number of handled paths.
func (s *SeenSet) Len() int {
	return len(s.paths)
}

// Service runs the poll-deliver-archive loop for one watched directory.
type Service struct {
	config   *Config
	logger   *logging.FileLogger
	scanner  *scanner.Scanner
	client   webhook.Deliverer
	archiver *archive.Archiver
	lock     *flock.Flock
	seen     *SeenSet
}

// NewService creates a relay service with all components initialized.
func NewService(cfg *Config) (*Service, error) {
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logConfig := logging.DefaultConfig()
	logConfig.LogDir = cfg.LogDir
	logConfig.Component = "service"
	logger, err := logging.New(logConfig)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	return &Service{
		config:   cfg,
		logger:   logger,
		scanner:  scanner.New(cfg.WatchDir, cfg.ArchiveDir(), cfg.ProbeDelay()),
		client:   webhook.NewClient(cfg.WebhookURL, webhook.WithTimeout(cfg.RequestTimeout())),
		archiver: archive.New(),
		lock:     flock.New(filepath.Join(cfg.WatchDir, lockFileName)),
		seen:     NewSeenSet(),
	}, nil
}

// Run starts the relay loop and blocks until the context is cancelled or a
// SIGINT/SIGTERM arrives. Each cycle fully completes before the next sleep;
// an interrupt during the sleep or between candidates stops the loop cleanly.
func (s *Service) Run(ctx context.Context) error {
	if err := s.ensureDirs(); err != nil {
		s.logger.Close()
		return err
	}

	held, err := s.lock.TryLock()
	if err != nil {
		s.logger.Close()
		return fmt.Errorf("acquire watch lock: %w", err)
	}
	if !held {
		s.logger.Close()
		return ErrAlreadyRunning
	}
	defer s.lock.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// A signal must cancel the context immediately so a stop requested
	// mid-cycle takes effect between candidates, not after the whole cycle.
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info("received signal, stopping", logging.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	s.logger.Info("starting relay",
		logging.String("watch_dir", s.config.WatchDir),
		logging.String("webhook_url", s.config.WebhookURL),
		logging.Bool("stage", s.config.Stage),
		logging.Duration("poll_interval", s.config.PollInterval()),
	)

	for {
		s.runCycle(ctx)

		select {
		case <-ctx.Done():
			return s.shutdown("stop requested")
		case <-time.After(s.config.PollInterval()):
		}
	}
}

// runCycle runs one detection pass and delivers every eligible candidate
// sequentially. Listing errors are transient: logged, then retried on the
// next cycle.
func (s *Service) runCycle(ctx context.Context) {
	candidates, err := s.scanner.Scan(ctx, s.seen)
	if err != nil {
		s.logger.WithComponent("scanner").Error("directory listing failed", err,
			logging.String("watch_dir", s.config.WatchDir),
		)
		return
	}

	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return
		}
		s.deliver(ctx, candidate)
	}
}

// deliver runs the full pipeline for one stable candidate: read, build
// payload, transmit, and archive on success. Only a terminal outcome
// (archived, unreadable, or delivered-but-unarchived) adds the path to the
// seen set; everything else is retried by omission on a later cycle.
func (s *Service) deliver(ctx context.Context, candidate scanner.Candidate) {
	log := s.logger.WithComponent("pipeline")
	deliveryID := uuid.NewString()

	log.Info("found transcript file",
		logging.String("path", candidate.Path),
		logging.Int64("size", candidate.Size),
		logging.String("delivery_id", deliveryID),
	)

	content, err := os.ReadFile(candidate.Path)
	if err != nil {
		// A file that cannot be read will not become readable through
		// retry; skip it for the rest of this process run.
		log.Error("failed to read file, skipping permanently", err,
			logging.String("path", candidate.Path),
			logging.String("delivery_id", deliveryID),
		)
		s.seen.Add(candidate.Path)
		return
	}

	payload := webhook.NewPayload(candidate.Path, string(content), s.config.Stage)

	if err := s.client.Deliver(ctx, payload); err != nil {
		var statusErr *webhook.StatusError
		if errors.As(err, &statusErr) {
			log.Warn("webhook rejected transcript, will retry",
				logging.String("meeting_id", payload.MeetingID),
				logging.Int("status", statusErr.Code),
				logging.String("response", statusErr.Body),
				logging.String("delivery_id", deliveryID),
			)
		} else {
			log.Error("failed to post transcript, will retry", err,
				logging.String("meeting_id", payload.MeetingID),
				logging.String("delivery_id", deliveryID),
			)
		}
		return
	}

	log.Info("transcript delivered",
		logging.String("meeting_id", payload.MeetingID),
		logging.String("webhook_url", s.config.WebhookURL),
		logging.String("delivery_id", deliveryID),
	)

	dest, err := s.archiver.Archive(ctx, candidate.Path, s.config.ArchiveDir())
	if err != nil {
		// The endpoint already acknowledged this transcript. Re-sending it
		// is worse than leaving an unarchived file behind, so the path is
		// marked handled anyway and the inconsistency is logged.
		log.Error("delivered but failed to archive", err,
			logging.String("path", candidate.Path),
			logging.String("delivery_id", deliveryID),
		)
		s.seen.Add(candidate.Path)
		return
	}

	s.seen.Add(candidate.Path)
	log.Info("archived transcript",
		logging.String("path", candidate.Path),
		logging.String("archived_to", dest),
		logging.String("delivery_id", deliveryID),
	)
}

// ensureDirs creates the watch root and archive subdirectory if missing.
// Running against directories that already exist is a no-op.
func (s *Service) ensureDirs() error {
	if err := os.MkdirAll(s.config.WatchDir, 0755); err != nil {
		return fmt.Errorf("create watch directory: %w", err)
	}
	if err := os.MkdirAll(s.config.ArchiveDir(), 0755); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}
	return nil
}

func (s *Service) shutdown(reason string) error {
	s.logger.Info("relay stopped", logging.String("reason", reason))
	return s.logger.Close()
}
