package refresh

import (
	"context"
	"sync"

	"artifactd/internal/providers"
	"artifactd/internal/refresh/interfaces"
	"artifactd/internal/services"
	"artifactd/internal/structures"

	"github.com/roylee0704/gron"
)

// Scheduler drives the two background jobs: dataset refresh ahead of TTL
// expiry (so user requests rarely pay the refresh cost) and periodic
// snapshot persistence.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	service     services.ArtifactServiceInterface
	fileManager *FileManager
	cron        *gron.Cron
	opsMu       sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	saveInterval := s.config.Snapshot.SaveInterval

	refreshInterval := s.config.Artifacts.RefreshInterval
	if refreshInterval <= 0 {
		// Refresh slightly ahead of TTL so readers stay on the fresh path.
		refreshInterval = s.config.Artifacts.TTL * 9 / 10
	}

	s.cron.AddFunc(gron.Every(refreshInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), s.config.Artifacts.AggregateTimeout)
		defer cancel()

		s.logger.Infof(providers.TypeApp, "Refreshing artifact dataset...")
		if err := s.service.Refresh(ctx); err != nil {
			s.logger.Errorf(providers.TypeApp, "Background refresh failed: %s", err)
			return
		}
		s.logger.Infof(providers.TypeApp, "Artifact dataset refreshed")
	})

	s.cron.AddFunc(gron.Every(saveInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		err := s.fileManager.SaveToFile(s.config.Snapshot.FilePath)
		if err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting snapshot: %s", err)
			return
		}
		s.logger.Infof(providers.TypeApp, "Persisted snapshot to file %s", s.config.Snapshot.FilePath)
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Restore loads the on-disk snapshot and kicks the first refresh without
// blocking startup on upstream availability.
func (s *Scheduler) Restore() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	if err := s.fileManager.LoadFromFile(s.config.Snapshot.FilePath); err != nil {
		return err
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.Artifacts.AggregateTimeout)
		defer cancel()
		if err := s.service.Refresh(ctx); err != nil {
			s.logger.Warnf(providers.TypeApp, "Initial refresh failed, serving snapshot or fallback: %s", err)
		}
	}()
	return nil
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Persisting snapshot to file...")
	err := s.fileManager.SaveToFile(s.config.Snapshot.FilePath)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting snapshot: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.ArtifactServiceInterface, fileManager *FileManager) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		service:     service,
		fileManager: fileManager,
	}
}
