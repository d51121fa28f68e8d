package services

import (
	"log"
	"time"

	"github.com/onmuhasebe/pre-accounting-be/internal/modules/documents/repositories"
	"github.com/onmuhasebe/pre-accounting-be/internal/shared/utils"
	"github.com/robfig/cron/v3"
)

// StaleProcessingTimeout is how long a document may sit in PROCESSING before
// the sweeper assumes the run died and flips it to ERROR.
const StaleProcessingTimeout = 15 * time.Minute

const staleReason = "processing timed out"

// Maintenance periodically sweeps documents stuck in PROCESSING. A crashed
// worker leaves its document claimed forever otherwise, blocking reprocessing.
type Maintenance struct {
	repo repositories.DocumentRepo
	cron *cron.Cron
}

// NewMaintenance creates the maintenance sweeper
func NewMaintenance(repo repositories.DocumentRepo) *Maintenance {
	return &Maintenance{
		repo: repo,
		cron: cron.New(),
	}
}

// Start schedules the sweep every 5 minutes and starts the cron runner
func (m *Maintenance) Start() error {
	if _, err := m.cron.AddFunc("*/5 * * * *", m.sweep); err != nil {
		return err
	}
	log.Println("⏰ Starting document maintenance sweeper...")
	m.cron.Start()
	return nil
}

// Stop stops the cron runner
func (m *Maintenance) Stop() {
	log.Println("⏰ Stopping document maintenance sweeper...")
	m.cron.Stop()
}

func (m *Maintenance) sweep() {
	cutoff := time.Now().Add(-StaleProcessingTimeout)
	count, err := m.repo.ResetStale(cutoff, staleReason)
	if err != nil {
		utils.LogError("stale document sweep failed", err, nil)
		return
	}
	if count > 0 {
		log.Printf("🧹 Reset %d stale PROCESSING document(s) to ERROR", count)
	}
}
