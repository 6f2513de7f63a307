package service

import (
	"log"

	"github.com/robfig/cron/v3"

	"studio/internal/storage"
)

// DefaultPruneSchedule is the cron spec used by HistoryPruner.
const DefaultPruneSchedule = "@every 30m"

// HistoryPruner periodically trims persisted undo logs down to the
// configured history limit.
type HistoryPruner struct {
	histories *storage.HistoryStore
	settings  *SettingsService
	sched     *cron.Cron
}

func NewHistoryPruner(db *storage.DB, settings *SettingsService) *HistoryPruner {
	return &HistoryPruner{
		histories: storage.NewHistoryStore(db),
		settings:  settings,
	}
}

// Start schedules pruning. An empty spec uses DefaultPruneSchedule.
func (p *HistoryPruner) Start(spec string) error {
	if spec == "" {
		spec = DefaultPruneSchedule
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if _, err := p.PruneNow(); err != nil {
			log.Printf("[HISTORY] prune failed: %v", err)
		}
	}); err != nil {
		return err
	}
	c.Start()
	p.sched = c
	log.Printf("[HISTORY] pruning scheduled %q", spec)
	return nil
}

// PruneNow trims every document's undo log and returns the rows removed.
func (p *HistoryPruner) PruneNow() (int64, error) {
	keep := p.settings.LoadEditorSettings().HistoryLimit
	n, err := p.histories.Prune(keep)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("[HISTORY] pruned %d entries (keep %d)", n, keep)
	}
	return n, nil
}

// Stop cancels the schedule.
func (p *HistoryPruner) Stop() {
	if p.sched != nil {
		p.sched.Stop()
		p.sched = nil
	}
}
