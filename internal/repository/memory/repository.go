package memory

import (
	"sync"

	"github.com/omarshaarawi/playbuilder/internal/models"
)

// Repository keeps the latest scheduled health probe.
type Repository struct {
	health *models.HealthReport
	mu     sync.RWMutex
}

func NewRepository() *Repository {
	return &Repository{}
}

// SaveHealth stores report and returns the one it replaced, if any.
func (r *Repository) SaveHealth(report models.HealthReport) *models.HealthReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.health
	r.health = &report
	return prev
}

func (r *Repository) GetHealth() *models.HealthReport {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.health == nil {
		return nil
	}
	report := *r.health
	return &report
}
