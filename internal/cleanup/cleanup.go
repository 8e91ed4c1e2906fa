package cleanup

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"real-estate-site/internal/models"
)

// ReferenceStore exposes what the sweep needs from the database: the set
// of filenames still referenced by some property, and the delete log.
type ReferenceStore interface {
	ReferencedImageFiles() ([]string, error)
	LogFileDeletion(fileName string) error
	RecentDeleteLogs(limit int) ([]models.DeleteLog, error)
}

// Service deletes orphaned files from the uploads directory: files no
// property references anymore, left behind by crashes or failed cleanup.
type Service struct {
	refs ReferenceStore
	dir  string
}

// NewService creates a sweep service over the given uploads directory
func NewService(refs ReferenceStore, uploadDir string) *Service {
	return &Service{refs: refs, dir: uploadDir}
}

// SweepConfig holds configuration for one sweep run
type SweepConfig struct {
	GracePeriod      time.Duration // Skip files younger than this (an upload may not be persisted yet)
	MaxDeletionCount int           // Safety limit per run
	DryRun           bool          // Log instead of deleting
}

// DefaultSweepConfig returns default configuration
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		GracePeriod:      time.Hour,
		MaxDeletionCount: 500,
		DryRun:           false,
	}
}

// SweepResult holds the result of a sweep run
type SweepResult struct {
	TargetCount  int       `json:"target_count"`
	DeletedCount int       `json:"deleted_count"`
	ErrorCount   int       `json:"error_count"`
	DryRun       bool      `json:"dry_run"`
	ExecutedAt   time.Time `json:"executed_at"`
	DeletedFiles []string  `json:"deleted_files"`
	Errors       []string  `json:"errors,omitempty"`
}

// FindOrphanedFiles returns files in the uploads directory that no
// property references and that are older than the grace period.
func (s *Service) FindOrphanedFiles(gracePeriod time.Duration) ([]string, error) {
	referenced, err := s.refs.ReferencedImageFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load referenced files: %w", err)
	}
	refSet := make(map[string]bool, len(referenced))
	for _, name := range referenced {
		refSet[name] = true
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read uploads directory: %w", err)
	}

	cutoff := time.Now().Add(-gracePeriod)
	var orphans []string
	for _, entry := range entries {
		if entry.IsDir() || refSet[entry.Name()] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		orphans = append(orphans, entry.Name())
	}

	return orphans, nil
}

// Sweep deletes orphaned files, bounded by the safety limit.
func (s *Service) Sweep(config SweepConfig) (*SweepResult, error) {
	result := &SweepResult{
		DryRun:     config.DryRun,
		ExecutedAt: time.Now(),
	}

	orphans, err := s.FindOrphanedFiles(config.GracePeriod)
	if err != nil {
		return nil, err
	}
	result.TargetCount = len(orphans)

	if result.TargetCount == 0 {
		log.Println("[cleanup] no orphaned files found")
		return result, nil
	}

	// Safety check: abort if too many files would be deleted
	if result.TargetCount > config.MaxDeletionCount {
		return nil, fmt.Errorf("safety check failed: %d orphaned files exceed max deletion limit of %d",
			result.TargetCount, config.MaxDeletionCount)
	}

	log.Printf("[cleanup] starting sweep: %d orphaned files (grace: %s, dry-run: %v)",
		result.TargetCount, config.GracePeriod, config.DryRun)

	for _, name := range orphans {
		if config.DryRun {
			log.Printf("[cleanup] dry-run: would delete %s", name)
			result.DeletedFiles = append(result.DeletedFiles, name)
			result.DeletedCount++
			continue
		}

		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			errMsg := fmt.Sprintf("failed to delete %s: %v", name, err)
			log.Printf("[cleanup] ERROR: %s", errMsg)
			result.Errors = append(result.Errors, errMsg)
			result.ErrorCount++
			continue
		}

		if err := s.refs.LogFileDeletion(name); err != nil {
			log.Printf("[cleanup] warning: failed to log deletion of %s: %v", name, err)
		}
		result.DeletedFiles = append(result.DeletedFiles, name)
		result.DeletedCount++
	}

	log.Printf("[cleanup] sweep completed: %d/%d deleted, %d errors (dry-run: %v)",
		result.DeletedCount, result.TargetCount, result.ErrorCount, config.DryRun)

	return result, nil
}

// GetRecentDeleteLogs returns recent delete log entries
func (s *Service) GetRecentDeleteLogs(limit int) ([]models.DeleteLog, error) {
	return s.refs.RecentDeleteLogs(limit)
}
