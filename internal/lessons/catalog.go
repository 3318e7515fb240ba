package lessons

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/atharvakonge/edustocks/internal/models"
	"github.com/atharvakonge/edustocks/internal/notify"
)

// CatalogBackend lists lessons and the user's progress
type CatalogBackend interface {
	Lessons(ctx context.Context, level models.Level) ([]models.Lesson, error)
	Progress(ctx context.Context) (*models.UserProgress, error)
}

// Entry is one lesson in the catalog with per-user flags
type Entry struct {
	Lesson    models.Lesson
	Completed bool
	Locked    bool
}

// Locked reports whether a lesson of the given level is locked for progress.
// Beginner lessons are always open, intermediate ones close only for a known
// beginner, and advanced ones open only for an advanced user.
func Locked(level models.Level, progress *models.UserProgress) bool {
	switch level {
	case models.Intermediate:
		return progress != nil && progress.Level == models.Beginner
	case models.Advanced:
		return progress == nil || progress.Level != models.Advanced
	}
	return false
}

// LoadCatalog fetches lessons for level together with progress. Missing
// progress is not an error; it only affects the flags.
func LoadCatalog(ctx context.Context, backend CatalogBackend, notifier notify.Notifier, level models.Level) ([]Entry, *models.UserProgress, error) {
	var (
		lessons  []models.Lesson
		progress *models.UserProgress
		err      error
	)
	var g errgroup.Group
	g.Go(func() error {
		lessons, err = backend.Lessons(ctx, level)
		return nil
	})
	g.Go(func() error {
		p, perr := backend.Progress(ctx)
		if perr == nil {
			progress = p
		}
		return nil
	})
	_ = g.Wait()

	if err != nil {
		notifier.Error("Failed to load lessons")
		return nil, progress, fmt.Errorf("load lessons: %w", err)
	}

	sort.SliceStable(lessons, func(i, j int) bool { return lessons[i].Order < lessons[j].Order })
	entries := make([]Entry, 0, len(lessons))
	for _, l := range lessons {
		entries = append(entries, Entry{
			Lesson:    l,
			Completed: progress.HasCompleted(l.ID),
			Locked:    Locked(l.Level, progress),
		})
	}
	return entries, progress, nil
}
