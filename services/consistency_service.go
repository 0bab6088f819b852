package services

import (
	"context"
	"log/slog"
	"time"

	"newsroom-cms/models"
	"newsroom-cms/repositories"
)

// ConsistencyService repairs tag back-references that drifted from the
// tags recorded on articles, for example after a dropped removal task.
type ConsistencyService struct {
	articles *ResourceService[models.Article]
	tags     *ResourceService[models.Tag]
	registry TagService
	logger   *slog.Logger
}

func NewConsistencyService(
	articleRepo repositories.DocumentRepository[models.Article],
	tagRepo repositories.DocumentRepository[models.Tag],
	registry TagService,
	logger *slog.Logger,
) *ConsistencyService {
	return &ConsistencyService{
		articles: NewResourceService(articleRepo, logger, "article"),
		tags:     NewResourceService(tagRepo, logger, "tag"),
		registry: registry,
		logger:   logger.With("service", "consistency"),
	}
}

// RunOnce makes every active tag list exactly the active articles naming
// it. Ids of articles created after the snapshot are left alone.
func (s *ConsistencyService) RunOnce(ctx context.Context) (int, error) {
	active, err := s.articles.FindAll(ctx, repositories.Filter{}, repositories.FindOptions{Select: []string{"id", "tags"}})
	if err != nil {
		return 0, err
	}
	deleted, err := s.articles.FindAll(ctx, repositories.Filter{Status: models.StatusDeleted}, repositories.FindOptions{Select: []string{"id"}})
	if err != nil {
		return 0, err
	}

	known := make(map[string]bool, len(active)+len(deleted))
	byTagID := map[string][]string{}
	byTagName := map[string][]string{}
	for _, article := range active {
		known[article.ID] = true
		for _, ref := range article.Tags {
			byTagID[ref.ID] = append(byTagID[ref.ID], article.ID)
			byTagName[ref.Name] = append(byTagName[ref.Name], article.ID)
		}
	}
	for _, article := range deleted {
		known[article.ID] = true
	}

	tags, err := s.tags.FindAll(ctx, repositories.Filter{}, repositories.FindOptions{})
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, tag := range tags {
		want := byTagID[tag.ID]
		if len(want) == 0 {
			want = byTagName[tag.Name]
		}
		wanted := make(map[string]bool, len(want))
		for _, id := range want {
			wanted[id] = true
		}
		var drop []string
		for _, id := range tag.Articles {
			if known[id] && !wanted[id] {
				drop = append(drop, id)
			}
		}

		changed, err := s.registry.Reconcile(ctx, tag, want, drop)
		if err != nil {
			if models.IsNotFound(err) {
				continue
			}
			return repaired, err
		}
		if changed {
			repaired++
		}
	}
	return repaired, nil
}

// Start runs RunOnce on every tick until ctx is done. A non-positive
// interval disables the job.
func (s *ConsistencyService) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				repaired, err := s.RunOnce(ctx)
				if err != nil {
					s.logger.Error("consistency check failed", "error", err)
					continue
				}
				s.logger.Info("consistency check finished", "repaired", repaired)
			case <-ctx.Done():
				return
			}
		}
	}()
}
