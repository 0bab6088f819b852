package services

import (
	"context"
	"errors"

	"newsroom-cms/models"
	"newsroom-cms/repositories"
	"newsroom-cms/worker"
)

const featuredPath = "filters." + models.FilterFeatured

func (s *articleService) enforceFeaturedLater(article *models.Article) {
	if article.ID == "" {
		return
	}
	id := article.ID
	s.submit(worker.Task{
		Name:     "article.enforceFeatured",
		Attempts: s.opts.TaskAttempts,
		Run: func(ctx context.Context) error {
			return s.enforceFeatured(ctx, id)
		},
	})
}

// enforceFeatured strips the featured flag from other approved articles of
// the subject's type that were last written no later than the subject.
// Work for one type is serialized, so the most recently written featured
// article is the one left standing.
func (s *articleService) enforceFeatured(ctx context.Context, id string) error {
	subject, err := s.featuredSubject(ctx, id)
	if err != nil || subject == nil {
		return err
	}

	unlock := s.typeLocks.Lock(subject.Type)
	defer unlock()

	// re-read under the lock: another cleanup may have stripped the subject
	subject, err = s.featuredSubject(ctx, id)
	if err != nil || subject == nil {
		return err
	}

	filter := repositories.Filter{
		Equals: map[string]interface{}{
			"type":            subject.Type,
			"approval_status": models.ApprovalApproved,
		},
		Flags: map[string]bool{models.FilterFeatured: true},
	}
	others, err := s.articles.FindAll(ctx, filter.Exclude(id), repositories.FindOptions{Select: []string{"id", "updated_at"}})
	if err != nil {
		return err
	}

	var stale []string
	for _, other := range others {
		if !other.UpdatedAt.After(subject.UpdatedAt) {
			stale = append(stale, other.ID)
		}
	}
	if len(stale) == 0 {
		return nil
	}

	strip := repositories.ByIDs(stale)
	strip.Flags = filter.Flags
	res, err := s.articles.Update(ctx, strip, nil, []string{featuredPath}, "")
	if err != nil {
		var internal models.ErrorInternalServer
		if errors.As(err, &internal) {
			return err
		}
		// the siblings changed underneath us; nothing left to strip
		return nil
	}
	s.logger.Info("featured flag moved", "article", id, "type", subject.Type, "stripped", res.Data.Modified)
	return nil
}

// featuredSubject returns the article when it is active, approved and
// featured, and nil otherwise.
func (s *articleService) featuredSubject(ctx context.Context, id string) (*models.Article, error) {
	res, err := s.articles.FindByID(ctx, id, "")
	if err != nil {
		if models.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	article := res.Data
	if article.ApprovalStatus != models.ApprovalApproved || !article.IsFeatured() {
		return nil, nil
	}
	return article, nil
}
