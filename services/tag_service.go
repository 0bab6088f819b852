package services

import (
	"context"
	"log/slog"

	"newsroom-cms/models"
	"newsroom-cms/repositories"
)

type TagService interface {
	// CreateOrUpdate finds the active tag called name, creating it when
	// absent, and adds articleID to its articles.
	CreateOrUpdate(ctx context.Context, articleID, name string) (models.Tag, error)
	// FindAndRemove drops articleID from the tag called name. A missing tag
	// is not an error.
	FindAndRemove(ctx context.Context, articleID, name string) error
	// Reconcile ensures add and removes drop from a tag's articles under the
	// same lock CreateOrUpdate takes. It reports whether the tag changed.
	Reconcile(ctx context.Context, tag models.Tag, add, drop []string) (bool, error)

	Create(ctx context.Context, req models.CreateTagRequest) (models.Result[*models.Tag], error)
	List(ctx context.Context, query models.ListQuery) (models.Result[[]models.Tag], error)
	SearchByName(ctx context.Context, query models.ListQuery, name string) (models.Result[[]models.Tag], error)
	FindByID(ctx context.Context, id string) (models.Result[*models.Tag], error)
}

type tagService struct {
	tags   *ResourceService[models.Tag]
	locks  *keyedMutex
	logger *slog.Logger
}

func NewTagService(tagRepo repositories.DocumentRepository[models.Tag], logger *slog.Logger) TagService {
	return &tagService{
		tags:   NewResourceService(tagRepo, logger, "tag"),
		locks:  newKeyedMutex(),
		logger: logger.With("service", "tag"),
	}
}

func byName(name string) repositories.Filter {
	return repositories.Filter{Equals: map[string]interface{}{"name": name}}
}

func (s *tagService) findByName(ctx context.Context, name string) (*models.Tag, error) {
	res, err := s.tags.FindOne(ctx, byName(name), "", "")
	if err != nil {
		if models.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return res.Data, nil
}

func (s *tagService) CreateOrUpdate(ctx context.Context, articleID, name string) (models.Tag, error) {
	unlock := s.locks.Lock(name)
	defer unlock()

	tag, err := s.findByName(ctx, name)
	if err != nil {
		return models.Tag{}, err
	}
	if tag == nil {
		res, err := s.tags.Create(ctx, &models.Tag{Name: name, Articles: []string{articleID}})
		if err != nil {
			return models.Tag{}, err
		}
		return *res.Data, nil
	}

	if tag.HasArticle(articleID) {
		return *tag, nil
	}
	res, err := s.tags.UpdateExisting(ctx, tag, func(t *models.Tag) {
		t.Articles = append(t.Articles, articleID)
	})
	if err != nil {
		return models.Tag{}, err
	}
	return *res.Data, nil
}

func (s *tagService) FindAndRemove(ctx context.Context, articleID, name string) error {
	unlock := s.locks.Lock(name)
	defer unlock()

	tag, err := s.findByName(ctx, name)
	if err != nil || tag == nil {
		return err
	}
	if !tag.HasArticle(articleID) {
		return nil
	}
	_, err = s.tags.UpdateExisting(ctx, tag, func(t *models.Tag) {
		t.Articles = removeFirst(t.Articles, articleID)
	})
	return err
}

func (s *tagService) Reconcile(ctx context.Context, tag models.Tag, add, drop []string) (bool, error) {
	unlock := s.locks.Lock(tag.Name)
	defer unlock()

	res, err := s.tags.FindByID(ctx, tag.ID, "")
	if err != nil {
		return false, err
	}
	current := res.Data

	dropSet := make(map[string]bool, len(drop))
	for _, id := range drop {
		dropSet[id] = true
	}
	seen := map[string]bool{}
	next := make([]string, 0, len(current.Articles)+len(add))
	for _, id := range current.Articles {
		if dropSet[id] || seen[id] {
			continue
		}
		seen[id] = true
		next = append(next, id)
	}
	for _, id := range add {
		if !seen[id] {
			seen[id] = true
			next = append(next, id)
		}
	}
	if equalStrings(next, current.Articles) {
		return false, nil
	}

	if _, err := s.tags.UpdateExisting(ctx, current, func(t *models.Tag) { t.Articles = next }); err != nil {
		return false, err
	}
	s.logger.Info("tag back-references repaired", "tag", current.Name, "before", len(current.Articles), "after", len(next))
	return true, nil
}

func (s *tagService) Create(ctx context.Context, req models.CreateTagRequest) (models.Result[*models.Tag], error) {
	unlock := s.locks.Lock(req.Name)
	defer unlock()

	if err := s.tags.CheckDuplicate(ctx, byName(req.Name), "", "name", models.MsgAlreadyExist); err != nil {
		return models.Result[*models.Tag]{}, err
	}
	return s.tags.Create(ctx, &models.Tag{Name: req.Name})
}

func (s *tagService) List(ctx context.Context, query models.ListQuery) (models.Result[[]models.Tag], error) {
	return s.tags.Find(ctx, query, repositories.Filter{})
}

func (s *tagService) SearchByName(ctx context.Context, query models.ListQuery, name string) (models.Result[[]models.Tag], error) {
	filter := repositories.Filter{Contains: map[string]string{"name": name}}
	return s.tags.Find(ctx, query, filter, "id", "name")
}

func (s *tagService) FindByID(ctx context.Context, id string) (models.Result[*models.Tag], error) {
	return s.tags.FindByID(ctx, id, "id")
}

func removeFirst(list []string, value string) []string {
	for i, v := range list {
		if v == value {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
