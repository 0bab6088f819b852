package services

import (
	"context"
	"log/slog"
	"net/http"

	"newsroom-cms/helper"
	"newsroom-cms/models"
	"newsroom-cms/repositories"
)

const (
	defaultLimit = 50
	defaultSkip  = 0
)

// Patch mutates an in-memory document before it is persisted.
type Patch[T any] func(doc *T)

// ResourceService is the CRUD core shared by every resource. Every method
// returns either a Result or a domain error from models.
type ResourceService[T models.Document] struct {
	repo   repositories.DocumentRepository[T]
	logger *slog.Logger
	name   string
}

func NewResourceService[T models.Document](repo repositories.DocumentRepository[T], logger *slog.Logger, name string) *ResourceService[T] {
	return &ResourceService[T]{repo: repo, logger: logger.With("resource", name), name: name}
}

// Find lists documents matching filter with the query's pagination and sort.
func (s *ResourceService[T]) Find(ctx context.Context, query models.ListQuery, filter repositories.Filter, projection ...string) (models.Result[[]T], error) {
	opts, err := findOptions(query)
	if err != nil {
		return models.Result[[]T]{}, err
	}
	opts.Select = projection

	docs, err := s.repo.Find(ctx, filter, opts)
	if err != nil {
		return models.Result[[]T]{}, s.internal(err)
	}
	if docs == nil {
		docs = []T{}
	}
	return models.OK(docs), nil
}

// FindAll lists every matching document without pagination.
func (s *ResourceService[T]) FindAll(ctx context.Context, filter repositories.Filter, opts repositories.FindOptions) ([]T, error) {
	docs, err := s.repo.Find(ctx, filter, opts)
	if err != nil {
		return nil, s.internal(err)
	}
	return docs, nil
}

func (s *ResourceService[T]) FindByID(ctx context.Context, id, errKey string) (models.Result[*T], error) {
	return s.FindOne(ctx, repositories.ByID(id), "", errKey)
}

// FindOne looks a document up by a unique key, ignoring excludedID.
func (s *ResourceService[T]) FindOne(ctx context.Context, filter repositories.Filter, excludedID, errKey string) (models.Result[*T], error) {
	doc, err := s.repo.FindOne(ctx, filter.Exclude(nonEmpty(excludedID)...))
	if err != nil {
		return models.Result[*T]{}, s.internal(err)
	}
	if doc == nil {
		return models.Result[*T]{}, models.NewErrorNotFound(errKey)
	}
	return models.OK(doc), nil
}

// CheckDuplicate returns an ErrorConflict carrying the existing document when
// another active document already holds the key.
func (s *ResourceService[T]) CheckDuplicate(ctx context.Context, filter repositories.Filter, excludedID, errKey, detail string) error {
	res, err := s.FindOne(ctx, filter, excludedID, "")
	if err != nil {
		if models.IsNotFound(err) {
			return nil
		}
		return err
	}
	existing := *res.Data
	return models.NewErrorConflict(errKey, detail, existing.GetID(), existing)
}

func (s *ResourceService[T]) Create(ctx context.Context, doc *T) (models.Result[*T], error) {
	if err := s.repo.Insert(ctx, doc); err != nil {
		return models.Result[*T]{}, s.internal(err)
	}
	return models.NewResult(http.StatusCreated, doc, models.MsgCreated), nil
}

// UpdateExisting applies patch to doc and persists it.
func (s *ResourceService[T]) UpdateExisting(ctx context.Context, doc *T, patch Patch[T]) (models.Result[*T], error) {
	if patch != nil {
		patch(doc)
	}
	rows, err := s.repo.Save(ctx, doc)
	if err != nil {
		return models.Result[*T]{}, s.internal(err)
	}
	if rows == 0 {
		return models.Result[*T]{}, models.NewErrorNotFound("")
	}
	return models.NewResult(http.StatusOK, doc, models.MsgUpdated), nil
}

// Update is the bulk update primitive. It reports ErrorNotFound when nothing
// matched and ErrorUnprocessableEntity when nothing changed.
func (s *ResourceService[T]) Update(ctx context.Context, filter repositories.Filter, set map[string]interface{}, unset []string, message string) (models.Result[models.UpdateCount], error) {
	count, err := s.repo.UpdateMany(ctx, filter, set, unset)
	if err != nil {
		return models.Result[models.UpdateCount]{}, s.internal(err)
	}
	if count.Matched == 0 {
		return models.Result[models.UpdateCount]{}, models.NewErrorNotFound("")
	}
	if count.Modified == 0 {
		s.logger.Error("unable to update documents", "filter", filter)
		return models.Result[models.UpdateCount]{}, models.NewErrorUnprocessableEntity(models.MsgUnableToUpdate)
	}
	if message == "" {
		message = models.MsgUpdated
	}
	return models.NewResult(http.StatusOK, count, message), nil
}

// RemoveByID soft-deletes an active document.
func (s *ResourceService[T]) RemoveByID(ctx context.Context, id string) (models.Result[models.UpdateCount], error) {
	filter := repositories.ByID(id)
	filter.Status = models.StatusActive
	return s.Update(ctx, filter, map[string]interface{}{"status": models.StatusDeleted}, nil, models.MsgDeleted)
}

func (s *ResourceService[T]) internal(err error) error {
	s.logger.Error("store call failed", "error", err)
	return models.NewErrorInternalServer(err)
}

func findOptions(query models.ListQuery) (repositories.FindOptions, error) {
	opts := repositories.FindOptions{Limit: defaultLimit, Skip: defaultSkip}
	if query.Limit != nil {
		if *query.Limit < 0 {
			return opts, models.NewErrorValidation(models.MsgInvalidData, []map[string]string{{"limit": "must be a non-negative integer"}})
		}
		opts.Limit = *query.Limit
	}
	if query.Skip != nil {
		if *query.Skip < 0 {
			return opts, models.NewErrorValidation(models.MsgInvalidData, []map[string]string{{"skip": "must be a non-negative integer"}})
		}
		opts.Skip = *query.Skip
	}
	sortBy, err := helper.ParseSortBy(query.SortBy)
	if err != nil {
		return opts, models.NewErrorValidation(models.MsgInvalidData, []map[string]string{{"sort_by": err.Error()}})
	}
	for _, field := range sortBy {
		opts.Sort = append(opts.Sort, repositories.SortField{Column: field.Column, Desc: field.Desc})
	}
	return opts, nil
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
