package services

import (
	"context"
	"log/slog"

	"newsroom-cms/models"
	"newsroom-cms/repositories"
)

// StatisticsService keeps per-article player statistics, one document per key.
type StatisticsService interface {
	// FindByKey returns nil, nil when the key has no document.
	FindByKey(ctx context.Context, key string) (*models.Statistics, error)
	Get(ctx context.Context, key string) (models.Result[*models.Statistics], error)
	// Upsert creates the document for key when needed, then adds or replaces
	// the record with the same name.
	Upsert(ctx context.Context, key string, record models.PlayerStatistic) (models.Result[*models.Statistics], error)
	// UpdatePlayer is Upsert for a key that must already exist.
	UpdatePlayer(ctx context.Context, key string, record models.PlayerStatistic) (models.Result[*models.Statistics], error)
}

type statisticsService struct {
	stats  *ResourceService[models.Statistics]
	locks  *keyedMutex
	logger *slog.Logger
}

func NewStatisticsService(repo repositories.DocumentRepository[models.Statistics], logger *slog.Logger) StatisticsService {
	return &statisticsService{
		stats:  NewResourceService(repo, logger, "statistics"),
		locks:  newKeyedMutex(),
		logger: logger.With("service", "statistics"),
	}
}

func byKey(key string) repositories.Filter {
	return repositories.Filter{Equals: map[string]interface{}{"key": key}}
}

func (s *statisticsService) FindByKey(ctx context.Context, key string) (*models.Statistics, error) {
	res, err := s.stats.FindOne(ctx, byKey(key), "", "")
	if err != nil {
		if models.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return res.Data, nil
}

func (s *statisticsService) Get(ctx context.Context, key string) (models.Result[*models.Statistics], error) {
	return s.stats.FindOne(ctx, byKey(key), "", "id")
}

func (s *statisticsService) Upsert(ctx context.Context, key string, record models.PlayerStatistic) (models.Result[*models.Statistics], error) {
	unlock := s.locks.Lock(key)
	defer unlock()

	doc, err := s.FindByKey(ctx, key)
	if err != nil {
		return models.Result[*models.Statistics]{}, err
	}
	if doc == nil {
		return s.stats.Create(ctx, &models.Statistics{Key: key, Statistics: []models.PlayerStatistic{record}})
	}
	return s.stats.UpdateExisting(ctx, doc, func(d *models.Statistics) {
		d.Statistics = upsertRecord(d.Statistics, record)
	})
}

func (s *statisticsService) UpdatePlayer(ctx context.Context, key string, record models.PlayerStatistic) (models.Result[*models.Statistics], error) {
	unlock := s.locks.Lock(key)
	defer unlock()

	res, err := s.stats.FindOne(ctx, byKey(key), "", "key")
	if err != nil {
		return models.Result[*models.Statistics]{}, err
	}
	return s.stats.UpdateExisting(ctx, res.Data, func(d *models.Statistics) {
		d.Statistics = upsertRecord(d.Statistics, record)
	})
}

func upsertRecord(records []models.PlayerStatistic, record models.PlayerStatistic) []models.PlayerStatistic {
	for i := range records {
		if records[i].Name == record.Name {
			if record.ImageURL == "" {
				record.ImageURL = records[i].ImageURL
			}
			records[i] = record
			return records
		}
	}
	return append(records, record)
}
