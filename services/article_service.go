package services

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"newsroom-cms/images"
	"newsroom-cms/models"
	"newsroom-cms/repositories"
	"newsroom-cms/storage"
	"newsroom-cms/worker"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

type ArticleService interface {
	Get(ctx context.Context, id string) (models.Result[*models.ArticleDetail], error)
	List(ctx context.Context, query models.ArticleListQuery) (models.Result[[]models.Article], error)
	Create(ctx context.Context, req models.CreateArticleRequest) (models.Result[*models.Article], error)
	Update(ctx context.Context, id string, req models.UpdateArticleRequest) (models.Result[*models.Article], error)
	Remove(ctx context.Context, id string) (models.Result[models.UpdateCount], error)
	UpdateApprovalStatus(ctx context.Context, req models.UpdateApprovalStatusRequest) (models.Result[models.UpdateCount], error)
	BulkDelete(ctx context.Context, req models.BulkDeleteRequest) (models.Result[models.UpdateCount], error)
}

// Dispatcher accepts background work.
type Dispatcher interface {
	Submit(task worker.Task) error
}

type ArticleOptions struct {
	Resolutions       map[string]images.Resolution
	SideEffectTimeout time.Duration
	TaskAttempts      int
}

type articleService struct {
	articles   *ResourceService[models.Article]
	tags       TagService
	statistics StatisticsService
	content    storage.BlobStore
	deriver    images.Deriver
	queue      Dispatcher
	opts       ArticleOptions
	typeLocks  *keyedMutex
	logger     *slog.Logger
}

func NewArticleService(
	articleRepo repositories.DocumentRepository[models.Article],
	tagService TagService,
	statisticsService StatisticsService,
	content storage.BlobStore,
	deriver images.Deriver,
	queue Dispatcher,
	opts ArticleOptions,
	logger *slog.Logger,
) ArticleService {
	if opts.TaskAttempts < 1 {
		opts.TaskAttempts = 1
	}
	return &articleService{
		articles:   NewResourceService(articleRepo, logger, "article"),
		tags:       tagService,
		statistics: statisticsService,
		content:    content,
		deriver:    deriver,
		queue:      queue,
		opts:       opts,
		typeLocks:  newKeyedMutex(),
		logger:     logger.With("service", "article"),
	}
}

var relatedProjection = []string{"id", "description", "image_data", "reference_feed_source", "reference_key", "updated_at"}

func (s *articleService) Get(ctx context.Context, id string) (models.Result[*models.ArticleDetail], error) {
	res, err := s.articles.FindByID(ctx, id, "id")
	if err != nil {
		return models.Result[*models.ArticleDetail]{}, err
	}
	article := res.Data
	detail := &models.ArticleDetail{Article: *article, RelatedArticles: []models.RelatedArticle{}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		related, err := s.findRelated(gctx, article)
		detail.RelatedArticles = related
		return err
	})
	g.Go(func() error {
		cctx, cancel := s.sideEffectContext(gctx)
		defer cancel()
		content, err := s.content.Get(cctx, article.ContentPath)
		if err != nil {
			return models.NewErrorExternalService("Unable to load article content", err)
		}
		detail.Content = content
		return nil
	})
	g.Go(func() error {
		stats, err := s.statistics.FindByKey(gctx, article.ID)
		detail.PlayerStatistics = stats
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Result[*models.ArticleDetail]{}, err
	}
	return models.OK(detail), nil
}

func (s *articleService) findRelated(ctx context.Context, article *models.Article) ([]models.RelatedArticle, error) {
	related := []models.RelatedArticle{}
	if article.MatchID == "" {
		return related, nil
	}

	filter := repositories.Filter{Equals: map[string]interface{}{
		"match_id":        article.MatchID,
		"type":            article.Type,
		"approval_status": models.ApprovalApproved,
	}}
	docs, err := s.articles.FindAll(ctx, filter.Exclude(article.ID), repositories.FindOptions{
		Select: relatedProjection,
		Sort:   []repositories.SortField{{Column: "updated_at", Desc: true}},
		Limit:  defaultLimit,
	})
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		related = append(related, models.RelatedArticle{
			ID:          doc.ID,
			Description: doc.Description,
			ImageData:   doc.Images(),
			Reference:   doc.Reference,
			UpdatedAt:   doc.UpdatedAt,
		})
	}
	return related, nil
}

func (s *articleService) List(ctx context.Context, query models.ArticleListQuery) (models.Result[[]models.Article], error) {
	approval := query.ApprovalStatus
	if len(approval) == 0 {
		approval = []string{models.ApprovalApproved}
	}
	filter := repositories.Filter{Equals: map[string]interface{}{
		"approval_status": approval,
		"is_draft":        query.IsDraft,
	}}
	if len(query.Types) > 0 {
		filter.Equals["type"] = query.Types
	}
	if len(query.Filters) > 0 {
		filter.Flags = map[string]bool{}
		for _, flag := range query.Filters {
			filter.Flags[flag] = true
		}
	}
	return s.articles.Find(ctx, query.ListQuery, filter)
}

func referenceFilter(ref models.Reference) repositories.Filter {
	return repositories.Filter{Equals: map[string]interface{}{
		"reference_feed_source": ref.FeedSource,
		"reference_key":         ref.Key,
	}}
}

func (s *articleService) Create(ctx context.Context, req models.CreateArticleRequest) (models.Result[*models.Article], error) {
	if err := s.articles.CheckDuplicate(ctx, referenceFilter(req.Reference), "", "body,reference", models.MsgReferenceExists); err != nil {
		return models.Result[*models.Article]{}, err
	}

	effects, err := s.runSideEffects(ctx, sideEffects{
		content:     optional(req.Content),
		image:       req.ImageData,
		resolutions: s.resolutions(nil),
	})
	if err != nil {
		return models.Result[*models.Article]{}, err
	}

	article := &models.Article{
		Title:          req.Title,
		Author:         req.Author,
		Source:         req.Source,
		Reference:      req.Reference,
		Type:           req.Type,
		ContentPath:    req.ContentPath,
		Thumbnail:      req.Thumbnail,
		Description:    req.Description,
		MatchID:        req.MatchID,
		ApprovalStatus: req.ApprovalStatus,
		Filters:        flagsFromList(req.Filters),
		IsHighlight:    req.IsHighlight,
		IsDraft:        req.IsDraft,
		ImageData:      datatypes.NewJSONType(effects.images(nil)),
		PublishedAt:    req.PublishedAt,
		Timezone:       req.Timezone,
		Tags:           []models.TagRef{},
		SeoRoute:       req.SeoRoute,
		SeoTags:        req.SeoTags,
		SeoDescription: req.SeoDescription,
		SeoKeywords:    req.SeoKeywords,
	}
	if effects.contentPath != "" {
		article.ContentPath = effects.contentPath
	}

	res, err := s.articles.Create(ctx, article)
	if err != nil {
		if repositories.IsDuplicate(err) {
			err = models.NewErrorConflict("body,reference", models.MsgReferenceExists, "", nil)
		}
		s.discard(effects.allocated)
		return res, err
	}
	s.enforceFeaturedLater(article)

	names := dedupe(req.TagList)
	if len(names) == 0 {
		return res, nil
	}
	tags, err := s.resolveTags(ctx, article.ID, names)
	if err != nil {
		return models.Result[*models.Article]{}, err
	}
	res, err = s.articles.UpdateExisting(ctx, article, func(a *models.Article) {
		a.Tags = tags
	})
	if err != nil {
		return res, err
	}
	return models.NewResult(http.StatusCreated, res.Data, models.MsgCreated), nil
}

func (s *articleService) Update(ctx context.Context, id string, req models.UpdateArticleRequest) (models.Result[*models.Article], error) {
	found, err := s.articles.FindByID(ctx, id, "id")
	if err != nil {
		return found, err
	}
	article := found.Data
	current := article.Images()

	effects, err := s.runSideEffects(ctx, sideEffects{
		content:         req.Content,
		existingContent: article.ContentPath,
		image:           req.ImageData,
		resolutions:     s.resolutions(current),
	})
	if err != nil {
		return models.Result[*models.Article]{}, err
	}

	var tags []models.TagRef
	if req.TagList != nil {
		tags, err = s.reconcileTags(ctx, article.ID, article.Tags, dedupe(req.TagList))
		if err != nil {
			s.discard(effects.allocated)
			return models.Result[*models.Article]{}, err
		}
	}

	res, err := s.articles.UpdateExisting(ctx, article, func(a *models.Article) {
		applyUpdate(a, req)
		if effects.contentPath != "" {
			a.ContentPath = effects.contentPath
		}
		if effects.derived != nil {
			a.ImageData = datatypes.NewJSONType(effects.images(current))
		}
		if tags != nil {
			a.Tags = tags
		}
	})
	if err != nil {
		s.discard(effects.allocated)
		return res, err
	}
	s.enforceFeaturedLater(res.Data)
	return res, nil
}

// applyUpdate copies the supplied fields. The reference never changes.
func applyUpdate(a *models.Article, req models.UpdateArticleRequest) {
	setString(&a.Title, req.Title)
	setString(&a.Author, req.Author)
	setString(&a.Source, req.Source)
	setString(&a.Type, req.Type)
	setString(&a.Thumbnail, req.Thumbnail)
	setString(&a.Description, req.Description)
	setString(&a.MatchID, req.MatchID)
	setString(&a.ApprovalStatus, req.ApprovalStatus)
	setString(&a.Timezone, req.Timezone)
	setString(&a.SeoRoute, req.SeoRoute)
	setString(&a.SeoTags, req.SeoTags)
	setString(&a.SeoDescription, req.SeoDescription)
	setString(&a.SeoKeywords, req.SeoKeywords)
	if req.Filters != nil {
		a.Filters = flagsFromList(req.Filters)
	}
	if req.IsHighlight != nil {
		a.IsHighlight = *req.IsHighlight
	}
	if req.IsDraft != nil {
		a.IsDraft = *req.IsDraft
	}
	if req.PublishedAt != nil {
		a.PublishedAt = req.PublishedAt
	}
}

func (s *articleService) Remove(ctx context.Context, id string) (models.Result[models.UpdateCount], error) {
	found, err := s.articles.FindByID(ctx, id, "id")
	if err != nil {
		return models.Result[models.UpdateCount]{}, err
	}
	res, err := s.articles.RemoveByID(ctx, id)
	if err != nil {
		return res, err
	}
	for _, tag := range found.Data.Tags {
		s.removeTagLater(id, tag.Name)
	}
	return res, nil
}

func (s *articleService) UpdateApprovalStatus(ctx context.Context, req models.UpdateApprovalStatusRequest) (models.Result[models.UpdateCount], error) {
	res, err := s.articles.Update(ctx, repositories.ByIDs(req.ArticleIDs),
		map[string]interface{}{"approval_status": req.ApprovalStatus}, nil, models.MsgUpdated)
	if err != nil {
		return res, err
	}
	if req.ApprovalStatus == models.ApprovalApproved {
		for _, id := range req.ArticleIDs {
			s.enforceFeaturedLater(&models.Article{Base: models.Base{ID: id}})
		}
	}
	return res, nil
}

func (s *articleService) BulkDelete(ctx context.Context, req models.BulkDeleteRequest) (models.Result[models.UpdateCount], error) {
	return s.articles.Update(ctx, repositories.ByIDs(req.ArticleIDs),
		map[string]interface{}{"status": models.StatusDeleted}, nil, models.MsgDeleted)
}

// resolveTags registers articleID with every named tag in parallel.
func (s *articleService) resolveTags(ctx context.Context, articleID string, names []string) ([]models.TagRef, error) {
	refs := make([]models.TagRef, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			tag, err := s.tags.CreateOrUpdate(gctx, articleID, name)
			if err != nil {
				return err
			}
			refs[i] = models.TagRef{ID: tag.ID, Name: tag.Name}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return refs, nil
}

// reconcileTags awaits additions and queues removals. The result keeps the
// order of the current tags followed by the added ones.
func (s *articleService) reconcileTags(ctx context.Context, articleID string, current []models.TagRef, names []string) ([]models.TagRef, error) {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}
	have := make(map[string]bool, len(current))
	kept := make([]models.TagRef, 0, len(current)+len(names))
	var removed []string
	for _, tag := range current {
		have[tag.Name] = true
		if wanted[tag.Name] {
			kept = append(kept, tag)
			continue
		}
		removed = append(removed, tag.Name)
	}
	var added []string
	for _, name := range names {
		if !have[name] {
			added = append(added, name)
		}
	}

	refs, err := s.resolveTags(ctx, articleID, added)
	if err != nil {
		return nil, err
	}
	for _, name := range removed {
		s.removeTagLater(articleID, name)
	}
	return append(kept, refs...), nil
}

func (s *articleService) removeTagLater(articleID, name string) {
	s.submit(worker.Task{
		Name:     "tag.findAndRemove",
		Attempts: 1,
		Run: func(ctx context.Context) error {
			return s.tags.FindAndRemove(ctx, articleID, name)
		},
	})
}

// discard deletes blobs written for a write that was not persisted.
func (s *articleService) discard(allocated allocation) {
	if allocated.empty() {
		return
	}
	s.submit(worker.Task{
		Name:     "article.discardSideEffects",
		Attempts: s.opts.TaskAttempts,
		Run: func(ctx context.Context) error {
			var firstErr error
			if allocated.contentPath != "" {
				if err := s.content.Delete(ctx, allocated.contentPath); err != nil {
					firstErr = err
				}
			}
			for _, path := range allocated.imagePaths {
				if err := s.deriver.Remove(ctx, path); err != nil && firstErr == nil {
					firstErr = err
				}
			}
			return firstErr
		},
	})
}

func (s *articleService) submit(task worker.Task) {
	if err := s.queue.Submit(task); err != nil {
		s.logger.Error("background task not scheduled", "task", task.Name, "error", err)
	}
}

func (s *articleService) resolutions(current models.ImageSet) map[string]images.Resolution {
	out := make(map[string]images.Resolution, len(s.opts.Resolutions))
	for name, res := range s.opts.Resolutions {
		res.ExistingPath = current[name]
		out[name] = res
	}
	return out
}

func (s *articleService) sideEffectContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.SideEffectTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.SideEffectTimeout)
}

type sideEffects struct {
	content         *string
	existingContent string
	image           *models.ImagePayload
	resolutions     map[string]images.Resolution
}

// allocation lists blobs created at fresh paths by one write.
type allocation struct {
	contentPath string
	imagePaths  []string
}

func (a allocation) empty() bool {
	return a.contentPath == "" && len(a.imagePaths) == 0
}

type sideEffectResult struct {
	contentPath string
	derived     models.ImageSet
	allocated   allocation
}

// images merges freshly derived paths over base.
func (r sideEffectResult) images(base models.ImageSet) models.ImageSet {
	out := models.ImageSet{}
	for name, path := range base {
		out[name] = path
	}
	for name, path := range r.derived {
		out[name] = path
	}
	return out
}

// runSideEffects uploads content and derives images concurrently. When
// either fails, whatever the other allocated is discarded.
func (s *articleService) runSideEffects(ctx context.Context, in sideEffects) (sideEffectResult, error) {
	var (
		out sideEffectResult
		mu  sync.Mutex
	)
	sctx, cancel := s.sideEffectContext(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(sctx)
	g.Go(func() error {
		if in.content == nil || *in.content == "" {
			return nil
		}
		path, err := s.content.Put(gctx, *in.content, in.existingContent)
		if err != nil {
			return models.NewErrorExternalService("Unable to store article content", err)
		}
		mu.Lock()
		out.contentPath = path
		if in.existingContent == "" {
			out.allocated.contentPath = path
		}
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		if in.image == nil {
			return nil
		}
		derived, err := s.deriver.DeriveAll(gctx, in.image.Base64, in.image.Extension, in.resolutions)
		if err != nil {
			return models.NewErrorExternalService("Unable to process image", err)
		}
		mu.Lock()
		out.derived = derived
		for name, path := range derived {
			if in.resolutions[name].ExistingPath == "" {
				out.allocated.imagePaths = append(out.allocated.imagePaths, path)
			}
		}
		mu.Unlock()
		return nil
	})
	if err := g.Wait(); err != nil {
		s.discard(out.allocated)
		return sideEffectResult{}, err
	}
	return out, nil
}

func flagsFromList(flags []string) datatypes.JSONMap {
	out := datatypes.JSONMap{}
	for _, flag := range flags {
		out[flag] = true
	}
	return out
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func optional(s string) *string {
	return &s
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
