package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"newsroom-cms/images"
	"newsroom-cms/models"
	"newsroom-cms/repositories"
	"newsroom-cms/worker"

	"github.com/stretchr/testify/suite"
)

var testResolutions = map[string]images.Resolution{
	"thumbnail":        {Height: 200, Width: 300},
	"featureThumbnail": {Height: 400, Width: 600},
	"image":            {Height: 720, Width: 1280},
}

type ArticleServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	articles repositories.DocumentRepository[models.Article]
	tagRepo  repositories.DocumentRepository[models.Tag]
	tags     TagService
	stats    StatisticsService
	blobs    *fakeBlobStore
	deriver  *fakeDeriver
	queue    *worker.Queue
	service  ArticleService
}

func (suite *ArticleServiceTestSuite) SetupTest() {
	db := newTestDB(suite.T())
	suite.ctx = context.Background()
	suite.articles = repositories.NewDocumentRepository[models.Article](db)
	suite.tagRepo = repositories.NewDocumentRepository[models.Tag](db)
	suite.tags = NewTagService(suite.tagRepo, testLogger)
	suite.stats = NewStatisticsService(repositories.NewDocumentRepository[models.Statistics](db), testLogger)
	suite.blobs = newFakeBlobStore()
	suite.deriver = &fakeDeriver{}
	suite.queue = newTestQueue(suite.T())
	suite.service = suite.newService(time.Second)
}

func (suite *ArticleServiceTestSuite) newService(timeout time.Duration) ArticleService {
	return NewArticleService(suite.articles, suite.tags, suite.stats, suite.blobs, suite.deriver, suite.queue,
		ArticleOptions{Resolutions: testResolutions, SideEffectTimeout: timeout, TaskAttempts: 2}, testLogger)
}

func (suite *ArticleServiceTestSuite) createArticle(key string, mutate func(*models.CreateArticleRequest)) *models.Article {
	req := models.CreateArticleRequest{
		Title:     "Article " + key,
		Reference: models.Reference{FeedSource: "manual", Key: key},
	}
	if mutate != nil {
		mutate(&req)
	}
	res, err := suite.service.Create(suite.ctx, req)
	suite.Require().NoError(err)
	suite.Equal(http.StatusCreated, res.Status)
	return res.Data
}

func (suite *ArticleServiceTestSuite) reload(id string) *models.Article {
	doc, err := suite.articles.FindOne(suite.ctx, repositories.ByID(id))
	suite.Require().NoError(err)
	suite.Require().NotNil(doc)
	return doc
}

func (suite *ArticleServiceTestSuite) tagByName(name string) *models.Tag {
	doc, err := suite.tagRepo.FindOne(suite.ctx, byName(name))
	suite.Require().NoError(err)
	suite.Require().NotNil(doc)
	return doc
}

func (suite *ArticleServiceTestSuite) TestCreateAndGetRoundTrip() {
	created := suite.createArticle("k1", func(req *models.CreateArticleRequest) {
		req.Content = "<p>body</p>"
		req.ImageData = &models.ImagePayload{Base64: "aGVsbG8=", Extension: "png"}
		req.Filters = []string{"trending"}
	})

	suite.NotEmpty(created.ContentPath)
	suite.Equal(models.ArticleTypeNews, created.Type)
	suite.Equal(models.ApprovalPending, created.ApprovalStatus)
	suite.Equal(true, created.Filters["trending"])

	res, err := suite.service.Get(suite.ctx, created.ID)
	suite.Require().NoError(err)
	detail := res.Data

	suite.Equal("<p>body</p>", detail.Content)
	suite.Len(detail.Images(), len(testResolutions))
	for name := range testResolutions {
		suite.Contains(detail.Images(), name)
	}
	suite.NotNil(detail.RelatedArticles)
	suite.Empty(detail.RelatedArticles)
	suite.Nil(detail.PlayerStatistics)
}

func (suite *ArticleServiceTestSuite) TestGetMissingArticle() {
	_, err := suite.service.Get(suite.ctx, "missing")
	suite.True(models.IsNotFound(err))
}

func (suite *ArticleServiceTestSuite) TestGetWithoutContentOrMatch() {
	created := suite.createArticle("k1", nil)

	res, err := suite.service.Get(suite.ctx, created.ID)
	suite.Require().NoError(err)
	suite.Equal("", res.Data.Content)
	suite.Equal([]models.RelatedArticle{}, res.Data.RelatedArticles)
}

func (suite *ArticleServiceTestSuite) TestGetJoinsRelatedAndStatistics() {
	mutate := func(approval string) func(*models.CreateArticleRequest) {
		return func(req *models.CreateArticleRequest) {
			req.MatchID = "match-7"
			req.ApprovalStatus = approval
		}
	}
	subject := suite.createArticle("k1", mutate(models.ApprovalApproved))
	sibling := suite.createArticle("k2", mutate(models.ApprovalApproved))
	suite.createArticle("k3", mutate(models.ApprovalPending))
	suite.createArticle("k4", func(req *models.CreateArticleRequest) {
		req.MatchID = "match-7"
		req.ApprovalStatus = models.ApprovalApproved
		req.Type = models.ArticleTypeBlog
	})

	_, err := suite.stats.Upsert(suite.ctx, subject.ID, models.PlayerStatistic{Name: "Kohli"})
	suite.Require().NoError(err)

	res, err := suite.service.Get(suite.ctx, subject.ID)
	suite.Require().NoError(err)

	suite.Require().Len(res.Data.RelatedArticles, 1)
	suite.Equal(sibling.ID, res.Data.RelatedArticles[0].ID)
	suite.Equal("k2", res.Data.RelatedArticles[0].Reference.Key)
	suite.Require().NotNil(res.Data.PlayerStatistics)
	suite.Equal("Kohli", res.Data.PlayerStatistics.Statistics[0].Name)
}

func (suite *ArticleServiceTestSuite) TestCreateDuplicateReferenceHasNoSideEffects() {
	suite.createArticle("k1", nil)
	puts, derives := suite.blobs.putCount(), suite.deriver.callCount()

	_, err := suite.service.Create(suite.ctx, models.CreateArticleRequest{
		Title:     "Again",
		Reference: models.Reference{FeedSource: "manual", Key: "k1"},
		Content:   "<p>dup</p>",
		ImageData: &models.ImagePayload{Base64: "aGVsbG8=", Extension: "png"},
	})

	var conflict models.ErrorConflict
	suite.Require().True(errors.As(err, &conflict))
	suite.Equal([]map[string]string{{"body,reference": models.MsgReferenceExists}}, conflict.Data)
	suite.Equal(puts, suite.blobs.putCount())
	suite.Equal(derives, suite.deriver.callCount())

	all, err := suite.articles.Find(suite.ctx, repositories.Filter{}, repositories.FindOptions{})
	suite.Require().NoError(err)
	suite.Len(all, 1)
}

func (suite *ArticleServiceTestSuite) TestCreateReusesReferenceOfDeletedArticle() {
	first := suite.createArticle("k1", nil)
	_, err := suite.service.Remove(suite.ctx, first.ID)
	suite.Require().NoError(err)

	second := suite.createArticle("k1", nil)
	suite.NotEqual(first.ID, second.ID)
}

func (suite *ArticleServiceTestSuite) TestCreateSideEffectFailureAbortsAndCleansUp() {
	suite.deriver.err = errors.New("resize failed")

	_, err := suite.service.Create(suite.ctx, models.CreateArticleRequest{
		Title:     "Broken",
		Reference: models.Reference{FeedSource: "manual", Key: "k1"},
		Content:   "<p>body</p>",
		ImageData: &models.ImagePayload{Base64: "aGVsbG8=", Extension: "png"},
	})

	var external models.ErrorExternalService
	suite.Require().True(errors.As(err, &external))
	suite.Equal(http.StatusUnprocessableEntity, external.Status)

	all, err := suite.articles.Find(suite.ctx, repositories.Filter{}, repositories.FindOptions{})
	suite.Require().NoError(err)
	suite.Empty(all)

	suite.queue.Wait()
	suite.Len(suite.blobs.deleted(), 1)
}

func (suite *ArticleServiceTestSuite) TestCreateTimesOutSlowBlobStore() {
	suite.blobs.block = true
	service := suite.newService(20 * time.Millisecond)

	_, err := service.Create(suite.ctx, models.CreateArticleRequest{
		Title:     "Slow",
		Reference: models.Reference{FeedSource: "manual", Key: "k1"},
		Content:   "<p>body</p>",
	})

	var external models.ErrorExternalService
	suite.Require().True(errors.As(err, &external))
	suite.ErrorIs(err, context.DeadlineExceeded)
}

func (suite *ArticleServiceTestSuite) TestCreateResolvesTags() {
	created := suite.createArticle("k1", func(req *models.CreateArticleRequest) {
		req.TagList = []string{"golang", "api", "golang"}
	})

	suite.Require().Len(created.Tags, 2)
	suite.Equal("golang", created.Tags[0].Name)
	suite.Equal("api", created.Tags[1].Name)
	suite.True(suite.tagByName("golang").HasArticle(created.ID))
	suite.Equal(created.Tags[0].ID, suite.tagByName("golang").ID)
}

func (suite *ArticleServiceTestSuite) TestUpdateReconcilesTags() {
	created := suite.createArticle("k1", func(req *models.CreateArticleRequest) {
		req.TagList = []string{"A", "B"}
	})
	tagB := suite.tagByName("B")

	res, err := suite.service.Update(suite.ctx, created.ID, models.UpdateArticleRequest{TagList: []string{"B", "C"}})
	suite.Require().NoError(err)
	suite.queue.Wait()

	var names []string
	for _, tag := range res.Data.Tags {
		names = append(names, tag.Name)
	}
	suite.Equal([]string{"B", "C"}, names)
	suite.Equal(tagB.ID, res.Data.Tags[0].ID)

	suite.False(suite.tagByName("A").HasArticle(created.ID))
	suite.True(suite.tagByName("B").HasArticle(created.ID))
	suite.True(suite.tagByName("C").HasArticle(created.ID))
	suite.Equal([]models.TagRef(res.Data.Tags), []models.TagRef(suite.reload(created.ID).Tags))
}

func (suite *ArticleServiceTestSuite) TestUpdateKeepsReferenceAndImagePaths() {
	created := suite.createArticle("k1", func(req *models.CreateArticleRequest) {
		req.Content = "<p>v1</p>"
		req.ImageData = &models.ImagePayload{Base64: "aGVsbG8=", Extension: "png"}
	})
	before := created.Images()

	res, err := suite.service.Update(suite.ctx, created.ID, models.UpdateArticleRequest{
		Title:     strPtr("Renamed"),
		Content:   strPtr("<p>v2</p>"),
		ImageData: &models.ImagePayload{Base64: "aGVsbG8=", Extension: "png"},
	})
	suite.Require().NoError(err)

	for name, res := range suite.deriver.last {
		suite.Equal(before[name], res.ExistingPath, name)
	}
	updated := res.Data
	suite.Equal("Renamed", updated.Title)
	suite.Equal("k1", updated.Reference.Key)
	suite.Equal(created.ContentPath, updated.ContentPath)
	suite.Equal(before, updated.Images())

	detail, err := suite.service.Get(suite.ctx, created.ID)
	suite.Require().NoError(err)
	suite.Equal("<p>v2</p>", detail.Data.Content)
}

func (suite *ArticleServiceTestSuite) TestUpdateMissingArticle() {
	_, err := suite.service.Update(suite.ctx, "missing", models.UpdateArticleRequest{Title: strPtr("x")})
	suite.True(models.IsNotFound(err))
}

func (suite *ArticleServiceTestSuite) TestFeaturingKeepsLatestArticle() {
	approved := func(req *models.CreateArticleRequest) { req.ApprovalStatus = models.ApprovalApproved }
	first := suite.createArticle("k1", approved)
	second := suite.createArticle("k2", approved)
	other := suite.createArticle("k3", func(req *models.CreateArticleRequest) {
		req.ApprovalStatus = models.ApprovalApproved
		req.Type = models.ArticleTypeBlog
		req.Filters = []string{models.FilterFeatured}
	})
	suite.queue.Wait()

	_, err := suite.service.Update(suite.ctx, first.ID, models.UpdateArticleRequest{Filters: []string{models.FilterFeatured, "trending"}})
	suite.Require().NoError(err)
	suite.queue.Wait()
	time.Sleep(5 * time.Millisecond)

	_, err = suite.service.Update(suite.ctx, second.ID, models.UpdateArticleRequest{Filters: []string{models.FilterFeatured}})
	suite.Require().NoError(err)
	suite.queue.Wait()

	suite.False(suite.reload(first.ID).IsFeatured())
	suite.Equal(true, suite.reload(first.ID).Filters["trending"])
	suite.True(suite.reload(second.ID).IsFeatured())
	suite.True(suite.reload(other.ID).IsFeatured())
}

func (suite *ArticleServiceTestSuite) TestFeaturedIgnoresPendingArticles() {
	featured := func(req *models.CreateArticleRequest) { req.Filters = []string{models.FilterFeatured} }
	first := suite.createArticle("k1", featured)
	second := suite.createArticle("k2", featured)
	suite.queue.Wait()

	suite.True(suite.reload(first.ID).IsFeatured())
	suite.True(suite.reload(second.ID).IsFeatured())
}

func (suite *ArticleServiceTestSuite) TestListFilters() {
	suite.createArticle("k1", func(req *models.CreateArticleRequest) {
		req.ApprovalStatus = models.ApprovalApproved
		req.Filters = []string{"trending"}
	})
	suite.createArticle("k2", func(req *models.CreateArticleRequest) { req.ApprovalStatus = models.ApprovalApproved })
	suite.createArticle("k3", nil)
	suite.createArticle("k4", func(req *models.CreateArticleRequest) {
		req.ApprovalStatus = models.ApprovalApproved
		req.IsDraft = true
	})

	res, err := suite.service.List(suite.ctx, models.ArticleListQuery{})
	suite.Require().NoError(err)
	suite.Len(res.Data, 2)

	res, err = suite.service.List(suite.ctx, models.ArticleListQuery{Filters: []string{"trending"}})
	suite.Require().NoError(err)
	suite.Require().Len(res.Data, 1)
	suite.Equal("k1", res.Data[0].Reference.Key)

	res, err = suite.service.List(suite.ctx, models.ArticleListQuery{ApprovalStatus: []string{models.ApprovalPending}})
	suite.Require().NoError(err)
	suite.Len(res.Data, 1)

	res, err = suite.service.List(suite.ctx, models.ArticleListQuery{IsDraft: true})
	suite.Require().NoError(err)
	suite.Len(res.Data, 1)
}

func (suite *ArticleServiceTestSuite) TestRemove() {
	created := suite.createArticle("k1", func(req *models.CreateArticleRequest) { req.TagList = []string{"golang"} })

	res, err := suite.service.Remove(suite.ctx, created.ID)
	suite.Require().NoError(err)
	suite.Equal(models.MsgDeleted, res.Message)
	suite.queue.Wait()
	suite.False(suite.tagByName("golang").HasArticle(created.ID))

	_, err = suite.service.Remove(suite.ctx, created.ID)
	suite.True(models.IsNotFound(err))
}

func (suite *ArticleServiceTestSuite) TestBulkOperations() {
	a := suite.createArticle("k1", nil)
	b := suite.createArticle("k2", nil)
	ids := []string{a.ID, b.ID}

	res, err := suite.service.UpdateApprovalStatus(suite.ctx, models.UpdateApprovalStatusRequest{ApprovalStatus: models.ApprovalApproved, ArticleIDs: ids})
	suite.Require().NoError(err)
	suite.Equal(int64(2), res.Data.Modified)

	_, err = suite.service.UpdateApprovalStatus(suite.ctx, models.UpdateApprovalStatusRequest{ApprovalStatus: models.ApprovalApproved, ArticleIDs: ids})
	var unprocessable models.ErrorUnprocessableEntity
	suite.True(errors.As(err, &unprocessable))

	_, err = suite.service.UpdateApprovalStatus(suite.ctx, models.UpdateApprovalStatusRequest{ApprovalStatus: models.ApprovalApproved, ArticleIDs: []string{}})
	suite.True(models.IsNotFound(err))

	res, err = suite.service.BulkDelete(suite.ctx, models.BulkDeleteRequest{ArticleIDs: ids})
	suite.Require().NoError(err)
	suite.Equal(int64(2), res.Data.Matched)

	_, err = suite.service.BulkDelete(suite.ctx, models.BulkDeleteRequest{ArticleIDs: ids})
	suite.True(models.IsNotFound(err))
}

func (suite *ArticleServiceTestSuite) TestApprovingFeaturedArticlesLeavesOne() {
	featured := func(req *models.CreateArticleRequest) { req.Filters = []string{models.FilterFeatured} }
	a := suite.createArticle("k1", featured)
	b := suite.createArticle("k2", featured)

	_, err := suite.service.UpdateApprovalStatus(suite.ctx, models.UpdateApprovalStatusRequest{
		ApprovalStatus: models.ApprovalApproved,
		ArticleIDs:     []string{a.ID, b.ID},
	})
	suite.Require().NoError(err)
	suite.queue.Wait()

	count := 0
	for _, id := range []string{a.ID, b.ID} {
		if suite.reload(id).IsFeatured() {
			count++
		}
	}
	suite.Equal(1, count)
}

func TestArticleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ArticleServiceTestSuite))
}
