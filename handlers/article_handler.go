package handlers

import (
	"newsroom-cms/helper"
	"newsroom-cms/models"
	"newsroom-cms/services"

	"github.com/gin-gonic/gin"
)

type ArticleHandler struct {
	articleService services.ArticleService
	Helper         *helper.HTTPHelper
}

func NewArticleHandler(articleService services.ArticleService, httpHelper *helper.HTTPHelper) *ArticleHandler {
	return &ArticleHandler{articleService: articleService, Helper: httpHelper}
}

func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	var req models.CreateArticleRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	res, err := h.articleService.Create(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}
	h.Helper.SendResponse(c, res.Response())
}

func (h *ArticleHandler) GetArticles(c *gin.Context) {
	var query models.ArticleListQuery
	if !h.Helper.BindQuery(c, &query) {
		return
	}

	res, err := h.articleService.List(c.Request.Context(), query)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}
	h.Helper.SendResponse(c, res.Response())
}

func (h *ArticleHandler) GetArticle(c *gin.Context) {
	res, err := h.articleService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}
	h.Helper.SendResponse(c, res.Response())
}

func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	var req models.UpdateArticleRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	res, err := h.articleService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}
	h.Helper.SendResponse(c, res.Response())
}

func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	res, err := h.articleService.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}
	h.Helper.SendResponse(c, res.Response())
}

func (h *ArticleHandler) UpdateApprovalStatus(c *gin.Context) {
	var req models.UpdateApprovalStatusRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	res, err := h.articleService.UpdateApprovalStatus(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}
	h.Helper.SendResponse(c, res.Response())
}

func (h *ArticleHandler) BulkDelete(c *gin.Context) {
	var req models.BulkDeleteRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	res, err := h.articleService.BulkDelete(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}
	h.Helper.SendResponse(c, res.Response())
}
