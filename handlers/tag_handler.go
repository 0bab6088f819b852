package handlers

import (
	"newsroom-cms/helper"
	"newsroom-cms/models"
	"newsroom-cms/services"

	"github.com/gin-gonic/gin"
)

type TagHandler struct {
	tagService services.TagService
	Helper     *helper.HTTPHelper
}

func NewTagHandler(tagService services.TagService, httpHelper *helper.HTTPHelper) *TagHandler {
	return &TagHandler{tagService: tagService, Helper: httpHelper}
}

func (h *TagHandler) CreateTag(c *gin.Context) {
	var req models.CreateTagRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	res, err := h.tagService.Create(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}
	h.Helper.SendResponse(c, res.Response())
}

func (h *TagHandler) GetTags(c *gin.Context) {
	var query models.ListQuery
	if !h.Helper.BindQuery(c, &query) {
		return
	}

	res, err := h.tagService.List(c.Request.Context(), query)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}
	h.Helper.SendResponse(c, res.Response())
}

func (h *TagHandler) SearchByName(c *gin.Context) {
	var query struct {
		models.ListQuery
		models.SearchTagQuery
	}
	if !h.Helper.BindQuery(c, &query) {
		return
	}

	res, err := h.tagService.SearchByName(c.Request.Context(), query.ListQuery, query.Name)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}
	h.Helper.SendResponse(c, res.Response())
}

func (h *TagHandler) GetTag(c *gin.Context) {
	res, err := h.tagService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}
	h.Helper.SendResponse(c, res.Response())
}
