package handlers

import (
	"context"
	"encoding/base64"
	"io"
	"path/filepath"
	"strings"

	"newsroom-cms/helper"
	"newsroom-cms/images"
	"newsroom-cms/models"
	"newsroom-cms/services"

	"github.com/gin-gonic/gin"
)

const (
	profileImageField = "profileImage"
	profileResolution = "profile"
	maxProfileImage   = 5 << 20
)

type StatisticsHandler struct {
	statisticsService services.StatisticsService
	deriver           images.Deriver
	profile           images.Resolution
	Helper            *helper.HTTPHelper
}

func NewStatisticsHandler(statisticsService services.StatisticsService, deriver images.Deriver, profile images.Resolution, httpHelper *helper.HTTPHelper) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService, deriver: deriver, profile: profile, Helper: httpHelper}
}

type savePlayerFunc func(ctx context.Context, key string, record models.PlayerStatistic) (models.Result[*models.Statistics], error)

// UpsertPlayer creates or replaces one player's record.
func (h *StatisticsHandler) UpsertPlayer(c *gin.Context) {
	h.savePlayer(c, h.statisticsService.Upsert)
}

// UpdatePlayer is UpsertPlayer for a key that already has statistics.
func (h *StatisticsHandler) UpdatePlayer(c *gin.Context) {
	h.savePlayer(c, h.statisticsService.UpdatePlayer)
}

func (h *StatisticsHandler) savePlayer(c *gin.Context, save savePlayerFunc) {
	var req models.PlayerStatisticsRequest
	if !h.Helper.BindForm(c, &req) {
		return
	}
	record := req.Record()

	imageURL, err := h.profileImage(c)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}
	if imageURL != "" {
		record.ImageURL = imageURL
	}

	res, err := save(c.Request.Context(), req.Key, record)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}
	h.Helper.SendResponse(c, res.Response())
}

// profileImage resizes an uploaded profileImage and returns its path, or ""
// when the request carries none.
func (h *StatisticsHandler) profileImage(c *gin.Context) (string, error) {
	file, err := c.FormFile(profileImageField)
	if err != nil {
		return "", nil
	}
	if file.Size > maxProfileImage {
		return "", models.NewErrorValidation(models.MsgInvalidData, []map[string]string{{profileImageField: "file is too large"}})
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.Filename), "."))
	if !contains(models.ImageTypes, ext) {
		return "", models.NewErrorValidation(models.MsgInvalidData, []map[string]string{{profileImageField: "unsupported image type"}})
	}

	f, err := file.Open()
	if err != nil {
		return "", models.NewErrorInternalServer(err)
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return "", models.NewErrorInternalServer(err)
	}

	derived, err := h.deriver.DeriveAll(c.Request.Context(), base64.StdEncoding.EncodeToString(raw), ext,
		map[string]images.Resolution{profileResolution: h.profile})
	if err != nil {
		return "", models.NewErrorExternalService("Unable to process image", err)
	}
	return derived[profileResolution], nil
}

func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	res, err := h.statisticsService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}
	h.Helper.SendResponse(c, res.Response())
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
