package helper

import (
	"errors"
	"net/http"
	"testing"

	"newsroom-cms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnderscore(t *testing.T) {
	cases := map[string]string{
		"createdAt":   "created_at",
		"Title":       "title",
		"articleIds":  "article_ids",
		"publishedAt": "published_at",
		"name":        "name",
	}
	for in, want := range cases {
		assert.Equal(t, want, Underscore(in), in)
	}
}

func TestParseSortBy(t *testing.T) {
	fields, err := ParseSortBy([]string{"-createdAt,title", "name"})
	require.NoError(t, err)
	assert.Equal(t, []SortField{
		{Column: "created_at", Desc: true},
		{Column: "title"},
		{Column: "name"},
	}, fields)

	_, err = ParseSortBy([]string{"password"})
	assert.Error(t, err)
}

func TestGetStatusCode(t *testing.T) {
	h := NewHTTPHelper()

	assert.Equal(t, http.StatusOK, h.GetStatusCode(nil))
	assert.Equal(t, http.StatusNotFound, h.GetStatusCode(models.NewErrorNotFound("id")))
	assert.Equal(t, http.StatusConflict, h.GetStatusCode(models.NewErrorConflict("", "", "", nil)))
	assert.Equal(t, http.StatusUnprocessableEntity, h.GetStatusCode(models.NewErrorExternalService("x", errors.New("y"))))
	assert.Equal(t, http.StatusInternalServerError, h.GetStatusCode(errors.New("plain")))
}

func TestValidateStructKeysByJSONName(t *testing.T) {
	h := NewHTTPHelper()

	err := h.ValidateStruct(models.BulkDeleteRequest{ArticleIDs: []string{"not-a-uuid"}})
	require.Error(t, err)

	var validation models.ErrorValidation
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, http.StatusBadRequest, validation.Status)
	require.Len(t, validation.Data, 1)
	for key := range validation.Data[0] {
		assert.Contains(t, key, "article_ids")
	}

	assert.NoError(t, h.ValidateStruct(models.CreateTagRequest{Name: "golang"}))
}
