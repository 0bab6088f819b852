package models

import "time"

// ImagePayload is an uploaded image to derive resolutions from.
type ImagePayload struct {
	Base64    string `json:"base64" validate:"required"`
	Extension string `json:"extension" validate:"omitempty,oneof=jpeg jpg png gif"`
}

type CreateArticleRequest struct {
	Title          string        `json:"title" validate:"required,min=1,max=200"`
	Author         string        `json:"author" validate:"max=100"`
	Source         string        `json:"source" validate:"max=1000"`
	Reference      Reference     `json:"reference"`
	Type           string        `json:"type" validate:"omitempty,oneof=news blog preview review interview"`
	ContentPath    string        `json:"contentPath" validate:"max=1000"`
	Thumbnail      string        `json:"thumbnail" validate:"max=1000"`
	Description    string        `json:"description" validate:"max=5000"`
	MatchID        string        `json:"matchId" validate:"max=100"`
	ApprovalStatus string        `json:"approvalStatus" validate:"omitempty,oneof=pending approved rejected"`
	Filters        []string      `json:"filters" validate:"omitempty,dive,oneof=featured trending editorsPick breaking"`
	Status         string        `json:"status" validate:"omitempty,oneof=active deleted"`
	IsHighlight    bool          `json:"isHighlight"`
	IsDraft        bool          `json:"isDraft"`
	Content        string        `json:"content"`
	ImageData      *ImagePayload `json:"imageData"`
	PublishedAt    *time.Time    `json:"publishedAt"`
	Timezone       string        `json:"timezone"`
	TagList        []string      `json:"tagList" validate:"omitempty,dive,required"`
	SeoRoute       string        `json:"seoRoute"`
	SeoTags        string        `json:"seoTags"`
	SeoDescription string        `json:"seoDescription"`
	SeoKeywords    string        `json:"seoKeywords"`
}

// UpdateArticleRequest carries only the fields a client sent. A nil slice
// means "not supplied"; an empty one clears the field.
type UpdateArticleRequest struct {
	Title          *string       `json:"title" validate:"omitempty,min=1,max=200"`
	Author         *string       `json:"author" validate:"omitempty,max=100"`
	Source         *string       `json:"source" validate:"omitempty,max=1000"`
	Type           *string       `json:"type" validate:"omitempty,oneof=news blog preview review interview"`
	Thumbnail      *string       `json:"thumbnail" validate:"omitempty,max=1000"`
	Description    *string       `json:"description" validate:"omitempty,max=5000"`
	MatchID        *string       `json:"matchId" validate:"omitempty,max=100"`
	ApprovalStatus *string       `json:"approvalStatus" validate:"omitempty,oneof=pending approved rejected"`
	Filters        []string      `json:"filters" validate:"omitempty,dive,oneof=featured trending editorsPick breaking"`
	IsHighlight    *bool         `json:"isHighlight"`
	IsDraft        *bool         `json:"isDraft"`
	Content        *string       `json:"content"`
	ImageData      *ImagePayload `json:"imageData"`
	PublishedAt    *time.Time    `json:"publishedAt"`
	Timezone       *string       `json:"timezone"`
	TagList        []string      `json:"tagList" validate:"omitempty,dive,required"`
	SeoRoute       *string       `json:"seoRoute"`
	SeoTags        *string       `json:"seoTags"`
	SeoDescription *string       `json:"seoDescription"`
	SeoKeywords    *string       `json:"seoKeywords"`
}

type UpdateApprovalStatusRequest struct {
	ApprovalStatus string   `json:"approvalStatus" validate:"required,oneof=pending approved rejected"`
	ArticleIDs     []string `json:"articleIds" validate:"required,dive,uuid4"`
}

type BulkDeleteRequest struct {
	ArticleIDs []string `json:"articleIds" validate:"required,dive,uuid4"`
}

// ListQuery is the pagination contract shared by every list endpoint.
type ListQuery struct {
	Limit  *int     `form:"limit" validate:"omitempty,min=0"`
	Skip   *int     `form:"skip" validate:"omitempty,min=0"`
	SortBy []string `form:"sortBy"`
}

type ArticleListQuery struct {
	ListQuery
	Filters        []string `form:"filters" validate:"omitempty,dive,oneof=featured trending editorsPick breaking"`
	ApprovalStatus []string `form:"approvalStatus" validate:"omitempty,dive,oneof=pending approved rejected"`
	Types          []string `form:"types" validate:"omitempty,dive,oneof=news blog preview review interview"`
	IsDraft        bool     `form:"isDraft"`
}

type CreateTagRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type SearchTagQuery struct {
	Name string `form:"name"`
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// PlayerStatisticsRequest upserts one player record under an article key.
type PlayerStatisticsRequest struct {
	Key           string `json:"key" form:"key" validate:"required"`
	Name          string `json:"name" form:"name" validate:"required,max=100"`
	Rank          string `json:"rank" form:"rank"`
	StrikeRate    string `json:"strikeRate" form:"strikeRate"`
	MatchesPlayed int    `json:"matchesPlayed" form:"matchesPlayed"`
	RunsScored    int    `json:"runsScored" form:"runsScored"`
	ImageURL      string `json:"imageUrl" form:"imageUrl"`
}

func (r PlayerStatisticsRequest) Record() PlayerStatistic {
	return PlayerStatistic{
		Name:          r.Name,
		Rank:          r.Rank,
		StrikeRate:    r.StrikeRate,
		MatchesPlayed: r.MatchesPlayed,
		RunsScored:    r.RunsScored,
		ImageURL:      r.ImageURL,
	}
}
