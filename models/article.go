package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Reference is the upstream origin of an article. It is unique among
// active articles.
type Reference struct {
	FeedSource string `json:"feedSource" gorm:"column:feed_source;type:varchar(32);uniqueIndex:idx_articles_reference,where:status = 'active'" validate:"required,oneof=manual rss api partner"`
	Key        string `json:"key" gorm:"column:key;type:varchar(255);uniqueIndex:idx_articles_reference,where:status = 'active'" validate:"required"`
}

// TagRef is the denormalized copy of a tag kept on an article.
type TagRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ImageSet maps a resolution name to a derived image path.
type ImageSet map[string]string

type Article struct {
	Base
	Title          string                       `json:"title" gorm:"not null"`
	Author         string                       `json:"author,omitempty"`
	Source         string                       `json:"source,omitempty"`
	Reference      Reference                    `json:"reference" gorm:"embedded;embeddedPrefix:reference_"`
	Type           string                       `json:"type" gorm:"type:varchar(32);not null;default:'news';index"`
	ContentPath    string                       `json:"contentPath,omitempty"`
	Thumbnail      string                       `json:"thumbnail,omitempty"`
	Description    string                       `json:"description,omitempty" gorm:"type:text"`
	MatchID        string                       `json:"matchId,omitempty" gorm:"index"`
	ApprovalStatus string                       `json:"approvalStatus" gorm:"type:varchar(16);not null;default:'pending'"`
	Filters        datatypes.JSONMap            `json:"filters"`
	IsHighlight    bool                         `json:"isHighlight"`
	IsDraft        bool                         `json:"isDraft"`
	ImageData      datatypes.JSONType[ImageSet] `json:"imageData"`
	PublishedAt    *time.Time                   `json:"publishedAt,omitempty"`
	Timezone       string                       `json:"timezone,omitempty"`
	Tags           datatypes.JSONSlice[TagRef]  `json:"tags"`
	SeoRoute       string                       `json:"seoRoute,omitempty"`
	SeoTags        string                       `json:"seoTags,omitempty"`
	SeoDescription string                       `json:"seoDescription,omitempty"`
	SeoKeywords    string                       `json:"seoKeywords,omitempty"`
}

func (a *Article) BeforeCreate(tx *gorm.DB) error {
	a.ensureDefaults()
	if a.Type == "" {
		a.Type = ArticleTypeNews
	}
	if a.ApprovalStatus == "" {
		a.ApprovalStatus = ApprovalPending
	}
	if a.Filters == nil {
		a.Filters = datatypes.JSONMap{}
	}
	return nil
}

// IsFeatured reports whether the featured flag is set.
func (a Article) IsFeatured() bool {
	v, ok := a.Filters[FilterFeatured].(bool)
	return ok && v
}

// Images returns the derived image paths, never nil.
func (a Article) Images() ImageSet {
	images := a.ImageData.Data()
	if images == nil {
		return ImageSet{}
	}
	return images
}

// RelatedArticle is the lightweight projection returned alongside an article.
type RelatedArticle struct {
	ID          string    `json:"id"`
	Description string    `json:"description,omitempty"`
	ImageData   ImageSet  `json:"imageData,omitempty"`
	Reference   Reference `json:"reference"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ArticleDetail is an article joined with its content, related articles and
// player statistics.
type ArticleDetail struct {
	Article
	Content          string           `json:"content"`
	RelatedArticles  []RelatedArticle `json:"relatedArticles"`
	PlayerStatistics *Statistics      `json:"player_statistics,omitempty"`
}
