package models

const (
	StatusActive  = "active"
	StatusDeleted = "deleted"
	// StatusAny disables the implicit active-only scope of a store filter.
	StatusAny = "*"
)

const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

const (
	ArticleTypeNews      = "news"
	ArticleTypeBlog      = "blog"
	ArticleTypePreview   = "preview"
	ArticleTypeReview    = "review"
	ArticleTypeInterview = "interview"
)

// FilterFeatured is the article flag covered by the single-featured rule.
const FilterFeatured = "featured"

var (
	StatusTypes         = []string{StatusActive, StatusDeleted}
	ApprovalStatusTypes = []string{ApprovalPending, ApprovalApproved, ApprovalRejected}
	ArticleTypes        = []string{ArticleTypeNews, ArticleTypeBlog, ArticleTypePreview, ArticleTypeReview, ArticleTypeInterview}
	ArticleFilterTypes  = []string{FilterFeatured, "trending", "editorsPick", "breaking"}
	FeedSourceTypes     = []string{"manual", "rss", "api", "partner"}
	ImageTypes          = []string{"jpeg", "jpg", "png", "gif"}
)
