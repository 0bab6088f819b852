package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Tag keeps a back-reference list of the articles naming it.
type Tag struct {
	Base
	Name     string                      `json:"name" gorm:"not null;index"`
	Articles datatypes.JSONSlice[string] `json:"articles"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	t.ensureDefaults()
	if t.Articles == nil {
		t.Articles = datatypes.JSONSlice[string]{}
	}
	return nil
}

// HasArticle reports whether id is in the back-reference list.
func (t Tag) HasArticle(id string) bool {
	for _, articleID := range t.Articles {
		if articleID == id {
			return true
		}
	}
	return false
}
