// notepad/sources/psql/models/page.go
package models

import (
	"time"
)

type Page struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Title     string    `json:"title" gorm:"type:text;not null"`
	Content   string    `json:"content" gorm:"type:text;not null;default:''"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime;index"`
}

func (Page) TableName() string {
	return "pages"
}

// PageSummary is the list projection of a page; it never carries content.
type PageSummary struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p Page) Summary() PageSummary {
	return PageSummary{ID: p.ID, Title: p.Title, UpdatedAt: p.UpdatedAt}
}
