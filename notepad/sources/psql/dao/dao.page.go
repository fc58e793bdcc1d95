// notepad/sources/psql/dao/dao.page.go
package dao

import (
	"context"
	"errors"
	"time"

	"notepad/notepad/sources/psql/models"

	"gorm.io/gorm"
)

var ErrPageNotFound = errors.New("page not found")

// PageStore is everything the request layer needs from storage.
type PageStore interface {
	ListSummaries(ctx context.Context) ([]models.PageSummary, error)
	// GetByID returns nil, nil when no row matches.
	GetByID(ctx context.Context, id uint) (*models.Page, error)
	// Save inserts a page with a zero ID and updates one otherwise. The page is
	// re-read from the store afterwards.
	Save(ctx context.Context, page *models.Page) error
	DeleteByID(ctx context.Context, id uint) (bool, error)
}

type PageDAO struct {
	DB *gorm.DB
}

var _ PageStore = (*PageDAO)(nil)

func NewPageDAO(db *gorm.DB) *PageDAO {
	return &PageDAO{DB: db}
}

func (dao *PageDAO) ListSummaries(ctx context.Context) ([]models.PageSummary, error) {
	summaries := []models.PageSummary{}
	err := dao.DB.WithContext(ctx).
		Model(&models.Page{}).
		Select("id", "title", "updated_at").
		Order("updated_at desc").
		Order("id desc").
		Find(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func (dao *PageDAO) GetByID(ctx context.Context, id uint) (*models.Page, error) {
	var page models.Page
	err := dao.DB.WithContext(ctx).First(&page, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (dao *PageDAO) Save(ctx context.Context, page *models.Page) error {
	db := dao.DB.WithContext(ctx)
	if page.ID == 0 {
		if err := db.Create(page).Error; err != nil {
			return err
		}
	} else {
		res := db.Model(&models.Page{}).Where("id = ?", page.ID).Updates(map[string]interface{}{
			"title":      page.Title,
			"content":    page.Content,
			"updated_at": time.Now(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPageNotFound
		}
	}

	err := db.First(page, page.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// deleted between the write and the re-read
		return ErrPageNotFound
	}
	return err
}

func (dao *PageDAO) DeleteByID(ctx context.Context, id uint) (bool, error) {
	res := dao.DB.WithContext(ctx).Delete(&models.Page{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
