package repository

import (
	"context"

	"gorm.io/gorm"

	"lost-university/backend/internal/model"
)

// CategoryRepository 学分类别与专业方向数据访问接口（按学习规章区分）
type CategoryRepository interface {
	ListCategories(ctx context.Context, studienordnung string) ([]model.Category, error)
	ListFocuses(ctx context.Context, studienordnung string) ([]model.Focus, error)
	// ReplaceForStudienordnung 在一个事务内替换某学习规章下的全部类别与方向
	ReplaceForStudienordnung(ctx context.Context, studienordnung string, categories []model.Category, focuses []model.Focus, syncedBy string) error
}

type categoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepo 创建 CategoryRepository 实例
func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) ListCategories(ctx context.Context, studienordnung string) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).
		Where("studienordnung = ?", studienordnung).
		Order("category_id ASC").
		Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) ListFocuses(ctx context.Context, studienordnung string) ([]model.Focus, error) {
	var focuses []model.Focus
	err := r.db.WithContext(ctx).
		Where("studienordnung = ?", studienordnung).
		Order("focus_id ASC").
		Find(&focuses).Error
	return focuses, err
}

func (r *categoryRepo) ReplaceForStudienordnung(ctx context.Context, studienordnung string, categories []model.Category, focuses []model.Focus, syncedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("studienordnung = ?", studienordnung).Delete(&model.Category{}).Error; err != nil {
			return err
		}
		if err := tx.Where("studienordnung = ?", studienordnung).Delete(&model.Focus{}).Error; err != nil {
			return err
		}

		for i := range categories {
			categories[i].Studienordnung = studienordnung
			categories[i].SyncedBy = &syncedBy
		}
		for i := range focuses {
			focuses[i].Studienordnung = studienordnung
			focuses[i].SyncedBy = &syncedBy
		}

		if len(categories) > 0 {
			if err := tx.Create(&categories).Error; err != nil {
				return err
			}
		}
		if len(focuses) > 0 {
			if err := tx.Create(&focuses).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
