package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Module   ModuleRepository
	Category CategoryRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Module:   NewModuleRepo(db),
		Category: NewCategoryRepo(db),
	}
}
