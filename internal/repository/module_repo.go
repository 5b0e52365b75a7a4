package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lost-university/backend/internal/model"
)

// ModuleFilter 模块列表查询条件
type ModuleFilter struct {
	// Keyword 按 ID 或名称模糊匹配
	Keyword         string
	Term            string
	IncludeInactive bool
}

// ModuleRepository 模块目录数据访问接口
type ModuleRepository interface {
	GetByID(ctx context.Context, id string) (*model.Module, error)
	List(ctx context.Context, filter ModuleFilter) ([]model.Module, error)
	ListAll(ctx context.Context) ([]model.Module, error)
	// ReplaceAll 在一个事务内写入完整目录：更新或插入 modules，并删除目录中已不存在的模块
	ReplaceAll(ctx context.Context, modules []model.Module, syncedBy string) error
}

type moduleRepo struct {
	db *gorm.DB
}

// NewModuleRepo 创建 ModuleRepository 实例
func NewModuleRepo(db *gorm.DB) ModuleRepository {
	return &moduleRepo{db: db}
}

func (r *moduleRepo) GetByID(ctx context.Context, id string) (*model.Module, error) {
	var m model.Module
	err := r.db.WithContext(ctx).
		Where("module_id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *moduleRepo) List(ctx context.Context, filter ModuleFilter) ([]model.Module, error) {
	var modules []model.Module
	db := r.db.WithContext(ctx)

	if !filter.IncludeInactive {
		db = db.Where("is_deactivated = ?", false)
	}
	if filter.Term != "" {
		db = db.Where("term = ?", filter.Term)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		db = db.Where("module_id ILIKE ? OR name ILIKE ?", like, like)
	}

	err := db.Order("module_id ASC").Find(&modules).Error
	return modules, err
}

func (r *moduleRepo) ListAll(ctx context.Context) ([]model.Module, error) {
	var modules []model.Module
	err := r.db.WithContext(ctx).Order("module_id ASC").Find(&modules).Error
	return modules, err
}

func (r *moduleRepo) ReplaceAll(ctx context.Context, modules []model.Module, syncedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]string, 0, len(modules))
		for i := range modules {
			modules[i].SyncedBy = &syncedBy
			ids = append(ids, modules[i].ModuleID)
		}

		if len(modules) > 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "module_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"name", "url", "ects", "term", "is_deactivated",
					"successor_module_id", "predecessor_module_id", "recommended_module_ids",
					"updated_at", "synced_by",
				}),
			}).CreateInBatches(modules, 200).Error
			if err != nil {
				return err
			}
		}

		del := tx.Model(&model.Module{})
		if len(ids) > 0 {
			del = del.Where("module_id NOT IN ?", ids)
		} else {
			del = del.Where("1 = 1")
		}
		return del.Delete(&model.Module{}).Error
	})
}
