package model

import "lost-university/backend/pkg/semester"

// Module 模块目录表，对应 modules
// 数据由外部目录仓库提供，本服务只读使用。
type Module struct {
	ModuleID             string        `gorm:"type:varchar(50);primaryKey"           json:"id"`
	Name                 string        `gorm:"type:varchar(200);not null"            json:"name"`
	URL                  string        `gorm:"type:varchar(500)"                     json:"url,omitempty"`
	ECTS                 float64       `gorm:"type:numeric(4,1);not null"            json:"ects"`
	Term                 semester.Term `gorm:"type:varchar(10);not null;default:'FS/HS'" json:"term"`
	IsDeactivated        bool          `gorm:"not null;default:false"                json:"is_deactivated"`
	SuccessorModuleID    *string       `gorm:"type:varchar(50)"                      json:"successor_module_id,omitempty"`
	PredecessorModuleID  *string       `gorm:"type:varchar(50);index"                json:"predecessor_module_id,omitempty"`
	RecommendedModuleIDs StringArray   `gorm:"type:text[]"                           json:"recommended_module_ids,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Module) TableName() string { return "modules" }

// Successor 后继模块 ID，未设置时返回空串
func (m *Module) Successor() string {
	if m.SuccessorModuleID == nil {
		return ""
	}
	return *m.SuccessorModuleID
}

// Predecessor 前驱模块 ID，未设置时返回空串
func (m *Module) Predecessor() string {
	if m.PredecessorModuleID == nil {
		return ""
	}
	return *m.PredecessorModuleID
}
