package dto

// ── 模块目录 DTO ──

// ModuleListRequest 模块列表查询参数
type ModuleListRequest struct {
	Keyword         string `form:"keyword"          binding:"max=100"`
	Term            string `form:"term"             binding:"omitempty,oneof=FS HS FS/HS"`
	IncludeInactive bool   `form:"include_inactive"`
	// Start 入学学期，设置后返回每个模块的最早可修学期
	Start string `form:"start"`
}

// ModuleResponse 模块信息
type ModuleResponse struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	URL                  string   `json:"url,omitempty"`
	ECTS                 float64  `json:"ects"`
	Term                 string   `json:"term"`
	IsDeactivated        bool     `json:"is_deactivated"`
	SuccessorModuleID    string   `json:"successor_module_id,omitempty"`
	PredecessorModuleID  string   `json:"predecessor_module_id,omitempty"`
	RecommendedModuleIDs []string `json:"recommended_module_ids"`
	NextPossibleSemester string   `json:"next_possible_semester,omitempty"`
}

// StudienordnungRequest 按学习规章查询
type StudienordnungRequest struct {
	Studienordnung string `form:"studienordnung" binding:"omitempty,oneof=21 23"`
}

// CategoryResponse 学分类别
type CategoryResponse struct {
	ID             string   `json:"id"`
	Studienordnung string   `json:"studienordnung"`
	Name           string   `json:"name"`
	RequiredECTS   float64  `json:"required_ects"`
	ModuleIDs      []string `json:"module_ids"`
}

// FocusResponse 专业方向
type FocusResponse struct {
	ID             string   `json:"id"`
	Studienordnung string   `json:"studienordnung"`
	Name           string   `json:"name"`
	ModuleIDs      []string `json:"module_ids"`
}

// SyncRequest 目录同步请求
type SyncRequest struct {
	Studienordnung string `json:"studienordnung" binding:"omitempty,oneof=21 23"`
}

// SyncResponse 目录同步结果
type SyncResponse struct {
	Source         string `json:"source"`
	Studienordnung string `json:"studienordnung"`
	Modules        int    `json:"modules"`
	Categories     int    `json:"categories"`
	Focuses        int    `json:"focuses"`
	SyncedAt       string `json:"synced_at"`
}
