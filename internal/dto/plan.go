package dto

// ── 学习计划 DTO ──

// PlanTextRequest 以计划文本为输入的请求。
// Text 为空或不是计划链接时使用会话中缓存的计划。
type PlanTextRequest struct {
	Text string `json:"text" binding:"max=8192"`
}

// PlanPayload 结构化的计划（用于编码）
type PlanPayload struct {
	Semesters         []SemesterPayload `json:"semesters"          binding:"max=30,dive"`
	StartSemester     string            `json:"start_semester"`
	ValidationEnabled *bool             `json:"validation_enabled"`
}

// SemesterPayload 计划中的一个学期
type SemesterPayload struct {
	ModuleIDs []string `json:"module_ids" binding:"max=40"`
}

// EncodeRequest 编码请求
type EncodeRequest struct {
	Plan PlanPayload `json:"plan" binding:"required"`
}

// EncodeResponse 编码结果
type EncodeResponse struct {
	Text string `json:"text"`
}

// PlanSemesterResponse 计划中的学期
type PlanSemesterResponse struct {
	Number    int      `json:"number"`
	Name      string   `json:"name,omitempty"`
	ModuleIDs []string `json:"module_ids"`
	ECTS      float64  `json:"ects"`
}

// UnknownModuleResponse 解码时被丢弃的模块 ID
type UnknownModuleResponse struct {
	SemesterNumber int    `json:"semester_number"`
	ModuleID       string `json:"module_id"`
}

// FindingResponse 单个模块的校验结果
type FindingResponse struct {
	ModuleID       string      `json:"module_id"`
	SemesterNumber int         `json:"semester_number"`
	Kind           string      `json:"kind"`
	Severity       string      `json:"severity"`
	Hint           string      `json:"hint"`
	Detail         interface{} `json:"detail"`
}

// PlanResponse 解码结果
type PlanResponse struct {
	// Text 规范文本；Rewritten 为 true 时调用方应更新分享链接
	Text              string                  `json:"text"`
	Rewritten         bool                    `json:"rewritten"`
	LegacyReplaced    bool                    `json:"legacy_replaced"`
	FromSession       bool                    `json:"from_session"`
	StartSemester     string                  `json:"start_semester,omitempty"`
	Studienordnung    string                  `json:"studienordnung"`
	ValidationEnabled bool                    `json:"validation_enabled"`
	Semesters         []PlanSemesterResponse  `json:"semesters"`
	UnknownModules    []UnknownModuleResponse `json:"unknown_modules"`
	Findings          []FindingResponse       `json:"findings"`
}

// ValidateResponse 校验结果
type ValidateResponse struct {
	Text     string            `json:"text"`
	Findings []FindingResponse `json:"findings"`
	// HardCount 严重问题数量
	HardCount int `json:"hard_count"`
	SoftCount int `json:"soft_count"`
}

// ── 学分进度 ──

// CategoryProgress 单个类别的学分进度
type CategoryProgress struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	RequiredECTS float64 `json:"required_ects"`
	EarnedECTS   float64 `json:"earned_ects"`
	PlannedECTS  float64 `json:"planned_ects"`
}

// FocusProgress 单个专业方向的进度
type FocusProgress struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	MissingModules     int      `json:"missing_modules"`
	AvailableModuleIDs []string `json:"available_module_ids"`
}

// ProgressResponse 计划的学分与方向进度
type ProgressResponse struct {
	Text               string             `json:"text"`
	Studienordnung     string             `json:"studienordnung"`
	StartSemester      string             `json:"start_semester,omitempty"`
	CurrentSemester    string             `json:"current_semester"`
	CompletedSemesters int                `json:"completed_semesters"`
	EarnedECTS         float64            `json:"earned_ects"`
	PlannedECTS        float64            `json:"planned_ects"`
	Categories         []CategoryProgress `json:"categories"`
	Focuses            []FocusProgress    `json:"focuses"`
	// NextPossibleSemesters 模块 ID → 最早可修学期（需要入学学期）
	NextPossibleSemesters map[string]string `json:"next_possible_semesters,omitempty"`
}

// ExportRequest 导出请求
type ExportRequest struct {
	Text   string `json:"text"   binding:"max=8192"`
	Format string `form:"format" binding:"omitempty,oneof=xlsx ics"`
}
