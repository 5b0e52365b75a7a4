package dto

// ── 学期 DTO ──

// CurrentSemesterResponse 当前学期
type CurrentSemesterResponse struct {
	Semester       string `json:"semester"`
	Year           int    `json:"year"`
	IsSpringTerm   bool   `json:"is_spring_term"`
	Studienordnung string `json:"studienordnung"`
}

// NextPossibleRequest 最早可修学期查询
type NextPossibleRequest struct {
	Term  string `form:"term"  binding:"required,oneof=FS HS FS/HS"`
	Start string `form:"start" binding:"required"`
}

// NextPossibleResponse 最早可修学期
type NextPossibleResponse struct {
	Term     string `json:"term"`
	Start    string `json:"start"`
	Semester string `json:"semester"`
	// Offset 距 start 的学期数
	Offset int `json:"offset"`
}

// SemesterRangeRequest 从 start 起连续若干学期
type SemesterRangeRequest struct {
	Start string `form:"start" binding:"required"`
	Count int    `form:"count" binding:"omitempty,min=1,max=20"`
}

// SemesterRangeResponse 学期序列
type SemesterRangeResponse struct {
	Semesters []string `json:"semesters"`
}
