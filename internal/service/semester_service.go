package service

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"lost-university/backend/internal/dto"
	"lost-university/backend/pkg/semester"
)

// ── 学期模块业务错误 ──

var (
	ErrInvalidSemester = errors.New("学期格式无效，应为 FSyy 或 HSyy")
	ErrInvalidTerm     = errors.New("开课学期无效，应为 FS、HS 或 FS/HS")
)

// Clock 当前时间来源，测试中可替换
type Clock func() time.Time

// SemesterService 学期业务接口
type SemesterService interface {
	Current() *dto.CurrentSemesterResponse
	NextPossible(req *dto.NextPossibleRequest) (*dto.NextPossibleResponse, error)
	Range(req *dto.SemesterRangeRequest) (*dto.SemesterRangeResponse, error)
}

type semesterService struct {
	clock     Clock
	defaultSO string
	logger    *zap.Logger
}

// NewSemesterService 创建 SemesterService 实例；clock 为 nil 时使用 time.Now
func NewSemesterService(clock Clock, defaultSO string, logger *zap.Logger) SemesterService {
	if clock == nil {
		clock = time.Now
	}
	return &semesterService{clock: clock, defaultSO: defaultSO, logger: logger}
}

// ────────────────────── Current ──────────────────────

func (s *semesterService) Current() *dto.CurrentSemesterResponse {
	now := semester.At(s.clock())
	return &dto.CurrentSemesterResponse{
		Semester:       now.String(),
		Year:           now.Year,
		IsSpringTerm:   now.IsSpringTerm,
		Studienordnung: semester.Studienordnung(&now, s.defaultSO),
	}
}

// ────────────────────── NextPossible ──────────────────────

func (s *semesterService) NextPossible(req *dto.NextPossibleRequest) (*dto.NextPossibleResponse, error) {
	term := semester.Term(req.Term)
	if !term.Valid() {
		return nil, ErrInvalidTerm
	}
	start, ok := semester.Parse(req.Start)
	if !ok {
		return nil, ErrInvalidSemester
	}

	next := semester.NextPossibleSemesterForModule(term, &start)
	return &dto.NextPossibleResponse{
		Term:     req.Term,
		Start:    start.String(),
		Semester: next.String(),
		Offset:   next.Difference(start),
	}, nil
}

// ────────────────────── Range ──────────────────────

// Range 从 start 起连续 count 个学期的名称（默认 6 个）
func (s *semesterService) Range(req *dto.SemesterRangeRequest) (*dto.SemesterRangeResponse, error) {
	start, ok := semester.Parse(req.Start)
	if !ok {
		return nil, ErrInvalidSemester
	}
	count := req.Count
	if count <= 0 {
		count = 6
	}

	names := make([]string, 0, count)
	for i := 0; i < count; i++ {
		next := start.Plus(i)
		if !next.Valid() {
			break
		}
		names = append(names, next.String())
	}
	return &dto.SemesterRangeResponse{Semesters: names}, nil
}
