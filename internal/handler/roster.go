// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/lunzhi/lunzhi/internal/config"
	"github.com/lunzhi/lunzhi/internal/metrics"
	"github.com/lunzhi/lunzhi/pkg/errors"
	"github.com/lunzhi/lunzhi/pkg/model"
	"github.com/lunzhi/lunzhi/pkg/roster"
	"github.com/lunzhi/lunzhi/pkg/stats"
	"github.com/lunzhi/lunzhi/pkg/validator"
)

// RosterHandler 轮值处理器
type RosterHandler struct {
	cfg *config.RosterConfig
}

// NewRosterHandler 创建轮值处理器
func NewRosterHandler(cfg *config.RosterConfig) *RosterHandler {
	return &RosterHandler{cfg: cfg}
}

// ParticipantInput 参与者输入
type ParticipantInput struct {
	Name            string   `json:"name"`
	BlockedWeekdays []int    `json:"blocked_weekdays,omitempty"` // 0=周日 .. 6=周六
	BlockedDates    []string `json:"blocked_dates,omitempty"`    // YYYY-MM-DD
}

// GenerateRequest 轮值生成请求
type GenerateRequest struct {
	Year          int                `json:"year"`
	Month         int                `json:"month"`
	Participants  []ParticipantInput `json:"participants"`
	ReducedLoad   []string           `json:"reduced_load,omitempty"`
	ExcludedDates []string           `json:"excluded_dates,omitempty"`
	Seed          int64              `json:"seed,omitempty"` // 0 表示非确定性运行
}

// DayOutput 单日分配输出
type DayOutput struct {
	Date        string `json:"date"`
	Weekday     string `json:"weekday"`
	Week        int    `json:"week"`
	Participant string `json:"participant,omitempty"`
	Tier        string `json:"tier,omitempty"`
	Assigned    bool   `json:"assigned"`
}

// WarningOutput 告警输出
type WarningOutput struct {
	Date    string                     `json:"date"`
	Weekday string                     `json:"weekday"`
	Blocked []model.BlockedParticipant `json:"blocked"`
}

// GenerateResponse 轮值生成响应
type GenerateResponse struct {
	Success      bool                 `json:"success"`
	Schedule     []DayOutput          `json:"schedule"` // 按日期升序
	Assignments  map[string][]string  `json:"assignments"`
	Quotas       map[string]int       `json:"quotas"`
	Unassignable []string             `json:"unassignable,omitempty"`
	Warnings     []WarningOutput      `json:"warnings,omitempty"`
	Statistics   *roster.Statistics   `json:"statistics"`
	Balance      *stats.BalanceMetrics `json:"balance"`
	Duration     string               `json:"duration"`
}

// Generate 生成月度轮值表
func (h *RosterHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "请求体解析失败"))
		return
	}

	engineReq, err := toEngineRequest(&req)
	if err != nil {
		respondError(w, err)
		return
	}

	engine := roster.NewEngine(h.newRand(req.Seed))
	result, err := engine.Generate(r.Context(), engineReq)
	if err != nil {
		metrics.RecordRosterGeneration(false, 0, nil, 0)
		respondError(w, err)
		return
	}

	metrics.RecordRosterGeneration(true, result.Statistics.UnassignableDays, result.Statistics.TierUsage, result.Duration)

	respondJSON(w, http.StatusOK, buildGenerateResponse(result))
}

// QuotasRequest 配额预览请求
type QuotasRequest struct {
	Year          int      `json:"year"`
	Month         int      `json:"month"`
	Participants  []string `json:"participants"`
	ReducedLoad   []string `json:"reduced_load,omitempty"`
	ExcludedDates []string `json:"excluded_dates,omitempty"`
	Seed          int64    `json:"seed,omitempty"`
}

// QuotasResponse 配额预览响应
type QuotasResponse struct {
	TotalDays int            `json:"total_days"`
	Quotas    map[string]int `json:"quotas"`
}

// Quotas 预览目标配额（供审计展示，不执行分配）
func (h *RosterHandler) Quotas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req QuotasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "请求体解析失败"))
		return
	}

	excluded := make(map[string]bool, len(req.ExcludedDates))
	for _, d := range req.ExcludedDates {
		excluded[d] = true
	}

	days := roster.ExpandMonth(req.Year, time.Month(req.Month), excluded)
	if len(days) == 0 {
		respondError(w, errors.ErrNoShiftDays)
		return
	}

	quotas, err := roster.ComputeQuotas(len(days), req.Participants, req.ReducedLoad, h.newRand(req.Seed))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &QuotasResponse{
		TotalDays: len(days),
		Quotas:    quotas,
	})
}

// ValidateRequest 轮值表校验请求
type ValidateRequest struct {
	Participants []ParticipantInput  `json:"participants"`
	Assignments  map[string][]string `json:"assignments"` // 参与者 -> 日期列表
}

// ValidateResponse 轮值表校验响应
type ValidateResponse struct {
	Valid     bool                 `json:"valid"` // 无硬约束违反
	Errors    int                  `json:"errors"`
	Conflicts []validator.Conflict `json:"conflicts,omitempty"`
}

// Validate 校验已有轮值表
func (h *RosterHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "请求体解析失败"))
		return
	}

	participants, err := toParticipants(req.Participants)
	if err != nil {
		respondError(w, err)
		return
	}

	assignments := make(map[string][]model.ShiftDay, len(req.Assignments))
	for name, dates := range req.Assignments {
		for _, d := range dates {
			t, err := model.ParseDate(d)
			if err != nil {
				respondError(w, errors.InvalidInput("assignments", "日期格式无效: "+d))
				return
			}
			assignments[name] = append(assignments[name], model.NewShiftDay(t))
		}
	}

	conflicts := validator.New().Validate(participants, assignments)
	errCount := validator.CountErrors(conflicts)

	respondJSON(w, http.StatusOK, &ValidateResponse{
		Valid:     errCount == 0,
		Errors:    errCount,
		Conflicts: conflicts,
	})
}

// seedFor 决定实际使用的种子：显式种子优先，其次配置默认种子，否则时间种子
func (h *RosterHandler) seedFor(seed int64) int64 {
	if seed == 0 && h.cfg != nil {
		seed = h.cfg.DefaultSeed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return seed
}

// newRand 创建随机源
func (h *RosterHandler) newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(h.seedFor(seed)))
}

// toEngineRequest 将请求DTO转换为引擎请求
func toEngineRequest(req *GenerateRequest) (*roster.Request, error) {
	participants, err := toParticipants(req.Participants)
	if err != nil {
		return nil, err
	}

	return &roster.Request{
		Year:          req.Year,
		Month:         time.Month(req.Month),
		Participants:  participants,
		ReducedLoad:   req.ReducedLoad,
		ExcludedDates: req.ExcludedDates,
	}, nil
}

// toParticipants 转换参与者输入
func toParticipants(inputs []ParticipantInput) ([]model.Participant, error) {
	participants := make([]model.Participant, 0, len(inputs))
	for _, in := range inputs {
		weekdays := make([]time.Weekday, 0, len(in.BlockedWeekdays))
		for _, w := range in.BlockedWeekdays {
			if w < 0 || w > 6 {
				return nil, errors.ConstraintParse(in.Name, "工作日索引超出 0-6 范围")
			}
			weekdays = append(weekdays, time.Weekday(w))
		}
		participants = append(participants, model.Participant{
			Name: in.Name,
			Constraint: model.Constraint{
				BlockedWeekdays: weekdays,
				BlockedDates:    in.BlockedDates,
			},
		})
	}
	return participants, nil
}

// buildGenerateResponse 构造生成响应
func buildGenerateResponse(result *roster.Result) *GenerateResponse {
	resp := &GenerateResponse{
		Success:     true,
		Schedule:    make([]DayOutput, 0, len(result.Outcomes)),
		Assignments: make(map[string][]string, len(result.Assignments)),
		Quotas:      result.Quotas,
		Statistics:  result.Statistics,
		Duration:    result.Duration.String(),
	}

	for _, o := range result.Outcomes {
		resp.Schedule = append(resp.Schedule, DayOutput{
			Date:        o.Day.Date,
			Weekday:     o.Day.Weekday.String(),
			Week:        o.Day.ISOWeek,
			Participant: o.Participant,
			Tier:        o.Tier,
			Assigned:    o.Kind == model.OutcomeAssigned,
		})
	}

	counts := make(map[string]int, len(result.Assignments))
	for name, days := range result.Assignments {
		dates := make([]string, len(days))
		for i, d := range days {
			dates[i] = d.Date
		}
		resp.Assignments[name] = dates
		counts[name] = len(days)
	}
	// 配额中存在但一次都未被分配的参与者也计入均衡分析
	for name := range result.Quotas {
		if _, ok := counts[name]; !ok {
			counts[name] = 0
		}
	}

	for _, d := range result.Unassignable {
		resp.Unassignable = append(resp.Unassignable, d.Date)
	}

	for _, warning := range result.Warnings {
		resp.Warnings = append(resp.Warnings, WarningOutput{
			Date:    warning.Day.Date,
			Weekday: warning.Day.Weekday.String(),
			Blocked: warning.Blocked,
		})
	}

	resp.Balance = stats.NewBalanceAnalyzer().Analyze(counts, result.Quotas)

	return resp
}

// respondJSON 输出JSON响应
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError 输出错误响应
func respondError(w http.ResponseWriter, err error) {
	status := errors.GetHTTPStatus(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   err.Error(),
		"code":    errors.GetCode(err),
	})
}
