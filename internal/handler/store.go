// Package handler 提供HTTP请求处理器
package handler

import (
	"database/sql"
	"encoding/json"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/lunzhi/lunzhi/internal/database"
	"github.com/lunzhi/lunzhi/internal/repository"
	"github.com/lunzhi/lunzhi/pkg/errors"
	"github.com/lunzhi/lunzhi/pkg/model"
	"github.com/lunzhi/lunzhi/pkg/roster"
)

// StoreHandler 持久化处理器
// 维护参与者配置并保存生成的轮值表
type StoreHandler struct {
	db           *database.DB
	roster       *RosterHandler
	participants *repository.ParticipantRepository
	schedules    *repository.ScheduleRepository
}

// NewStoreHandler 创建持久化处理器
func NewStoreHandler(db *database.DB, rosterHandler *RosterHandler) *StoreHandler {
	return &StoreHandler{
		db:           db,
		roster:       rosterHandler,
		participants: repository.NewParticipantRepository(db),
		schedules:    repository.NewScheduleRepository(db),
	}
}

// Participants 参与者配置的读取与创建
func (h *StoreHandler) Participants(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		records, err := h.participants.List(r.Context())
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询参与者失败"))
			return
		}
		respondJSON(w, http.StatusOK, records)

	case http.MethodPost:
		var in ParticipantInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "请求体解析失败"))
			return
		}

		participants, err := toParticipants([]ParticipantInput{in})
		if err != nil {
			respondError(w, err)
			return
		}

		existing, err := h.participants.GetByName(r.Context(), in.Name)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询参与者失败"))
			return
		}
		if existing != nil {
			respondError(w, errors.New(errors.CodeAlreadyExists, "参与者已存在: "+in.Name))
			return
		}

		rec := repository.NewParticipantRecord(participants[0], false)
		if err := h.participants.Create(r.Context(), rec); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建参与者失败"))
			return
		}
		respondJSON(w, http.StatusCreated, rec)

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET和POST方法"))
	}
}

// SaveScheduleRequest 轮值表保存请求
type SaveScheduleRequest struct {
	GenerateRequest
}

// Schedules 轮值表集合端点：GET 列出历史，POST 生成并保存
func (h *StoreHandler) Schedules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listSchedules(w, r)
	case http.MethodPost:
		h.SaveSchedule(w, r)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET和POST方法"))
	}
}

// listSchedules 按过滤器列出历史轮值表
func (h *StoreHandler) listSchedules(w http.ResponseWriter, r *http.Request) {
	filter := repository.DefaultListFilter()

	q := r.URL.Query()
	if y := q.Get("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			respondError(w, errors.InvalidInput("year", "必须为整数"))
			return
		}
		month := 0
		if m := q.Get("month"); m != "" {
			if month, err = strconv.Atoi(m); err != nil {
				respondError(w, errors.InvalidInput("month", "必须为整数"))
				return
			}
		}
		filter = filter.WithMonth(year, month)
	}
	if l := q.Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			filter = filter.WithLimit(n)
		}
	}
	if o := q.Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			filter = filter.WithOffset(n)
		}
	}

	records, err := h.schedules.List(r.Context(), filter)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询轮值表列表失败"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(records),
		"schedules": records,
	})
}

// SaveSchedule 生成并持久化月度轮值表
// 轮值表主记录与逐日分配在同一事务内写入；
// 请求未携带参与者时回退到数据库中保存的配置
func (h *StoreHandler) SaveSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req SaveScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "请求体解析失败"))
		return
	}

	var engineReq *roster.Request
	if len(req.Participants) == 0 {
		stored, reduced, err := h.LoadParticipants(r)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "读取参与者配置失败"))
			return
		}
		reducedLoad := req.ReducedLoad
		if len(reducedLoad) == 0 {
			reducedLoad = reduced
		}
		engineReq = &roster.Request{
			Year:          req.Year,
			Month:         time.Month(req.Month),
			Participants:  stored,
			ReducedLoad:   reducedLoad,
			ExcludedDates: req.ExcludedDates,
		}
	} else {
		var err error
		engineReq, err = toEngineRequest(&req.GenerateRequest)
		if err != nil {
			respondError(w, err)
			return
		}
	}

	// 记录实际使用的种子，便于重放同一份轮值表
	seed := h.roster.seedFor(req.Seed)
	engine := roster.NewEngine(rand.New(rand.NewSource(seed)))
	result, err := engine.Generate(r.Context(), engineReq)
	if err != nil {
		respondError(w, err)
		return
	}

	rec := &repository.ScheduleRecord{
		Year:             req.Year,
		Month:            req.Month,
		Seed:             seed,
		Quotas:           result.Quotas,
		AssignedDays:     result.Statistics.AssignedDays,
		UnassignableDays: result.Statistics.UnassignableDays,
		FillRate:         result.Statistics.FillRate,
	}

	err = h.db.Transaction(r.Context(), func(tx *sql.Tx) error {
		return repository.NewScheduleRepository(tx).Save(r.Context(), rec, result.Outcomes)
	})
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "保存轮值表失败"))
		return
	}

	resp := buildGenerateResponse(result)
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"schedule_id": rec.ID,
		"result":      resp,
	})
}

// LatestSchedule 查询指定年月的最新轮值表
func (h *StoreHandler) LatestSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		respondError(w, errors.InvalidInput("year", "必须为整数"))
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		respondError(w, errors.InvalidInput("month", "必须为整数"))
		return
	}

	rec, err := h.schedules.GetByMonth(r.Context(), year, month)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询轮值表失败"))
		return
	}
	if rec == nil {
		respondError(w, errors.NotFound("轮值表", strconv.Itoa(year)+"-"+strconv.Itoa(month)))
		return
	}

	assignments, err := h.schedules.ListAssignments(r.Context(), rec.ID)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询分配记录失败"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"schedule":    rec,
		"assignments": assignments,
	})
}

// LoadParticipants 从仓储读取全部参与者配置（供生成请求复用）
func (h *StoreHandler) LoadParticipants(r *http.Request) ([]model.Participant, []string, error) {
	records, err := h.participants.List(r.Context())
	if err != nil {
		return nil, nil, err
	}

	participants := make([]model.Participant, 0, len(records))
	var reduced []string
	for _, rec := range records {
		participants = append(participants, rec.ToParticipant())
		if rec.FewerShifts {
			reduced = append(reduced, rec.Name)
		}
	}
	return participants, reduced, nil
}
