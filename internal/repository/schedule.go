// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lunzhi/lunzhi/pkg/model"
)

// ScheduleRecord 月度轮值表记录
type ScheduleRecord struct {
	ID               uuid.UUID      `json:"id"`
	Year             int            `json:"year"`
	Month            int            `json:"month"`
	Seed             int64          `json:"seed"`
	Quotas           map[string]int `json:"quotas"`
	AssignedDays     int            `json:"assigned_days"`
	UnassignableDays int            `json:"unassignable_days"`
	FillRate         float64        `json:"fill_rate"`
	CreatedAt        time.Time      `json:"created_at"`
}

// AssignmentRecord 单日分配记录
type AssignmentRecord struct {
	ID          uuid.UUID `json:"id"`
	ScheduleID  uuid.UUID `json:"schedule_id"`
	Date        string    `json:"date"`
	Kind        string    `json:"kind"` // assigned/unassignable
	Participant string    `json:"participant,omitempty"`
	Tier        string    `json:"tier,omitempty"`
}

// ScheduleRepository 轮值表仓储
type ScheduleRepository struct {
	db DB
}

// NewScheduleRepository 创建轮值表仓储
func NewScheduleRepository(db DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Save 保存轮值表及全部单日结果
// 两张表的写入应包在同一事务中，由调用方通过 database.Transaction 传入 tx
func (r *ScheduleRepository) Save(ctx context.Context, rec *ScheduleRecord, outcomes []model.DayOutcome) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now()

	quotasJSON, err := json.Marshal(rec.Quotas)
	if err != nil {
		return fmt.Errorf("序列化配额失败: %w", err)
	}

	query := `
		INSERT INTO schedules (id, year, month, seed, quotas, assigned_days, unassignable_days, fill_rate, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.ExecContext(ctx, query,
		rec.ID, rec.Year, rec.Month, rec.Seed, quotasJSON,
		rec.AssignedDays, rec.UnassignableDays, rec.FillRate, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("保存轮值表失败: %w", err)
	}

	for _, o := range outcomes {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO schedule_assignments (id, schedule_id, date, kind, participant, tier)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.New(), rec.ID, o.Day.Date, string(o.Kind), o.Participant, o.Tier)
		if err != nil {
			return fmt.Errorf("保存分配记录失败: %w", err)
		}
	}

	return nil
}

// GetByMonth 获取指定年月的最新轮值表
func (r *ScheduleRepository) GetByMonth(ctx context.Context, year, month int) (*ScheduleRecord, error) {
	query := `
		SELECT id, year, month, seed, quotas, assigned_days, unassignable_days, fill_rate, created_at
		FROM schedules
		WHERE year = $1 AND month = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	rec := &ScheduleRecord{}
	var quotasJSON []byte
	err := r.db.QueryRowContext(ctx, query, year, month).Scan(
		&rec.ID, &rec.Year, &rec.Month, &rec.Seed, &quotasJSON,
		&rec.AssignedDays, &rec.UnassignableDays, &rec.FillRate, &rec.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询轮值表失败: %w", err)
	}

	if err := json.Unmarshal(quotasJSON, &rec.Quotas); err != nil {
		return nil, fmt.Errorf("解析配额失败: %w", err)
	}

	return rec, nil
}

// List 按过滤器列出历史轮值表
func (r *ScheduleRepository) List(ctx context.Context, filter ListFilter) ([]*ScheduleRecord, error) {
	query := `
		SELECT id, year, month, seed, quotas, assigned_days, unassignable_days, fill_rate, created_at
		FROM schedules
	`

	var conds []string
	var args []interface{}
	if filter.Year != 0 {
		args = append(args, filter.Year)
		conds = append(conds, fmt.Sprintf("year = $%d", len(args)))
	}
	if filter.Month != 0 {
		args = append(args, filter.Month)
		conds = append(conds, fmt.Sprintf("month = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// 排序字段走白名单，不拼接任意输入
	orderBy := "created_at"
	if filter.OrderBy == "year" {
		orderBy = "year"
	}
	dir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		dir = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", orderBy, dir)

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询轮值表列表失败: %w", err)
	}
	defer rows.Close()

	var records []*ScheduleRecord
	for rows.Next() {
		rec := &ScheduleRecord{}
		var quotasJSON []byte
		if err := rows.Scan(
			&rec.ID, &rec.Year, &rec.Month, &rec.Seed, &quotasJSON,
			&rec.AssignedDays, &rec.UnassignableDays, &rec.FillRate, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描轮值表记录失败: %w", err)
		}
		if err := json.Unmarshal(quotasJSON, &rec.Quotas); err != nil {
			return nil, fmt.Errorf("解析配额失败: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// ListAssignments 按日期升序列出轮值表的全部分配
func (r *ScheduleRepository) ListAssignments(ctx context.Context, scheduleID uuid.UUID) ([]*AssignmentRecord, error) {
	query := `
		SELECT id, schedule_id, date, kind, participant, tier
		FROM schedule_assignments
		WHERE schedule_id = $1
		ORDER BY date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("查询分配记录失败: %w", err)
	}
	defer rows.Close()

	var records []*AssignmentRecord
	for rows.Next() {
		rec := &AssignmentRecord{}
		if err := rows.Scan(&rec.ID, &rec.ScheduleID, &rec.Date, &rec.Kind, &rec.Participant, &rec.Tier); err != nil {
			return nil, fmt.Errorf("扫描分配记录失败: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
