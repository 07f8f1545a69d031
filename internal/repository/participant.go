// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/lunzhi/lunzhi/pkg/model"
)

// ParticipantRecord 参与者持久化记录
// 工作日与日期阻塞分别存为 int[] 与 text[] 数组列，
// 与少排班标记一起无损往返
type ParticipantRecord struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	WeekdayBlocks []int64   `json:"weekday_blocks"`
	DateBlocks    []string  `json:"date_blocks"`
	FewerShifts   bool      `json:"fewer_shifts"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ToParticipant 转换为引擎参与者模型
func (r *ParticipantRecord) ToParticipant() model.Participant {
	weekdays := make([]time.Weekday, len(r.WeekdayBlocks))
	for i, w := range r.WeekdayBlocks {
		weekdays[i] = time.Weekday(w)
	}
	return model.Participant{
		Name: r.Name,
		Constraint: model.Constraint{
			BlockedWeekdays: weekdays,
			BlockedDates:    r.DateBlocks,
		},
	}
}

// NewParticipantRecord 从引擎模型创建持久化记录
func NewParticipantRecord(p model.Participant, fewerShifts bool) *ParticipantRecord {
	weekdays := make([]int64, len(p.Constraint.BlockedWeekdays))
	for i, w := range p.Constraint.BlockedWeekdays {
		weekdays[i] = int64(w)
	}
	return &ParticipantRecord{
		ID:            uuid.New(),
		Name:          p.Name,
		WeekdayBlocks: weekdays,
		DateBlocks:    p.Constraint.BlockedDates,
		FewerShifts:   fewerShifts,
	}
}

// ParticipantRepository 参与者仓储
type ParticipantRepository struct {
	db DB
}

// NewParticipantRepository 创建参与者仓储
func NewParticipantRepository(db DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Create 创建参与者
func (r *ParticipantRepository) Create(ctx context.Context, rec *ParticipantRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	query := `
		INSERT INTO participants (id, name, weekday_blocks, date_blocks, fewer_shifts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Name, pq.Array(rec.WeekdayBlocks), pq.Array(rec.DateBlocks),
		rec.FewerShifts, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建参与者失败: %w", err)
	}

	return nil
}

// GetByName 根据名称获取参与者
func (r *ParticipantRepository) GetByName(ctx context.Context, name string) (*ParticipantRecord, error) {
	query := `
		SELECT id, name, weekday_blocks, date_blocks, fewer_shifts, created_at, updated_at
		FROM participants
		WHERE name = $1
	`

	rec := &ParticipantRecord{}
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&rec.ID, &rec.Name, pq.Array(&rec.WeekdayBlocks), pq.Array(&rec.DateBlocks),
		&rec.FewerShifts, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询参与者失败: %w", err)
	}

	return rec, nil
}

// List 按名称升序列出所有参与者
func (r *ParticipantRepository) List(ctx context.Context) ([]*ParticipantRecord, error) {
	query := `
		SELECT id, name, weekday_blocks, date_blocks, fewer_shifts, created_at, updated_at
		FROM participants
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询参与者列表失败: %w", err)
	}
	defer rows.Close()

	var records []*ParticipantRecord
	for rows.Next() {
		rec := &ParticipantRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.Name, pq.Array(&rec.WeekdayBlocks), pq.Array(&rec.DateBlocks),
			&rec.FewerShifts, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描参与者记录失败: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Update 更新参与者约束
func (r *ParticipantRepository) Update(ctx context.Context, rec *ParticipantRecord) error {
	rec.UpdatedAt = time.Now()

	query := `
		UPDATE participants
		SET weekday_blocks = $2, date_blocks = $3, fewer_shifts = $4, updated_at = $5
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query,
		rec.ID, pq.Array(rec.WeekdayBlocks), pq.Array(rec.DateBlocks), rec.FewerShifts, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新参与者失败: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新参与者失败: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("参与者 %s 不存在", rec.Name)
	}

	return nil
}

// Delete 删除参与者
func (r *ParticipantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("删除参与者失败: %w", err)
	}
	return nil
}
