package crud

import (
	"context"
	"sort"
	"strings"
	"time"

	helper "portfolio_backend/internals/helpers"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListQuery is one resolved list request.
type ListQuery struct {
	helper.ListParams
	// column -> exact value
	Filters map[string]any
	// Privileged callers also see inactive records.
	Privileged bool
	Scopes     []func(*gorm.DB) *gorm.DB
}

// GroupCount is one bucket of a GROUP BY count.
type GroupCount struct {
	Key   string `gorm:"column:grp" json:"key"`
	Count int64  `gorm:"column:cnt" json:"count"`
}

// Repository is the persistence side of the engine for one model type.
type Repository[T any] struct {
	db   *gorm.DB
	desc *Descriptor
}

func NewRepository[T any](db *gorm.DB, desc *Descriptor) *Repository[T] {
	return &Repository[T]{db: db, desc: desc}
}

func (r *Repository[T]) DB() *gorm.DB { return r.db }

// Active scopes a query to visible records.
func Active(tx *gorm.DB) *gorm.DB { return tx.Where("is_active = ?", true) }

func (r *Repository[T]) List(ctx context.Context, q ListQuery) ([]T, int64, error) {
	tx := r.db.WithContext(ctx).Model(new(T))
	if !q.Privileged {
		tx = Active(tx)
	}

	cols := make([]string, 0, len(q.Filters))
	for col := range q.Filters {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		tx = tx.Where(col+" = ?", q.Filters[col])
	}

	if q.Search != "" && len(r.desc.SearchColumns) > 0 {
		pattern := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
		conds := make([]string, 0, len(r.desc.SearchColumns))
		args := make([]any, 0, len(r.desc.SearchColumns))
		for _, col := range r.desc.SearchColumns {
			conds = append(conds, "LOWER("+col+`) LIKE ? ESCAPE '\'`)
			args = append(args, pattern)
		}
		tx = tx.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	for _, s := range q.Scopes {
		tx = s(tx)
	}

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if order := helper.OrderClause(q.Sort, r.desc.Sorts, r.desc.DefaultSort); order != "" {
		tx = tx.Order(order)
	}
	tx = tx.Order("display_order ASC").Order("id ASC")

	limit := q.Limit
	if limit <= 0 {
		limit = helper.DefaultOpts.DefaultLimit
	}
	page := q.ListParams
	page.Limit = limit
	if page.Page < 1 {
		page.Page = 1
	}

	items := make([]T, 0, limit)
	if err := tx.Offset(page.Offset()).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// FindByID returns ErrNotFound for unknown, malformed or (unless
// includeInactive) inactive ids.
func (r *Repository[T]) FindByID(ctx context.Context, id string, includeInactive bool) (*T, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, ErrNotFound
	}
	tx := r.db.WithContext(ctx).Where("id = ?", uid)
	if !includeInactive {
		tx = Active(tx)
	}
	var out T
	if err := tx.First(&out).Error; err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (r *Repository[T]) Create(ctx context.Context, m *T) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

// Update applies only the given columns, re-stamps updated_at and re-checks
// model invariants on the merged record. Nothing is written when the merged
// record is invalid.
func (r *Repository[T]) Update(ctx context.Context, id string, fields map[string]any, includeInactive bool) (*T, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, ErrNotFound
	}

	var out T
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("id = ?", uid)
		if !includeInactive {
			q = Active(q)
		}
		if err := q.First(&out).Error; err != nil {
			return translate(err)
		}
		if len(fields) == 0 {
			return nil
		}

		updates := make(map[string]any, len(fields)+1)
		for k, v := range fields {
			if k == "id" || k == "created_at" {
				continue
			}
			updates[k] = v
		}
		updates["updated_at"] = time.Now()

		if err := tx.Model(new(T)).Where("id = ?", uid).Updates(updates).Error; err != nil {
			return translate(err)
		}
		out = *new(T)
		if err := tx.Where("id = ?", uid).First(&out).Error; err != nil {
			return translate(err)
		}
		if inv, ok := any(&out).(Invariant); ok {
			if v := inv.CheckInvariants(); len(v) > 0 {
				return helper.NewValidationError(v...)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SoftDelete flips is_active. A record that is already inactive reports
// ErrNotFound so repeating the call changes nothing.
func (r *Repository[T]) SoftDelete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return ErrNotFound
	}
	res := r.db.WithContext(ctx).Model(new(T)).
		Where("id = ? AND is_active = ?", uid, true).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountActive counts visible records.
func (r *Repository[T]) CountActive(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) (int64, error) {
	var n int64
	err := Active(r.db.WithContext(ctx).Model(new(T))).Scopes(scopes...).Count(&n).Error
	return n, err
}

// CountGroups counts visible records per value of column, largest first.
func (r *Repository[T]) CountGroups(ctx context.Context, column string) ([]GroupCount, error) {
	out := make([]GroupCount, 0)
	err := Active(r.db.WithContext(ctx).Model(new(T))).
		Select(column + " AS grp, COUNT(*) AS cnt").
		Group(column).
		Order("cnt DESC").Order("grp ASC").
		Scan(&out).Error
	return out, err
}
