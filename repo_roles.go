package userauth

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Roles is the persistence surface for the optional per-user role record.
type Roles interface {
	FindByUserID(ctx context.Context, userID int64) (*UserRole, error)
	Create(ctx context.Context, record *UserRole) (*UserRole, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *UserRole) (*UserRole, error)
}

type roles struct {
	db *bun.DB
}

var _ Roles = (*roles)(nil)

func NewRolesRepository(db *bun.DB) Roles {
	return &roles{db: db}
}

func (r *roles) FindByUserID(ctx context.Context, userID int64) (*UserRole, error) {
	record := &UserRole{}

	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.user_id = ?", userID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New("role not found", errors.CategoryNotFound).
				WithCode(errors.CodeNotFound).
				WithMetadata(map[string]any{"user_id": userID})
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "role lookup failed")
	}

	return record, nil
}

func (r *roles) Create(ctx context.Context, record *UserRole) (*UserRole, error) {
	return r.CreateTx(ctx, r.db, record)
}

func (r *roles) CreateTx(ctx context.Context, tx bun.IDB, record *UserRole) (*UserRole, error) {
	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConflict, "could not create role")
	}

	return record, nil
}
