package userauth

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Users is the persistence surface for user records. It satisfies the
// UserStore collaborator consumed by the Authenticator.
type Users interface {
	UserStore

	List(ctx context.Context, offset, limit int) ([]*User, error)
	Create(ctx context.Context, record *User) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)
	Update(ctx context.Context, record *User) (*User, error)
	Deactivate(ctx context.Context, id int64) (*User, error)
	PersistPasswordHashTx(ctx context.Context, tx bun.IDB, userID int64, hash string) error
}

type users struct {
	db *bun.DB
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB) Users {
	return &users{db: db}
}

func (r *users) FindByUsername(ctx context.Context, username string) (*User, error) {
	record := &User{}

	err := r.db.NewSelect().
		Model(record).
		Relation("Roles").
		Where("?TableAlias.username = ?", username).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, userNotFound(map[string]any{"username": username})
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "user lookup by username failed")
	}

	return record, nil
}

func (r *users) FindByID(ctx context.Context, id int64) (*User, error) {
	record := &User{}

	err := r.db.NewSelect().
		Model(record).
		Relation("Roles").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, userNotFound(map[string]any{"id": id})
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "user lookup by id failed")
	}

	return record, nil
}

func (r *users) List(ctx context.Context, offset, limit int) ([]*User, error) {
	if limit <= 0 {
		limit = 100
	}

	var records []*User
	err := r.db.NewSelect().
		Model(&records).
		Relation("Roles").
		OrderExpr("?TableAlias.id ASC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "user listing failed")
	}

	return records, nil
}

func (r *users) Create(ctx context.Context, record *User) (*User, error) {
	return r.CreateTx(ctx, r.db, record)
}

func (r *users) CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	prepareUserDefaults(record)

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConflict, "could not create user")
	}

	return record, nil
}

// Update persists the non-zero fields of record, then reloads it.
func (r *users) Update(ctx context.Context, record *User) (*User, error) {
	res, err := r.db.NewUpdate().
		Model(record).
		OmitZero().
		WherePK().
		Exec(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "user update failed")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, userNotFound(map[string]any{"id": record.ID})
	}

	return r.FindByID(ctx, record.ID)
}

// Deactivate flips is_active off; the record itself is never deleted.
func (r *users) Deactivate(ctx context.Context, id int64) (*User, error) {
	res, err := r.db.NewUpdate().
		Model((*User)(nil)).
		Set("is_active = ?", false).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "user deactivation failed")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, userNotFound(map[string]any{"id": id})
	}

	return r.FindByID(ctx, id)
}

func (r *users) PersistPasswordHash(ctx context.Context, userID int64, hash string) error {
	return r.PersistPasswordHashTx(ctx, r.db, userID, hash)
}

func (r *users) PersistPasswordHashTx(ctx context.Context, tx bun.IDB, userID int64, hash string) error {
	res, err := tx.NewUpdate().
		Model((*User)(nil)).
		Set("password_hash = ?", hash).
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "password hash update failed")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return userNotFound(map[string]any{"id": userID})
	}

	return nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}
	// new accounts start active, matching the column default
	if record.ID == 0 {
		record.IsActive = true
	}
}

func userNotFound(metadata map[string]any) *errors.Error {
	return errors.New("user not found", errors.CategoryNotFound).
		WithTextCode(TextCodeUserNotFound).
		WithCode(errors.CodeNotFound).
		WithMetadata(metadata)
}
