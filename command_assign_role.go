package userauth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type AssignRoleMessage struct {
	UserID      int64    `json:"user_id"`
	Name        RoleName `json:"name"`
	Description string   `json:"description"`
}

func (e AssignRoleMessage) Type() string { return "user.assign_role" }

// AssignRoleHandler attaches a role record to a user. A user holds at most
// one role; a second assignment fails with ErrRoleExists.
type AssignRoleHandler struct {
	repo RepositoryManager
}

func NewAssignRoleHandler(repo RepositoryManager) *AssignRoleHandler {
	return &AssignRoleHandler{repo: repo}
}

func (h *AssignRoleHandler) Execute(ctx context.Context, event AssignRoleMessage) (*UserRole, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during role assignment",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *AssignRoleHandler) execute(ctx context.Context, event AssignRoleMessage) (*UserRole, error) {
	if _, ok := ParseRoleName(string(event.Name)); !ok {
		return nil, goerrors.New("unknown role name", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(map[string]any{"name": event.Name})
	}

	role := &UserRole{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := h.repo.Users().FindByID(ctx, event.UserID)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrUserNotFound
			}
			return err
		}

		if _, err := h.repo.Roles().FindByUserID(ctx, user.ID); err == nil {
			return ErrRoleExists
		} else if !goerrors.IsNotFound(err) {
			return err
		}

		role.Name = event.Name
		role.Description = event.Description
		role.UserID = user.ID

		if role, err = h.repo.Roles().CreateTx(ctx, tx, role); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create role")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "role assignment transaction failed")
	}

	return role, nil
}
