package userauth

import (
	"errors"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/nyaruka/phonenumbers"
)

// HTTPController exposes the account and session operations as a JSON
// API under /api.
type HTTPController struct {
	Logger Logger
	Repo   RepositoryManager
	Auth   *Authenticator
	Config *Config
}

type HTTPControllerOption func(*HTTPController) *HTTPController

func WithControllerLogger(logger Logger) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		c.Logger = logger
		return c
	}
}

func NewHTTPController(repo RepositoryManager, auther *Authenticator, cfg *Config, opts ...HTTPControllerOption) *HTTPController {
	c := &HTTPController{
		Logger: defLogger{},
		Repo:   repo,
		Auth:   auther,
		Config: cfg,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auth == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Config == nil {
		c.Config = LoadDefaults()
	}

	return c
}

// RegisterRoutes mounts the API on the given app. Session gated routes
// run through RequireAuth and RequireActive in that order.
func (a *HTTPController) RegisterRoutes(app *fiber.App) {
	gate := RequireAuth(a.Auth, a.Config.AuthScheme)
	active := RequireActive()

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/login", a.Login)
	auth.Post("/token", a.LegacyToken)
	auth.Get("/me", gate, active, a.Me)
	auth.Post("/role/:user_id/create", gate, active, a.CreateRole)
	auth.Put("/role/change_password", gate, active, a.ChangePassword)

	user := api.Group("/user")
	user.Post("/register", a.Register)
	user.Get("/list", gate, active, a.ListUsers)
	user.Get("/:user_id", gate, active, a.GetUser)
	user.Put("/:user_id", gate, active, a.UpdateUser)
	user.Delete("/:user_id", gate, active, a.DeactivateUser)

	email := api.Group("/email")
	email.Put("/input", gate, active, a.UpdateEmail)
}

// LoginRequest payload
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// Login verifies a username/password pair and returns a fresh access
// token with the default lifetime.
func (a *HTTPController) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload: %v", err)
		return fiber.NewError(fiber.StatusBadRequest, "failed to parse body")
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	token, err := a.Auth.Login(c.UserContext(), payload.Username, payload.Password)
	if err != nil {
		return err
	}

	return c.JSON(token)
}

// LegacyToken keeps the old short lived token issuance alive for
// clients that have not migrated to /login yet.
func (a *HTTPController) LegacyToken(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("token parse payload: %v", err)
		return fiber.NewError(fiber.StatusBadRequest, "failed to parse body")
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	token, err := a.Auth.LoginWithTTL(c.UserContext(), payload.Username, payload.Password, a.Config.LegacyTokenTTL)
	if err != nil {
		return err
	}

	return c.JSON(token)
}

// Me returns the acting user's profile, roles included.
func (a *HTTPController) Me(c *fiber.Ctx) error {
	principal, ok := PrincipalFromFiber(c)
	if !ok {
		return ErrUnauthenticated
	}

	user, err := a.Repo.Users().FindByID(c.UserContext(), principal.ID)
	if err != nil {
		return err
	}

	return c.JSON(NewUserResponse(user))
}

// CreateRoleRequest payload
type CreateRoleRequest struct {
	Name        string `form:"name" json:"name"`
	Description string `form:"description" json:"description"`
}

// Validate will run validation rules
func (r CreateRoleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Name,
			validation.Required,
			validation.In(RoleViewer, RoleAdmin, RoleSuperAdmin),
		),
		validation.Field(&r.Description, validation.Length(0, 500)),
	)
}

func (a *HTTPController) CreateRole(c *fiber.Ctx) error {
	userID, err := paramID(c, "user_id")
	if err != nil {
		return err
	}

	payload := new(CreateRoleRequest)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("create role parse payload: %v", err)
		return fiber.NewError(fiber.StatusBadRequest, "failed to parse body")
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	assignRole := NewAssignRoleHandler(a.Repo)
	role, err := assignRole.Execute(c.UserContext(), AssignRoleMessage{
		UserID:      userID,
		Name:        payload.Name,
		Description: payload.Description,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(role)
}

// ChangePasswordRequest payload
type ChangePasswordRequest struct {
	CurrentPassword string `form:"current_password" json:"current_password"`
	NewPassword     string `form:"new_password" json:"new_password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will run validation rules
func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.NewPassword)),
		),
	)
}

// ChangePassword rotates the acting user's password and hands back a
// fresh token so clients do not have to log in again.
func (a *HTTPController) ChangePassword(c *fiber.Ctx) error {
	principal, ok := PrincipalFromFiber(c)
	if !ok {
		return ErrUnauthenticated
	}

	payload := new(ChangePasswordRequest)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("change password parse payload: %v", err)
		return fiber.NewError(fiber.StatusBadRequest, "failed to parse body")
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	token, err := a.Auth.ChangePassword(
		c.UserContext(),
		principal.ID,
		payload.CurrentPassword,
		payload.NewPassword,
		payload.ConfirmPassword,
	)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"token": token})
}

// RegisterRequest payload
type RegisterRequest struct {
	Username  string `form:"username" json:"username"`
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Email     string `form:"email" json:"email"`
	Phone     string `form:"phone_number" json:"phone_number"`
	Password  string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Length(1, 200)),
		validation.Field(&r.FirstName, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.By(ValidatePhoneNumber)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (a *HTTPController) Register(c *fiber.Ctx) error {
	payload := new(RegisterRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register parse payload: %v", err)
		return fiber.NewError(fiber.StatusBadRequest, "failed to parse body")
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	registerUser := NewRegisterUserHandler(a.Repo, a.Auth.Hasher())
	user, err := registerUser.Execute(c.UserContext(), RegisterUserMessage{
		Username:  payload.Username,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Password:  payload.Password,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(NewUserResponse(user))
}

func (a *HTTPController) ListUsers(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 100)

	users, err := a.Repo.Users().List(c.UserContext(), skip, limit)
	if err != nil {
		return err
	}

	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}

	return c.JSON(out)
}

func (a *HTTPController) GetUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "user_id")
	if err != nil {
		return err
	}

	user, err := a.Repo.Users().FindByID(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return c.JSON(NewUserResponse(user))
}

// UpdateUserRequest payload
type UpdateUserRequest struct {
	Username  string `form:"username" json:"username"`
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Email     string `form:"email" json:"email"`
	Phone     string `form:"phone_number" json:"phone_number"`
}

// Validate will run validation rules
func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Length(1, 200)),
		validation.Field(&r.FirstName, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.By(ValidatePhoneNumber)),
	)
}

func (a *HTTPController) UpdateUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "user_id")
	if err != nil {
		return err
	}

	payload := new(UpdateUserRequest)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("update user parse payload: %v", err)
		return fiber.NewError(fiber.StatusBadRequest, "failed to parse body")
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	users := a.Repo.Users()

	if _, err := users.FindByID(c.UserContext(), userID); err != nil {
		return err
	}

	if payload.Username != "" {
		existing, err := users.FindByUsername(c.UserContext(), payload.Username)
		if err == nil && existing.ID != userID {
			return ErrUsernameTaken
		}
	}

	record := &User{
		ID:        userID,
		Username:  payload.Username,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Phone:     payload.Phone,
	}

	updated, err := users.Update(c.UserContext(), record)
	if err != nil {
		return err
	}

	return c.JSON(NewUserResponse(updated))
}

// DeactivateUser soft deletes by flipping is_active; the row and its
// roles stay in place.
func (a *HTTPController) DeactivateUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "user_id")
	if err != nil {
		return err
	}

	user, err := a.Repo.Users().Deactivate(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"detail": "user deactivated",
		"user":   NewUserResponse(user),
	})
}

// EmailInput payload
type EmailInput struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r EmailInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
	)
}

// UpdateEmail stores a new contact email for the acting user.
func (a *HTTPController) UpdateEmail(c *fiber.Ctx) error {
	principal, ok := PrincipalFromFiber(c)
	if !ok {
		return ErrUnauthenticated
	}

	payload := new(EmailInput)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("email input parse payload: %v", err)
		return fiber.NewError(fiber.StatusBadRequest, "failed to parse body")
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	updated, err := a.Repo.Users().Update(c.UserContext(), &User{
		ID:    principal.ID,
		Email: payload.Email,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"email": updated.Email})
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	raw := c.Params(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}

// ValidatePhoneNumber accepts an empty value or a number that parses
// and validates under the US default region.
func ValidatePhoneNumber(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	num, err := phonenumbers.Parse(s, "US")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return errors.New("must be a valid phone number")
	}

	return nil
}
