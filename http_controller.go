package auth

import (
	stderrors "errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPAuthenticator captures the RouteAuthenticator surface the controller needs.
type HTTPAuthenticator interface {
	Login(ctx router.Context, payload LoginPayload) (*LoginResult, error)
	ProtectedRoute(cfg Config, errorHandler func(router.Context, error) error) router.MiddlewareFunc
	MakeClientRouteAuthErrorHandler(optional bool) func(router.Context, error) error
}

type AuthControllerRoutes struct {
	Login         string
	Register      string
	Organizations string
}

type AuthController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Orgs         *OrganizationService
	Cfg          Config
	Routes       *AuthControllerRoutes
	Auther       HTTPAuthenticator
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerOrgs(orgs *OrganizationService) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Orgs = orgs
		return c
	}
}

func WithControllerAuther(auther HTTPAuthenticator, cfg Config) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		c.Cfg = cfg
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		Routes: &AuthControllerRoutes{
			Login:         "/login",
			Register:      "/register",
			Organizations: "/organizations",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing HTTPAuthenticator in auth controller...")
	}

	if c.Orgs == nil {
		panic("Missing OrganizationService in auth controller...")
	}

	return c
}

// RegisterAuthRoutes mounts the login, registration, and organization routes.
func RegisterAuthRoutes(app RouteRegistrar, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Login, controller.LoginPost)
	app.Post(controller.Routes.Register, controller.RegistrationCreate)

	protected := controller.Auther.ProtectedRoute(
		controller.Cfg,
		controller.Auther.MakeClientRouteAuthErrorHandler(false),
	)

	orgs := controller.Routes.Organizations
	app.Post(orgs, controller.OrganizationCreate, protected)
	app.Get(orgs, controller.OrganizationList, protected)
	app.Get(orgs+"/mine", controller.OrganizationMine, protected)
	app.Get(orgs+"/:id", controller.OrganizationShow, protected)
	app.Put(orgs+"/:id", controller.OrganizationUpdate, protected)
	app.Delete(orgs+"/:id", controller.OrganizationDelete, protected)
	app.Get(orgs+"/:id/users", controller.OrganizationUsers, protected)
	app.Post(orgs+"/:id/users/:user_id", controller.OrganizationAddUser, protected)

	return controller
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Identifier
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload: ", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error":      "validation failed",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	result, err := a.Auther.Login(ctx, payload)
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, result)
}

// RegistrationCreatePayload is the registration payload
type RegistrationCreatePayload struct {
	FirstName       string `form:"first_name" json:"first_name"`
	LastName        string `form:"last_name" json:"last_name"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.Length(10, 100),
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) RegistrationCreate(ctx router.Context) error {
	payload := new(RegistrationCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register user parse payload: ", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error": "failed to parse body",
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register user validate payload: ", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error":      "validation failed",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	req := RegisterUserMessage{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Password:  payload.Password,
	}

	registerUser := NewRegisterUserHandler(a.Repo)
	if err := registerUser.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("register user error: ", "error", err)
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusCreated, map[string]any{
		"status": "registered",
	})
}

// CreateOrganizationPayload is the organization create payload
type CreateOrganizationPayload struct {
	Name        string         `form:"name" json:"name"`
	Description string         `form:"description" json:"description"`
	Settings    map[string]any `json:"settings"`
}

// Validate will validate the payload
func (r CreateOrganizationPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(2, 200)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
	)
}

func (a *AuthController) OrganizationCreate(ctx router.Context) error {
	claims, err := a.requireClaims(ctx)
	if err != nil {
		return a.renderError(ctx, err)
	}

	payload := new(CreateOrganizationPayload)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error": "failed to parse body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error":      "validation failed",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	org, err := a.Orgs.Create(ctx.Context(), claims, CreateOrganizationParams{
		Name:        payload.Name,
		Description: payload.Description,
		Settings:    payload.Settings,
	})
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusCreated, org)
}

func (a *AuthController) OrganizationList(ctx router.Context) error {
	claims, err := a.requireClaims(ctx)
	if err != nil {
		return a.renderError(ctx, err)
	}

	orgs, err := a.Orgs.FindAll(ctx.Context(), claims)
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"organizations": orgs,
	})
}

// OrganizationMine returns the acting user's organization, or null when the
// user does not belong to one.
func (a *AuthController) OrganizationMine(ctx router.Context) error {
	claims, err := a.requireClaims(ctx)
	if err != nil {
		return a.renderError(ctx, err)
	}

	org, err := a.Orgs.FindByUser(ctx.Context(), claims, claims.UserID())
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"organization": org,
	})
}

func (a *AuthController) OrganizationShow(ctx router.Context) error {
	claims, err := a.requireClaims(ctx)
	if err != nil {
		return a.renderError(ctx, err)
	}

	id, err := a.paramUUID(ctx, "id")
	if err != nil {
		return a.renderError(ctx, err)
	}

	org, err := a.Orgs.FindByID(ctx.Context(), claims, id)
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, org)
}

// UpdateOrganizationPayload is the organization update payload
type UpdateOrganizationPayload struct {
	Name        *string        `form:"name" json:"name"`
	Description *string        `form:"description" json:"description"`
	Settings    map[string]any `json:"settings"`
}

// Validate will validate the payload
func (r UpdateOrganizationPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(2, 200)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
	)
}

func (a *AuthController) OrganizationUpdate(ctx router.Context) error {
	claims, err := a.requireClaims(ctx)
	if err != nil {
		return a.renderError(ctx, err)
	}

	id, err := a.paramUUID(ctx, "id")
	if err != nil {
		return a.renderError(ctx, err)
	}

	payload := new(UpdateOrganizationPayload)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error": "failed to parse body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error":      "validation failed",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	org, err := a.Orgs.Update(ctx.Context(), claims, id, UpdateOrganizationParams{
		Name:        payload.Name,
		Description: payload.Description,
		Settings:    payload.Settings,
	})
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, org)
}

func (a *AuthController) OrganizationDelete(ctx router.Context) error {
	claims, err := a.requireClaims(ctx)
	if err != nil {
		return a.renderError(ctx, err)
	}

	id, err := a.paramUUID(ctx, "id")
	if err != nil {
		return a.renderError(ctx, err)
	}

	if err := a.Orgs.Remove(ctx.Context(), claims, id); err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"status": "deleted",
	})
}

func (a *AuthController) OrganizationUsers(ctx router.Context) error {
	claims, err := a.requireClaims(ctx)
	if err != nil {
		return a.renderError(ctx, err)
	}

	id, err := a.paramUUID(ctx, "id")
	if err != nil {
		return a.renderError(ctx, err)
	}

	users, err := a.Orgs.UsersInOrganization(ctx.Context(), claims, id)
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"users": users,
	})
}

func (a *AuthController) OrganizationAddUser(ctx router.Context) error {
	claims, err := a.requireClaims(ctx)
	if err != nil {
		return a.renderError(ctx, err)
	}

	orgID, err := a.paramUUID(ctx, "id")
	if err != nil {
		return a.renderError(ctx, err)
	}

	userID, err := a.paramUUID(ctx, "user_id")
	if err != nil {
		return a.renderError(ctx, err)
	}

	user, err := a.Orgs.AddUser(ctx.Context(), claims, orgID, userID)
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, user)
}

// requireClaims pulls the validated claims the middleware stored on the
// request context.
func (a *AuthController) requireClaims(ctx router.Context) (AuthClaims, error) {
	if claims, ok := GetClaims(ctx.Context()); ok {
		return claims, nil
	}

	contextKey := "user"
	if a.Cfg != nil && a.Cfg.GetContextKey() != "" {
		contextKey = a.Cfg.GetContextKey()
	}

	if claims, ok := ctx.Locals(contextKey).(AuthClaims); ok {
		return claims, nil
	}

	return nil, ErrUnauthenticated
}

func (a *AuthController) paramUUID(ctx router.Context, name string) (uuid.UUID, error) {
	raw := ctx.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("invalid identifier: "+raw, errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}
	return id, nil
}

func (a *AuthController) renderError(ctx router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = fiber.StatusInternalServerError
	}

	if a.Debug {
		fmt.Println("======= AUTH ERROR ======")
		fmt.Println(print.MaybePrettyJSON(richErr))
		fmt.Println("=========================")
	}

	return ctx.JSON(status, map[string]any{
		"error":     richErr.Message,
		"text_code": richErr.TextCode,
	})
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field to message map.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var verrs validation.Errors
	if stderrors.As(err, &verrs) {
		for field, ferr := range verrs {
			out[field] = ferr.Error()
		}
		return out
	}

	out["error"] = err.Error()
	return out
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return stderrors.New("values must match")
		}
		return nil
	}
}

func defaultErrHandler(c router.Context, err error) error {
	return c.JSON(fiber.StatusInternalServerError, map[string]any{
		"error": err.Error(),
	})
}
