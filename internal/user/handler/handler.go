package handler

import (
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/user"
	"github.com/fekuna/omnipos-inventory-service/internal/user/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/response"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserHandler struct {
	uc           user.UseCase
	cookieTTL    time.Duration
	cookieSecure bool
	logger       logger.ZapLogger
}

func NewUserHandler(uc user.UseCase, cookieTTL time.Duration, cookieSecure bool, log logger.ZapLogger) *UserHandler {
	return &UserHandler{
		uc:           uc,
		cookieTTL:    cookieTTL,
		cookieSecure: cookieSecure,
		logger:       log,
	}
}

// RegisterPublic mounts the routes reachable without a token.
func (h *UserHandler) RegisterPublic(r fiber.Router) {
	r.Post("/login", h.Login)
	r.Post("/register", h.RegisterAccount)
	r.Post("/logout", h.Logout)
}

func (h *UserHandler) Register(r fiber.Router) {
	r.Get("/me", h.Me)
	r.Get("/", h.ListUsers)
	r.Post("/", h.CreateUser)
	r.Put("/:id", h.UpdateUser)
	r.Delete("/:id", h.DeleteUser)
}

func (h *UserHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	s, err := h.uc.Login(c.UserContext(), &input)
	if err != nil {
		return err
	}
	h.setCookies(c, s)
	return response.OK(c, s)
}

func (h *UserHandler) RegisterAccount(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	s, err := h.uc.Register(c.UserContext(), &input)
	if err != nil {
		return err
	}
	h.setCookies(c, s)
	return response.Created(c, s)
}

func (h *UserHandler) Logout(c *fiber.Ctx) error {
	auth.ClearSessionCookies(c)
	return response.Message(c, "logged out")
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	s, err := h.uc.Me(c.UserContext(), auth.User(c))
	if err != nil {
		return err
	}
	return response.OK(c, s)
}

func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	page, limit := response.PageParams(c, 50)
	filters := &dto.UserFilters{
		OrganizationID: auth.User(c).OrganizationID,
		Search:         c.Query("search"),
		Role:           c.Query("role"),
		Page:           page,
		PageSize:       limit,
	}
	users, count, err := h.uc.ListUsers(c.UserContext(), filters)
	if err != nil {
		return err
	}
	return response.Paginated(c, users, response.NewPagination(page, limit, count))
}

func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var input dto.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	input.OrganizationID = auth.User(c).OrganizationID

	u, err := h.uc.CreateUser(c.UserContext(), &input)
	if err != nil {
		return err
	}
	return response.Created(c, u)
}

func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	var input dto.UpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	input.OrganizationID = auth.User(c).OrganizationID
	input.ID = c.Params("id")

	u, err := h.uc.UpdateUser(c.UserContext(), &input)
	if err != nil {
		return err
	}
	return response.OK(c, u)
}

func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.uc.DeleteUser(c.UserContext(), auth.User(c), c.Params("id")); err != nil {
		return err
	}
	return response.Message(c, "user deleted")
}

func (h *UserHandler) setCookies(c *fiber.Ctx, s *dto.Session) {
	userJSON, err := json.Marshal(s.User)
	if err != nil {
		h.logger.Warn("failed to encode user cookie", zap.Error(err))
		userJSON = []byte("{}")
	}
	auth.SetSessionCookies(c, s.Token, string(userJSON), h.cookieTTL, h.cookieSecure)
}
