package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"accounthub/api/middleware"
	"accounthub/internal/apperr"
	"accounthub/internal/dto"
	"accounthub/internal/entity"
	"accounthub/internal/repository"
	"accounthub/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	Users    *service.UserService
	Validate *validator.Validate
}

func NewUserHandler(users *service.UserService, validate *validator.Validate) *UserHandler {
	return &UserHandler{Users: users, Validate: validate}
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	filter := repository.ListFilter{}

	if raw := c.QueryParam("role"); raw != "" {
		role := entity.UserRole(raw)
		if !role.Valid() {
			return apperr.New("Invalid role filter", http.StatusBadRequest, apperr.CodeValidationError)
		}
		filter.Role = &role
	}
	if raw := c.QueryParam("status"); raw != "" {
		status := entity.UserStatus(raw)
		if !status.Valid() {
			return apperr.New("Invalid status filter", http.StatusBadRequest, apperr.CodeValidationError)
		}
		filter.Status = &status
	}
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	result, err := h.Users.ListUsers(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Users retrieved successfully", result)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}

	user, err := h.Users.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User retrieved successfully", dto.SafeUserFromEntity(user))
}

func (h *UserHandler) UpdateUser(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateUserRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	user, err := h.Users.UpdateUser(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User updated successfully", dto.SafeUserFromEntity(user))
}

// UpdateMyProfile lets an authenticated user change their own name or
// avatar. Blank values are ignored; a request carrying no usable field
// is rejected.
func (h *UserHandler) UpdateMyProfile(c echo.Context) error {
	user, ok := middleware.AuthUserFromContext(c)
	if !ok {
		return apperr.New("Authentication required", http.StatusUnauthorized, apperr.CodeNotAuthenticated)
	}

	var req dto.UpdateMyProfileRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	updates := dto.UpdateUserRequest{}
	if req.Name != nil {
		if name := strings.TrimSpace(*req.Name); name != "" {
			updates.Name = &name
		}
	}
	if req.Avatar != nil {
		if avatar := strings.TrimSpace(*req.Avatar); avatar != "" {
			updates.Avatar = &avatar
		}
	}
	if updates.Name == nil && updates.Avatar == nil {
		return apperr.New("No valid fields to update", http.StatusBadRequest, apperr.CodeValidationError)
	}

	updated, err := h.Users.UpdateUser(c.Request().Context(), user.ID, updates)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Profile updated successfully", dto.SafeUserFromEntity(updated))
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}

	if err := h.Users.DeleteUser(c.Request().Context(), userID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User deleted successfully", nil)
}

func (h *UserHandler) ChangeStatus(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}

	var req dto.ChangeStatusRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	user, err := h.Users.ChangeUserStatus(c.Request().Context(), userID, entity.UserStatus(req.Status))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User status updated successfully", dto.SafeUserFromEntity(user))
}

func (h *UserHandler) ChangeRole(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}

	var req dto.ChangeRoleRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	user, err := h.Users.ChangeUserRole(c.Request().Context(), userID, entity.UserRole(req.Role))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User role updated successfully", dto.SafeUserFromEntity(user))
}

func (h *UserHandler) GetStats(c echo.Context) error {
	stats, err := h.Users.GetUserStats(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User statistics retrieved successfully", stats)
}

func (h *UserHandler) bind(c echo.Context, target any) error {
	if err := c.Bind(target); err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) && httpErr.Code == http.StatusBadRequest {
			return apperr.New("Invalid JSON format in request body", http.StatusBadRequest, apperr.CodeInvalidJSON)
		}
		return err
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(target); err != nil {
			return err
		}
	}
	return nil
}

func parseUserID(c echo.Context) (uuid.UUID, error) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.New("Invalid user id", http.StatusBadRequest, apperr.CodeValidationError).
			WithData(map[string]any{"field": "id", "value": c.Param("id")})
	}
	return userID, nil
}
