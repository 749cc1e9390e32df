package dto

type UpdateUserRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=100"`
	Avatar *string `json:"avatar" validate:"omitempty,url"`
	Role   *string `json:"role" validate:"omitempty,oneof=USER ADMIN SUPER_ADMIN"`
	Status *string `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE BLOCKED PENDING"`
}

// UpdateMyProfileRequest is the self-service subset of UpdateUserRequest:
// role and status stay admin-only.
type UpdateMyProfileRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=100"`
	Avatar *string `json:"avatar" validate:"omitempty,url"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE INACTIVE BLOCKED PENDING"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=USER ADMIN SUPER_ADMIN"`
}

type UserListData struct {
	Users      []SafeUser `json:"users"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	TotalPages int64      `json:"totalPages"`
}

type UserStatsData struct {
	TotalUsers      int64            `json:"totalUsers"`
	ActiveUsers     int64            `json:"activeUsers"`
	BlockedUsers    int64            `json:"blockedUsers"`
	UsersByRole     map[string]int64 `json:"usersByRole"`
	UsersByProvider map[string]int64 `json:"usersByProvider"`
}
