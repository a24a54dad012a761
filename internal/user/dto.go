// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/tasktrack/tasktrack-api/internal/core"
)

type CreateUserRequest struct {
	UserName string `json:"userName" validate:"required,notblank,max=50"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	FullName string `json:"fullName" validate:"required,notblank,max=100"`
	Role     string `json:"role"     validate:"required,oneof=ADMIN PROJECT_MANAGER DEVELOPER TESTER"`
}

func (r CreateUserRequest) ToUser() User {
	return User{
		UserName: r.UserName,
		Email:    r.Email,
		FullName: r.FullName,
		Role:     Role(r.Role),
	}
}

// UpdateUserRequest replaces every mutable field, so all of them are
// required. Active is a pointer to tell an explicit false from a missing
// field.
type UpdateUserRequest struct {
	UserName string `json:"userName" validate:"required,notblank,max=50"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	FullName string `json:"fullName" validate:"required,notblank,max=100"`
	Role     string `json:"role"     validate:"required,oneof=ADMIN PROJECT_MANAGER DEVELOPER TESTER"`
	Active   *bool  `json:"active"   validate:"required"`
}

func (r UpdateUserRequest) ToUser() User {
	u := User{
		UserName: r.UserName,
		Email:    r.Email,
		FullName: r.FullName,
		Role:     Role(r.Role),
	}
	if r.Active != nil {
		u.Active = *r.Active
	}
	return u
}

type UserResponse struct {
	ID        int64     `json:"id"`
	UserName  string    `json:"userName"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type AvailabilityResponse struct {
	UserName          string `json:"userName,omitempty"`
	UserNameAvailable *bool  `json:"userNameAvailable,omitempty"`
	Email             string `json:"email,omitempty"`
	EmailAvailable    *bool  `json:"emailAvailable,omitempty"`
}

type StatsResponse struct {
	Total    int64          `json:"total"`
	Active   int64          `json:"active"`
	Inactive int64          `json:"inactive"`
	ByRole   map[Role]int64 `json:"byRole"`
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		UserName:  u.UserName,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}

func ToPagedResponse(p Page) core.PagedResponse[UserResponse] {
	return core.PagedResponse[UserResponse]{
		Content:       ToUserResponseList(p.Items),
		Page:          p.Number,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		First:         p.First,
		Last:          p.Last,
	}
}

func ToStatsResponse(s *Stats) StatsResponse {
	return StatsResponse{
		Total:    s.Active + s.Inactive,
		Active:   s.Active,
		Inactive: s.Inactive,
		ByRole:   s.ByRole,
	}
}
