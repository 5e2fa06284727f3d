package transport

import "time"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type EmailCheckRequest struct {
	Email string `json:"email"`
}

type PasswordCheckRequest struct {
	Password string `json:"password"`
}

type PatchUserRequest struct {
	Nickname     *string `json:"nickname"`
	Phone        *string `json:"phone"`
	Password     *string `json:"password"`
	Introduction *string `json:"introduction"`
}

type DisableUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RoleRequest struct {
	Role string `json:"role"`
}

type CreatePostingRequest struct {
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	CentName        string    `json:"centName"`
	CentDescription string    `json:"centDescription"`
	Deadline        time.Time `json:"deadline"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	ApplyCount      int       `json:"applyCount"`
	RegisterCount   int       `json:"registerCount"`
	ActType         string    `json:"actType"`
	Teenager        bool      `json:"teenager"`
}

type PostingStatusRequest struct {
	StatusName string `json:"statusName"`
}

type ReportedTimesRequest struct {
	ReportedTimes *int `json:"reportedTimes"`
}

type CommunityPostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	PostType string `json:"postType"`
}

type CommentRequest struct {
	Content string `json:"content"`
}
