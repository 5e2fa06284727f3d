package models

import (
	"time"

	"github.com/Skotchmaster/maumeum/pkg/roles"
)

type User struct {
	ID            string     `gorm:"primaryKey;type:varchar(36)"     json:"id"`
	Nickname      string     `gorm:"not null"                        json:"nickname"`
	Email         string     `gorm:"uniqueIndex;not null"            json:"email"`
	Phone         string     `gorm:"not null"                        json:"phone"`
	Introduction  string     `                                       json:"introduction,omitempty"`
	Image         string     `                                       json:"image,omitempty"`
	PasswordHash  string     `gorm:"not null"                        json:"-"`
	Role          roles.Role `gorm:"not null;default:user;index"     json:"role"`
	RefreshToken  *string    `gorm:"index"                           json:"-"`
	ReportedTimes int        `gorm:"not null;default:0"              json:"reportedTimes"`
	CreatedAt     time.Time  `                                       json:"createdAt"`
	UpdatedAt     time.Time  `                                       json:"updatedAt"`
}

type PostingStatus string

const (
	PostingOpen   PostingStatus = "open"
	PostingClosed PostingStatus = "closed"
)

type Posting struct {
	ID              string        `gorm:"primaryKey;type:varchar(36)"  json:"id"`
	Title           string        `gorm:"not null"                     json:"title"`
	Content         string        `gorm:"not null"                     json:"content"`
	CentName        string        `gorm:"not null"                     json:"centName"`
	CentDescription string        `                                    json:"centDescription,omitempty"`
	StatusName      PostingStatus `gorm:"not null;default:open;index"  json:"statusName"`
	Deadline        time.Time     `gorm:"not null"                     json:"deadline"`
	StartDate       time.Time     `gorm:"not null"                     json:"startDate"`
	EndDate         time.Time     `gorm:"not null"                     json:"endDate"`
	ApplyCount      int           `gorm:"not null;default:0"           json:"applyCount"`
	RegisterCount   int           `gorm:"not null"                     json:"registerCount"`
	ActType         string        `                                    json:"actType,omitempty"`
	Teenager        bool          `gorm:"default:false"                json:"teenager"`
	RegisterUserID  string        `gorm:"index;type:varchar(36)"       json:"registerUserId"`
	IsReported      bool          `gorm:"not null;default:false;index" json:"isReported"`
	CreatedAt       time.Time     `                                    json:"createdAt"`
	UpdatedAt       time.Time     `                                    json:"updatedAt"`
}

// CommunityPost is a free-form board entry, separate from volunteer postings.
type CommunityPost struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)"     json:"id"`
	Title      string    `gorm:"not null"                        json:"title"`
	Content    string    `gorm:"not null"                        json:"content"`
	PostType   string    `gorm:"not null;index"                  json:"postType"`
	UserID     string    `gorm:"not null;index;type:varchar(36)" json:"userId"`
	IsReported bool      `gorm:"not null;default:false;index"    json:"isReported"`
	CreatedAt  time.Time `                                       json:"createdAt"`
	UpdatedAt  time.Time `                                       json:"updatedAt"`
}

type Comment struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"     json:"id"`
	PostID    string    `gorm:"not null;index;type:varchar(36)" json:"postId"`
	UserID    string    `gorm:"not null;index;type:varchar(36)" json:"userId"`
	Content   string    `gorm:"not null"                        json:"content"`
	CreatedAt time.Time `                                       json:"createdAt"`
	UpdatedAt time.Time `                                       json:"updatedAt"`
}

func All() []any {
	return []any{&User{}, &Posting{}, &CommunityPost{}, &Comment{}}
}
