package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

func ValidRole(r string) bool { return r == RoleAdmin || r == RoleUser }

type User struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Email        string     `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Name         string     `gorm:"size:64" json:"name"`
	PasswordHash string     `gorm:"size:100;not null" json:"-"`
	Role         string     `gorm:"size:16;not null;default:user" json:"role"`
	IsActive     bool       `gorm:"not null;default:true" json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// Principal 挂在已鉴权请求上的身份
type Principal struct {
	ID   string
	Role string
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
