package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Роли пользователей
const (
	RoleAdmin     = "admin"
	RoleUser      = "user"
	RoleLIC       = "lic"
	RoleClothAura = "clothAura"
)

// Roles - все допустимые роли
var Roles = []string{RoleAdmin, RoleUser, RoleLIC, RoleClothAura}

type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"column:username;unique;not null;size:100;index" json:"username"`
	Name      string    `gorm:"column:name;size:100" json:"name"`
	Password  string    `gorm:"column:password;not null;size:100" json:"-"`
	Role      string    `gorm:"column:role;not null;size:20;default:'user'" json:"role"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate хук для валидации перед созданием
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if len(u.Username) < 3 || len(u.Username) > 100 {
		return errors.New("username must be between 3 and 100 characters")
	}
	if !ValidRole(u.Role) {
		return errors.New("unknown role " + u.Role)
	}
	return nil
}

// ValidRole проверяет, что роль известна
func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}
