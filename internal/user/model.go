package user

import "gorm.io/gorm"

type User struct {
	gorm.Model
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Email             string `json:"email" gorm:"unique"`
	Phone             string `json:"phone"`
	Avatar            string `json:"avatar"`
	PasswordHash      string `json:"-"`
	Role              string `json:"role"`
	IsActive          bool   `json:"isActive" gorm:"default:true"`
	MustResetPassword bool   `json:"-"`
}
