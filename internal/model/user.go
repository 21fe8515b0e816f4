package model

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

// User is the minimal actor the exam engine needs: an identity, a role
// and a tenant (school). Full student/staff profiles live in the
// surrounding administration system.
// swagger:model User
type User struct {
	BaseModel
	SchoolID uint     `gorm:"index;type:bigint unsigned;not null" json:"schoolId"`
	ClassID  uint     `gorm:"index;type:bigint unsigned" json:"classId"`
	Name     string   `gorm:"size:100;not null" json:"name"`
	Email    string   `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password string   `gorm:"size:255;not null" json:"-"`
	Role     UserRole `gorm:"size:20;default:'student'" json:"role"`
}

func (User) TableName() string {
	return "users"
}
