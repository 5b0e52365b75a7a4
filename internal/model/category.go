package model

// Category 学分类别表，对应 categories（按学习规章区分）
type Category struct {
	CategoryID     string      `gorm:"type:varchar(50);primaryKey"  json:"id"`
	Studienordnung string      `gorm:"type:varchar(10);primaryKey"  json:"studienordnung"`
	Name           string      `gorm:"type:varchar(200);not null"   json:"name"`
	RequiredECTS   float64     `gorm:"type:numeric(5,1);not null"   json:"required_ects"`
	ModuleIDs      StringArray `gorm:"type:text[];not null"         json:"module_ids"`
	BaseModel
}

// TableName 指定表名
func (Category) TableName() string { return "categories" }

// Focus 专业方向表，对应 focuses
type Focus struct {
	FocusID        string      `gorm:"type:varchar(50);primaryKey"  json:"id"`
	Studienordnung string      `gorm:"type:varchar(10);primaryKey"  json:"studienordnung"`
	Name           string      `gorm:"type:varchar(200);not null"   json:"name"`
	ModuleIDs      StringArray `gorm:"type:text[];not null"         json:"module_ids"`
	BaseModel
}

// TableName 指定表名
func (Focus) TableName() string { return "focuses" }
