package models

import "github.com/google/uuid"

// Bảng tin nội bộ do huấn luyện viên đăng
type InternalNews struct {
	BaseModel
	AuthorID uuid.UUID `gorm:"type:uuid;not null;index" json:"author"`
	Title    string    `gorm:"size:200;not null" json:"title"`
	Slug     string    `gorm:"size:220;index" json:"slug"`
	Content  string    `gorm:"type:text;not null" json:"content"`

	Author *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

func (InternalNews) TableName() string {
	return "internal_news"
}
