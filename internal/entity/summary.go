package entity

import "time"

// DbSummary 表示上传的课程摘要文档，正文以文件形式保存在存储后端。
type DbSummary struct {
	ID        uint             `gorm:"primarykey" json:"id"`
	Name      string           `gorm:"column:name;type:varchar(256);not null" json:"name"`
	Path      string           `gorm:"column:path;type:varchar(512);uniqueIndex;not null" json:"path"`
	IsPublic  bool             `gorm:"column:is_public;not null;default:false" json:"is_public"`
	CreatedAt time.Time        `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time        `gorm:"column:updated_at" json:"updated_at"`
	AuthorID  uint             `gorm:"column:author_id;index;not null" json:"author_id"`
	Author    *DbUser          `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Images    []DbSummaryImage `gorm:"foreignKey:SummaryID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

// TableName 指定表名。
func (DbSummary) TableName() string {
	return "summaries"
}

// DbSummaryImage 表示附加到摘要的图片，随摘要级联删除。
type DbSummaryImage struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	Path      string     `gorm:"column:path;type:varchar(512);uniqueIndex;not null" json:"path"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	SummaryID uint       `gorm:"column:summary_id;index;not null" json:"summary_id"`
	Summary   *DbSummary `gorm:"foreignKey:SummaryID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名。
func (DbSummaryImage) TableName() string {
	return "summary_images"
}

// DbSummaryFavorite 是用户与摘要之间的收藏关系。
type DbSummaryFavorite struct {
	UserID    uint       `gorm:"column:user_id;primaryKey" json:"user_id"`
	SummaryID uint       `gorm:"column:summary_id;primaryKey" json:"summary_id"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	User      *DbUser    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Summary   *DbSummary `gorm:"foreignKey:SummaryID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名。
func (DbSummaryFavorite) TableName() string {
	return "summary_favorites"
}

// SummaryUpdateRequest is the payload for a partial summary update.
type SummaryUpdateRequest struct {
	Name     *string `json:"name,omitempty"`
	IsPublic *bool   `json:"is_public,omitempty"`
}
