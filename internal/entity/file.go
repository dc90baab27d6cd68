package entity

import "time"

// DbFile 表示用户上传的文件。Name 保留原始文件名，Path 为生成的唯一存储路径。
type DbFile struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(256);not null" json:"name"`
	Path      string    `gorm:"column:path;type:varchar(512);uniqueIndex;not null" json:"path"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UserID    uint      `gorm:"column:user_id;index;not null" json:"user_id"`
	User      *DbUser   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名。
func (DbFile) TableName() string {
	return "files"
}
