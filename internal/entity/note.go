package entity

import "time"

// DbNote 表示用户撰写的笔记。AuthorID 创建后不可变，决定修改权限。
type DbNote struct {
	ID        uint          `gorm:"primarykey" json:"id"`
	Title     string        `gorm:"column:title;type:varchar(256);not null" json:"title"`
	Intro     string        `gorm:"column:intro;type:varchar(512)" json:"intro"`
	Text      string        `gorm:"column:text;type:text" json:"text"`
	IsPublic  bool          `gorm:"column:is_public;not null;default:false" json:"is_public"`
	CreatedAt time.Time     `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time     `gorm:"column:updated_at" json:"updated_at"`
	AuthorID  uint          `gorm:"column:author_id;index;not null" json:"author_id"`
	Author    *DbUser       `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Images    []DbNoteImage `gorm:"foreignKey:NoteID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

// TableName 指定表名。
func (DbNote) TableName() string {
	return "notes"
}

// DbNoteImage 表示附加到笔记的图片，随笔记级联删除。
type DbNoteImage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Path      string    `gorm:"column:path;type:varchar(512);uniqueIndex;not null" json:"path"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	NoteID    uint      `gorm:"column:note_id;index;not null" json:"note_id"`
	Note      *DbNote   `gorm:"foreignKey:NoteID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名。
func (DbNoteImage) TableName() string {
	return "note_images"
}

// DbNoteFavorite 是用户与笔记之间的收藏关系，复合主键保证同一对最多一行。
type DbNoteFavorite struct {
	UserID    uint      `gorm:"column:user_id;primaryKey" json:"user_id"`
	NoteID    uint      `gorm:"column:note_id;primaryKey" json:"note_id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	User      *DbUser   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Note      *DbNote   `gorm:"foreignKey:NoteID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名。
func (DbNoteFavorite) TableName() string {
	return "note_favorites"
}

// NoteCreateRequest is the payload for creating a note.
type NoteCreateRequest struct {
	Title    string `json:"title" binding:"required"`
	Intro    string `json:"intro"`
	Text     string `json:"text"`
	IsPublic bool   `json:"is_public"`
}

// NoteUpdateRequest is the payload for a partial note update.
type NoteUpdateRequest struct {
	Title    *string `json:"title,omitempty"`
	Intro    *string `json:"intro,omitempty"`
	Text     *string `json:"text,omitempty"`
	IsPublic *bool   `json:"is_public,omitempty"`
}

// DocumentQuery filters document listings. Filters are intersected.
type DocumentQuery struct {
	AuthorID *uint  `json:"user_id" form:"user_id"`
	IsPublic *bool  `json:"is_public" form:"is_public"`
	Username string `json:"username" form:"username"`
}
