package entity

// UserUpdates 用户更新字段
type UserUpdates struct {
	Username     *string
	PasswordHash *string
	RoleID       *uint
	IsActive     *bool
	IsVerified   *bool
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u UserUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Username != nil {
		updates["username"] = *u.Username
	}
	if u.PasswordHash != nil {
		updates["password_hash"] = *u.PasswordHash
	}
	if u.RoleID != nil {
		updates["role_id"] = *u.RoleID
	}
	if u.IsActive != nil {
		updates["is_active"] = *u.IsActive
	}
	if u.IsVerified != nil {
		updates["is_verified"] = *u.IsVerified
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u UserUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// NoteUpdates 笔记更新字段
type NoteUpdates struct {
	Title    *string
	Intro    *string
	Text     *string
	IsPublic *bool
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u NoteUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Title != nil {
		updates["title"] = *u.Title
	}
	if u.Intro != nil {
		updates["intro"] = *u.Intro
	}
	if u.Text != nil {
		updates["text"] = *u.Text
	}
	if u.IsPublic != nil {
		updates["is_public"] = *u.IsPublic
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u NoteUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// SummaryUpdates 摘要更新字段
type SummaryUpdates struct {
	Name     *string
	IsPublic *bool
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u SummaryUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.IsPublic != nil {
		updates["is_public"] = *u.IsPublic
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u SummaryUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}
