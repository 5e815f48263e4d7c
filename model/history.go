package model

import "time"

// SearchHistory 一次关键词搜索的记录
type SearchHistory struct {
	ID             string       `gorm:"primaryKey;size:36" json:"id"`
	ConversationID int64        `gorm:"index:idx_history_conv_time,priority:1;not null" json:"conversation_id"`
	Keyword        string       `gorm:"size:255;not null" json:"keyword"`
	Source         SearchSource `gorm:"size:32;not null" json:"source"`
	ResultCount    int          `json:"result_count"`
	SearchedAt     time.Time    `gorm:"index:idx_history_conv_time,priority:2;not null" json:"searched_at"`
}

// TableName 指定表名
func (SearchHistory) TableName() string {
	return "search_histories"
}
