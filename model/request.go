package model

// SearchQuery 调用方发起的搜索参数
type SearchQuery struct {
	Keyword        string       `json:"kw" form:"kw" binding:"required"` // 搜索关键词
	Page           int          `json:"page" form:"page"`                // 页码，默认1
	SearchType     int          `json:"s_type" form:"s_type"`            // 资源类型，默认2
	Origin         int          `json:"from" form:"from"`                // 来源标识，默认1
	ConversationID int64        `json:"conv" form:"conv"`                // 会话标识，私聊为0
	Source         SearchSource `json:"src" form:"src"`                  // 指定搜索源，为空时使用当前源
}

// SelectRequest 按序号选择上次搜索结果
type SelectRequest struct {
	ConversationID int64 `json:"conv" form:"conv"`
	Index          int   `json:"index" form:"index" binding:"required"`
}

// SwitchSourceRequest 切换当前搜索源
type SwitchSourceRequest struct {
	Source string `json:"src" binding:"required"`
}

// CommandRequest 来自聊天传输层的一条命令消息
type CommandRequest struct {
	Text    string `json:"text" binding:"required"`
	UserID  int64  `json:"user_id"`
	GroupID int64  `json:"group_id"` // 私聊为0
}
