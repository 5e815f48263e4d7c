package model

// SearchResponse 搜索响应
type SearchResponse struct {
	Source  SearchSource   `json:"source" sonic:"source"`
	Total   int            `json:"total" sonic:"total"`
	Results []SearchResult `json:"results" sonic:"results"`
}

// SourceInfo 搜索源信息
type SourceInfo struct {
	Source  SearchSource `json:"source" sonic:"source"`
	Name    string       `json:"name" sonic:"name"`
	Current bool         `json:"current" sonic:"current"`
}

// CommandResponse 命令回复
type CommandResponse struct {
	Reply   string `json:"reply" sonic:"reply"`
	Handled bool   `json:"handled" sonic:"handled"`
}

// Response API通用响应
type Response struct {
	Code    int         `json:"code" sonic:"code"`
	Message string      `json:"message" sonic:"message"`
	Data    interface{} `json:"data,omitempty" sonic:"data,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) Response {
	return Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) Response {
	return Response{
		Code:    code,
		Message: message,
	}
}
