package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"panbot/model"
	"panbot/plugin"
	"panbot/service"
	"panbot/util"
	jsonutil "panbot/util/json"
)

// Handler HTTP处理器，持有各服务的引用
type Handler struct {
	search   *service.SearchService
	commands *service.CommandService
	history  *service.HistoryService
}

// NewHandler 创建HTTP处理器，history 为nil时历史接口返回503
func NewHandler(search *service.SearchService, commands *service.CommandService, history *service.HistoryService) *Handler {
	return &Handler{
		search:   search,
		commands: commands,
		history:  history,
	}
}

// respond 使用sonic序列化响应
func respond(c *gin.Context, status int, response model.Response) {
	jsonData, err := jsonutil.Marshal(response)
	if err != nil {
		c.Data(http.StatusInternalServerError, "application/json", []byte(`{"code":500,"message":"序列化响应失败"}`))
		return
	}
	c.Data(status, "application/json", jsonData)
}

// respondError 将服务层错误映射为HTTP状态码
func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	respond(c, status, model.NewErrorResponse(status, err.Error()))
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, plugin.ErrStrategyNotFound), errors.Is(err, service.ErrCacheMiss):
		return http.StatusNotFound
	case errors.Is(err, service.ErrIndexOutOfRange), errors.Is(err, service.ErrEmptyKeyword):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, plugin.ErrCaptchaResolutionFailed),
		errors.Is(err, plugin.ErrNetworkFailure),
		errors.Is(err, plugin.ErrUpstreamRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Search 搜索处理函数，GET从URL参数获取，POST从请求体获取
func (h *Handler) Search(c *gin.Context) {
	var query model.SearchQuery

	if c.Request.Method == http.MethodGet {
		if err := c.ShouldBindQuery(&query); err != nil {
			respond(c, http.StatusBadRequest, model.NewErrorResponse(http.StatusBadRequest, "无效的请求参数: "+err.Error()))
			return
		}
	} else {
		data, err := c.GetRawData()
		if err != nil {
			respond(c, http.StatusBadRequest, model.NewErrorResponse(http.StatusBadRequest, "读取请求数据失败: "+err.Error()))
			return
		}
		if err := jsonutil.Unmarshal(data, &query); err != nil {
			respond(c, http.StatusBadRequest, model.NewErrorResponse(http.StatusBadRequest, "无效的请求参数: "+err.Error()))
			return
		}
	}

	result, err := h.search.Search(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, model.NewSuccessResponse(result))
}

// Select 按序号选择上次搜索结果并解析最终链接
func (h *Handler) Select(c *gin.Context) {
	var req model.SelectRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respond(c, http.StatusBadRequest, model.NewErrorResponse(http.StatusBadRequest, "无效的请求参数: "+err.Error()))
		return
	}

	result, err := h.search.SelectByIndex(c.Request.Context(), req.ConversationID, req.Index)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, model.NewSuccessResponse(result))
}

// Sources 列出搜索源
func (h *Handler) Sources(c *gin.Context) {
	respond(c, http.StatusOK, model.NewSuccessResponse(gin.H{
		"current": h.search.CurrentSource(),
		"sources": h.search.SourceInfos(),
	}))
}

// SwitchSource 切换当前搜索源
func (h *Handler) SwitchSource(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		respond(c, http.StatusBadRequest, model.NewErrorResponse(http.StatusBadRequest, "读取请求数据失败: "+err.Error()))
		return
	}
	var req model.SwitchSourceRequest
	if err := jsonutil.Unmarshal(data, &req); err != nil || req.Source == "" {
		respond(c, http.StatusBadRequest, model.NewErrorResponse(http.StatusBadRequest, "无效的请求参数"))
		return
	}

	source, err := h.search.SwitchSource(req.Source)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, model.NewSuccessResponse(gin.H{
		"current": source,
		"name":    h.search.CurrentSourceName(),
	}))
}

// Command 处理聊天命令文本
func (h *Handler) Command(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		respond(c, http.StatusBadRequest, model.NewErrorResponse(http.StatusBadRequest, "读取请求数据失败: "+err.Error()))
		return
	}
	var req model.CommandRequest
	if err := jsonutil.Unmarshal(data, &req); err != nil {
		respond(c, http.StatusBadRequest, model.NewErrorResponse(http.StatusBadRequest, "无效的请求参数: "+err.Error()))
		return
	}

	respond(c, http.StatusOK, model.NewSuccessResponse(h.commands.Handle(c.Request.Context(), req)))
}

// History 获取会话的搜索历史
func (h *Handler) History(c *gin.Context) {
	if h.history == nil {
		respond(c, http.StatusServiceUnavailable, model.NewErrorResponse(http.StatusServiceUnavailable, "搜索历史未启用"))
		return
	}

	conversationID := util.StringToInt64(c.Query("conv"))
	limit := util.StringToInt(c.Query("limit"))
	history, err := h.history.List(c.Request.Context(), conversationID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, model.NewSuccessResponse(gin.H{
		"history": history,
		"total":   len(history),
	}))
}

// ClearHistory 清空会话的搜索历史
func (h *Handler) ClearHistory(c *gin.Context) {
	if h.history == nil {
		respond(c, http.StatusServiceUnavailable, model.NewErrorResponse(http.StatusServiceUnavailable, "搜索历史未启用"))
		return
	}

	conversationID := util.StringToInt64(c.Query("conv"))
	removed, err := h.history.Clear(c.Request.Context(), conversationID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, model.NewSuccessResponse(gin.H{
		"removed": removed,
	}))
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	sources := h.search.ListSources()
	respond(c, http.StatusOK, model.NewSuccessResponse(gin.H{
		"status":          "ok",
		"current_source":  h.search.CurrentSource(),
		"sources":         sources,
		"source_count":    len(sources),
		"history_enabled": h.history != nil,
		"commands":        h.commands.Commands(),
	}))
}
