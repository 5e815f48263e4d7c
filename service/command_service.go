package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"panbot/model"
	"panbot/util"
)

const (
	// CommandSearch 资源搜索命令
	CommandSearch = "资源搜"
	// CommandSwitchSource 搜索源切换命令
	CommandSwitchSource = "源切换"

	resultSeparator = "━━━━━━━━━━━━━━━━━━"
)

// CommandHandler 处理一条命令，返回回复文本
type CommandHandler func(ctx context.Context, args []string, req model.CommandRequest) string

// CommandService 聊天命令入口：命令词到处理函数的显式注册表
type CommandService struct {
	search   *SearchService
	handlers map[string]CommandHandler
	order    []string
}

// NewCommandService 创建命令服务并注册内置命令
func NewCommandService(search *SearchService) *CommandService {
	s := &CommandService{
		search:   search,
		handlers: make(map[string]CommandHandler),
	}
	s.Register(CommandSearch, s.handleSearch)
	s.Register(CommandSwitchSource, s.handleSwitchSource)
	return s
}

// Register 注册命令处理函数
func (s *CommandService) Register(name string, handler CommandHandler) {
	if name == "" || handler == nil {
		return
	}
	if _, exists := s.handlers[name]; !exists {
		s.order = append(s.order, name)
	}
	s.handlers[name] = handler
}

// Commands 返回已注册的命令词
func (s *CommandService) Commands() []string {
	commands := make([]string, len(s.order))
	copy(commands, s.order)
	return commands
}

// Handle 解析命令文本并分发，未知命令返回 Handled=false
func (s *CommandService) Handle(ctx context.Context, req model.CommandRequest) model.CommandResponse {
	fields := strings.Fields(req.Text)
	if len(fields) == 0 {
		return model.CommandResponse{}
	}

	handler, ok := s.handlers[fields[0]]
	if !ok {
		return model.CommandResponse{}
	}
	return model.CommandResponse{
		Reply:   handler(ctx, fields[1:], req),
		Handled: true,
	}
}

// handleSearch 资源搜 <关键词|序号>
func (s *CommandService) handleSearch(ctx context.Context, args []string, req model.CommandRequest) string {
	if len(args) == 0 || args[0] == "" {
		return "请输入要搜索的资源"
	}
	// 群聊按群隔离，私聊共用0
	conversationID := req.GroupID

	if util.IsIndexSelection(args[0]) {
		return s.selectResult(ctx, conversationID, args[0])
	}

	resp, err := s.search.Search(ctx, model.SearchQuery{
		Keyword:        args[0],
		Page:           1,
		SearchType:     2,
		Origin:         1,
		ConversationID: conversationID,
	})
	if err != nil {
		log.Warn().Err(err).Str("keyword", args[0]).Msg("资源搜索失败")
		return "❌ 搜索失败，请稍后再试"
	}
	if len(resp.Results) == 0 {
		return "❌ 未找到相关资源"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🔍 %s搜索结果：\n\n", s.search.SourceName(resp.Source))

	// upso直接显示链接，其他源显示序号列表
	if resp.Source == model.SourceUpSo {
		for _, item := range resp.Results {
			fmt.Fprintf(&sb, "📑 标题：%s\n", item.Title)
			fmt.Fprintf(&sb, "🔗 链接：%s\n", item.Link)
			sb.WriteString(resultSeparator + "\n\n")
		}
		return sb.String()
	}

	for i, item := range resp.Results {
		fmt.Fprintf(&sb, "%d、%s\n", i+1, item.Title)
	}
	sb.WriteString("\n💡 请回复序号查看详细链接")
	return sb.String()
}

func (s *CommandService) selectResult(ctx context.Context, conversationID int64, arg string) string {
	// 溢出时为0，按无效序号处理
	index := util.StringToInt(arg)

	// 结果本身已是直链的源（upso）没有详情，SelectByIndex 返回缓存项而不是提示未找到
	detail, err := s.search.SelectByIndex(ctx, conversationID, index)
	switch {
	case errors.Is(err, ErrCacheMiss):
		return "❌ 请先搜索资源"
	case errors.Is(err, ErrIndexOutOfRange):
		return "❌ 序号无效"
	case err != nil:
		log.Warn().Err(err).Int64("conversation", conversationID).Int("index", index).Msg("获取详细链接失败")
		return "❌ 未找到详细链接"
	}

	if detail.Link == "" || detail.Link == model.UnresolvedLink {
		return "❌ 未找到详细链接"
	}
	return fmt.Sprintf("📑 标题：%s\n🔗 链接：%s", detail.Title, detail.Link)
}

// handleSwitchSource 源切换 [源名称]
func (s *CommandService) handleSwitchSource(ctx context.Context, args []string, req model.CommandRequest) string {
	if len(args) == 0 {
		return s.listSources()
	}

	if _, err := s.search.SwitchSource(args[0]); err != nil {
		return "❌ 无效的搜索源，可用源：\n" + s.listSources()
	}
	return fmt.Sprintf("✅ 已切换到 %s 搜索源", s.search.CurrentSourceName())
}

func (s *CommandService) listSources() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔍 当前搜索源：%s\n\n", s.search.CurrentSourceName())
	sb.WriteString("📑 可用搜索源列表：\n")

	for _, info := range s.search.SourceInfos() {
		marker := "⭕️"
		if info.Current {
			marker = "✅"
		}
		fmt.Fprintf(&sb, "%s %s\n", marker, info.Name)
	}

	sb.WriteString("\n使用方法：源切换 <源名称> 进行切换")
	return sb.String()
}
