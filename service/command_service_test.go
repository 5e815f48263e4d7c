package service

import (
	"context"
	"strings"
	"testing"

	"panbot/model"
)

func newTestCommandService(upso, catso *stubStrategy) *CommandService {
	return NewCommandService(newTestSearchService(upso, catso))
}

func TestHandle_UnknownCommand(t *testing.T) {
	svc := newTestCommandService(&stubStrategy{name: "upso"}, &stubStrategy{name: "catso"})
	for _, text := range []string{"", "   ", "hello world"} {
		if resp := svc.Handle(context.Background(), model.CommandRequest{Text: text}); resp.Handled {
			t.Fatalf("Handle(%q) should not be handled", text)
		}
	}
	if got := svc.Commands(); len(got) != 2 || got[0] != CommandSearch || got[1] != CommandSwitchSource {
		t.Fatalf("Commands = %v", got)
	}
}

func TestSearchCommand_UpSoFormat(t *testing.T) {
	upso := &stubStrategy{name: "upso", results: threeResults()[:2]}
	svc := newTestCommandService(upso, &stubStrategy{name: "catso"})

	resp := svc.Handle(context.Background(), model.CommandRequest{Text: "资源搜 电影", GroupID: 100})
	if !resp.Handled {
		t.Fatal("command not handled")
	}
	want := "🔍 upso搜索结果：\n\n" +
		"📑 标题：A\n🔗 链接：https://pan.test/a\n━━━━━━━━━━━━━━━━━━\n\n" +
		"📑 标题：B\n🔗 链接：https://pan.test/b\n━━━━━━━━━━━━━━━━━━\n\n"
	if resp.Reply != want {
		t.Fatalf("reply = %q", resp.Reply)
	}
	if upso.lastReq.SearchType != 2 || upso.lastReq.Origin != 1 || upso.lastReq.Page != 1 {
		t.Fatalf("request = %+v", upso.lastReq)
	}
}

func TestSearchCommand_NumberedListAndSelect(t *testing.T) {
	catso := &stubStrategy{name: "catso", results: threeResults()}
	svc := newTestCommandService(&stubStrategy{name: "upso"}, catso)
	ctx := context.Background()

	svc.Handle(ctx, model.CommandRequest{Text: "源切换 catso"})
	resp := svc.Handle(ctx, model.CommandRequest{Text: "资源搜 电影", GroupID: 7})
	want := "🔍 catso搜索结果：\n\n1、A\n2、B\n3、C\n\n💡 请回复序号查看详细链接"
	if resp.Reply != want {
		t.Fatalf("reply = %q", resp.Reply)
	}

	resp = svc.Handle(ctx, model.CommandRequest{Text: "资源搜 2", GroupID: 7})
	if resp.Reply != "📑 标题：B\n🔗 链接：resolved:https://pan.test/b" {
		t.Fatalf("select reply = %q", resp.Reply)
	}

	// 其他群没有搜索过
	resp = svc.Handle(ctx, model.CommandRequest{Text: "资源搜 1", GroupID: 8})
	if resp.Reply != "❌ 请先搜索资源" {
		t.Fatalf("reply = %q", resp.Reply)
	}

	for _, text := range []string{"资源搜 0", "资源搜 4", "资源搜 99999999999999999999"} {
		resp = svc.Handle(ctx, model.CommandRequest{Text: text, GroupID: 7})
		if resp.Reply != "❌ 序号无效" {
			t.Fatalf("Handle(%q) = %q", text, resp.Reply)
		}
	}
}

func TestSearchCommand_Messages(t *testing.T) {
	catso := &stubStrategy{name: "catso", results: threeResults(), details: []model.SearchResult{{Title: "A", Link: model.UnresolvedLink}}}
	svc := newTestCommandService(&stubStrategy{name: "upso"}, catso)
	ctx := context.Background()

	if resp := svc.Handle(ctx, model.CommandRequest{Text: "资源搜"}); resp.Reply != "请输入要搜索的资源" {
		t.Fatalf("reply = %q", resp.Reply)
	}
	if resp := svc.Handle(ctx, model.CommandRequest{Text: "资源搜 电影"}); resp.Reply != "❌ 未找到相关资源" {
		t.Fatalf("reply = %q", resp.Reply)
	}

	svc.Handle(ctx, model.CommandRequest{Text: "源切换 catso"})
	svc.Handle(ctx, model.CommandRequest{Text: "资源搜 电影"})
	if resp := svc.Handle(ctx, model.CommandRequest{Text: "资源搜 1"}); resp.Reply != "❌ 未找到详细链接" {
		t.Fatalf("reply = %q", resp.Reply)
	}
}

func TestSearchCommand_SelectDirectLinkSource(t *testing.T) {
	upso := &stubStrategy{name: "upso", results: threeResults(), details: []model.SearchResult{}}
	svc := newTestCommandService(upso, &stubStrategy{name: "catso"})
	ctx := context.Background()

	svc.Handle(ctx, model.CommandRequest{Text: "资源搜 电影", GroupID: 3})
	resp := svc.Handle(ctx, model.CommandRequest{Text: "资源搜 2", GroupID: 3})
	if resp.Reply != "📑 标题：B\n🔗 链接：https://pan.test/b" {
		t.Fatalf("select reply = %q", resp.Reply)
	}
	if len(upso.detailCalls) != 1 {
		t.Fatalf("detail calls = %v", upso.detailCalls)
	}
}

func TestSwitchSourceCommand(t *testing.T) {
	svc := newTestCommandService(&stubStrategy{name: "upso"}, &stubStrategy{name: "catso"})
	ctx := context.Background()

	list := svc.Handle(ctx, model.CommandRequest{Text: "源切换"}).Reply
	want := "🔍 当前搜索源：upso\n\n📑 可用搜索源列表：\n✅ upso\n⭕️ catso\n\n使用方法：源切换 <源名称> 进行切换"
	if list != want {
		t.Fatalf("list = %q", list)
	}

	if reply := svc.Handle(ctx, model.CommandRequest{Text: "源切换 CatSo"}).Reply; reply != "✅ 已切换到 catso 搜索源" {
		t.Fatalf("reply = %q", reply)
	}

	reply := svc.Handle(ctx, model.CommandRequest{Text: "源切换 baidu"}).Reply
	if !strings.HasPrefix(reply, "❌ 无效的搜索源，可用源：\n🔍 当前搜索源：catso") {
		t.Fatalf("reply = %q", reply)
	}
	if !strings.Contains(reply, "⭕️ upso\n✅ catso") {
		t.Fatalf("reply = %q", reply)
	}
}
