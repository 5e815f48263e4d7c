package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"panbot/model"
	"panbot/plugin"
	"panbot/util/cache"
)

// stubStrategy 返回固定结果并记录调用
type stubStrategy struct {
	name        string
	results     []model.SearchResult
	err         error
	details     []model.SearchResult
	lastReq     model.SearchRequest
	lastBudget  int
	detailCalls []string
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Search(ctx context.Context, req model.SearchRequest, retryBudget int) ([]model.SearchResult, error) {
	s.lastReq = req
	s.lastBudget = retryBudget
	return s.results, s.err
}

func (s *stubStrategy) GetDetail(ctx context.Context, title, link string) ([]model.SearchResult, error) {
	s.detailCalls = append(s.detailCalls, link)
	if s.details != nil {
		return s.details, nil
	}
	return []model.SearchResult{{Title: title, Link: "resolved:" + link}}, nil
}

type fakeHistory struct {
	entries []*model.SearchHistory
	err     error
}

func (f *fakeHistory) Record(ctx context.Context, entry *model.SearchHistory) error {
	f.entries = append(f.entries, entry)
	return f.err
}

func threeResults() []model.SearchResult {
	return []model.SearchResult{
		{Title: "A", Link: "https://pan.test/a", SourceItemID: "1"},
		{Title: "B", Link: "https://pan.test/b", SourceItemID: "2"},
		{Title: "C", Link: "https://pan.test/c", SourceItemID: "3"},
	}
}

func newTestSearchService(strategies ...plugin.SearchStrategy) *SearchService {
	registry := plugin.NewRegistry()
	for _, s := range strategies {
		registry.Register(s)
	}
	return NewSearchService(registry, NewSourceSelector(model.SourceUpSo), cache.NewResultCache(10, time.Hour))
}

func TestSearch_UsesCurrentSourceAndCaches(t *testing.T) {
	upso := &stubStrategy{name: "upso", results: threeResults()}
	catso := &stubStrategy{name: "catso"}
	svc := newTestSearchService(upso, catso)

	resp, err := svc.Search(context.Background(), model.SearchQuery{Keyword: " 电影 ", ConversationID: 42})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Source != model.SourceUpSo || resp.Total != 3 {
		t.Fatalf("resp = %+v", resp)
	}
	if upso.lastReq.Keyword != "电影" || upso.lastReq.Page != 1 || upso.lastReq.SearchType != 2 || upso.lastReq.Origin != 1 {
		t.Fatalf("request = %+v", upso.lastReq)
	}
	if upso.lastBudget != defaultRetryBudget {
		t.Fatalf("retry budget = %d", upso.lastBudget)
	}

	for i := 1; i <= 3; i++ {
		if _, err := svc.SelectByIndex(context.Background(), 42, i); err != nil {
			t.Fatalf("SelectByIndex(%d): %v", i, err)
		}
	}
}

func TestSearch_ExplicitSource(t *testing.T) {
	upso := &stubStrategy{name: "upso"}
	catso := &stubStrategy{name: "catso", results: threeResults()}
	svc := newTestSearchService(upso, catso)

	resp, err := svc.Search(context.Background(), model.SearchQuery{Keyword: "x", Source: "CatSo"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Source != model.SourceCatSo || catso.lastReq.Keyword != "x" {
		t.Fatalf("resp = %+v", resp)
	}
	if svc.CurrentSource() != model.SourceUpSo {
		t.Fatal("explicit source must not change the current source")
	}
}

func TestSearch_FiltersSentinel(t *testing.T) {
	upso := &stubStrategy{name: "upso", results: []model.SearchResult{
		{Title: "A", SourceItemID: "1"},
		{Title: "ad", SourceItemID: model.SentinelItemID},
	}}
	svc := newTestSearchService(upso)

	resp, err := svc.Search(context.Background(), model.SearchQuery{Keyword: "x"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Total != 1 || resp.Results[0].Title != "A" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestSearch_Errors(t *testing.T) {
	failing := &stubStrategy{name: "upso", err: plugin.ErrCaptchaResolutionFailed}
	svc := newTestSearchService(failing)

	if _, err := svc.Search(context.Background(), model.SearchQuery{Keyword: "  "}); !errors.Is(err, ErrEmptyKeyword) {
		t.Fatalf("err = %v, want ErrEmptyKeyword", err)
	}
	if _, err := svc.Search(context.Background(), model.SearchQuery{Keyword: "x", Source: "nope"}); !errors.Is(err, plugin.ErrStrategyNotFound) {
		t.Fatalf("err = %v, want ErrStrategyNotFound", err)
	}
	if _, err := svc.Search(context.Background(), model.SearchQuery{Keyword: "x", ConversationID: 5}); !errors.Is(err, plugin.ErrCaptchaResolutionFailed) {
		t.Fatalf("err = %v, want ErrCaptchaResolutionFailed", err)
	}
	// 失败的搜索不写缓存
	if _, err := svc.SelectByIndex(context.Background(), 5, 1); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("err = %v, want ErrCacheMiss", err)
	}
}

func TestSelectByIndex_Bounds(t *testing.T) {
	upso := &stubStrategy{name: "upso", results: threeResults()}
	svc := newTestSearchService(upso)
	if _, err := svc.Search(context.Background(), model.SearchQuery{Keyword: "x", ConversationID: 1}); err != nil {
		t.Fatalf("Search: %v", err)
	}

	for _, index := range []int{0, 4, -1} {
		if _, err := svc.SelectByIndex(context.Background(), 1, index); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("SelectByIndex(%d) err = %v, want ErrIndexOutOfRange", index, err)
		}
	}
	if _, err := svc.SelectByIndex(context.Background(), 2, 1); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("unseen conversation err = %v, want ErrCacheMiss", err)
	}

	got, err := svc.SelectByIndex(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("SelectByIndex: %v", err)
	}
	if got.Link != "resolved:https://pan.test/b" {
		t.Fatalf("detail = %+v", got)
	}
}

func TestSelectByIndex_UsesSourceOfCachedResults(t *testing.T) {
	upso := &stubStrategy{name: "upso"}
	catso := &stubStrategy{name: "catso", results: threeResults()}
	svc := newTestSearchService(upso, catso)

	if _, err := svc.SwitchSource("catso"); err != nil {
		t.Fatalf("SwitchSource: %v", err)
	}
	if _, err := svc.Search(context.Background(), model.SearchQuery{Keyword: "x"}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if _, err := svc.SwitchSource("upso"); err != nil {
		t.Fatalf("SwitchSource: %v", err)
	}

	if _, err := svc.SelectByIndex(context.Background(), 0, 1); err != nil {
		t.Fatalf("SelectByIndex: %v", err)
	}
	if len(catso.detailCalls) != 1 || len(upso.detailCalls) != 0 {
		t.Fatalf("detail calls catso=%v upso=%v", catso.detailCalls, upso.detailCalls)
	}
}

func TestSelectByIndex_EmptyDetailReturnsItem(t *testing.T) {
	upso := &stubStrategy{name: "upso", results: threeResults(), details: []model.SearchResult{}}
	svc := newTestSearchService(upso)
	if _, err := svc.Search(context.Background(), model.SearchQuery{Keyword: "x"}); err != nil {
		t.Fatalf("Search: %v", err)
	}

	got, err := svc.SelectByIndex(context.Background(), 0, 3)
	if err != nil {
		t.Fatalf("SelectByIndex: %v", err)
	}
	if got.Title != "C" || got.Link != "https://pan.test/c" {
		t.Fatalf("got = %+v", got)
	}
}

func TestSwitchSource_ImmediatelyVisible(t *testing.T) {
	svc := newTestSearchService(&stubStrategy{name: "upso"}, &stubStrategy{name: "catso"})

	if svc.CurrentSourceName() != "upso" {
		t.Fatalf("default = %q", svc.CurrentSourceName())
	}
	if _, err := svc.SwitchSource("CATSO"); err != nil {
		t.Fatalf("SwitchSource: %v", err)
	}
	if svc.CurrentSourceName() != "catso" {
		t.Fatalf("current = %q, want catso", svc.CurrentSourceName())
	}
	if _, err := svc.SwitchSource("baidu"); !errors.Is(err, plugin.ErrStrategyNotFound) {
		t.Fatalf("err = %v, want ErrStrategyNotFound", err)
	}
	if svc.CurrentSource() != model.SourceCatSo {
		t.Fatal("failed switch must keep the current source")
	}

	infos := svc.SourceInfos()
	if len(infos) != 2 || infos[0].Current || !infos[1].Current {
		t.Fatalf("infos = %+v", infos)
	}
	if got := svc.ListSources(); len(got) != 2 || got[0] != model.SourceUpSo {
		t.Fatalf("ListSources = %v", got)
	}
}

func TestSwitchSource_UnregisteredKnownSource(t *testing.T) {
	svc := newTestSearchService(&stubStrategy{name: "upso"})
	if _, err := svc.SwitchSource("catso"); !errors.Is(err, plugin.ErrStrategyNotFound) {
		t.Fatalf("err = %v, want ErrStrategyNotFound", err)
	}
}

func TestSearch_RecordsHistory(t *testing.T) {
	history := &fakeHistory{err: errors.New("disk full")}
	svc := newTestSearchService(&stubStrategy{name: "upso", results: threeResults()})
	svc.SetHistory(history)

	// 历史写入失败不影响搜索
	if _, err := svc.Search(context.Background(), model.SearchQuery{Keyword: "x", ConversationID: 9}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(history.entries) != 1 {
		t.Fatalf("entries = %d", len(history.entries))
	}
	entry := history.entries[0]
	if entry.ConversationID != 9 || entry.Keyword != "x" || entry.ResultCount != 3 || entry.ID == "" {
		t.Fatalf("entry = %+v", entry)
	}
}
