package service

import (
	"context"
	"testing"
	"time"

	"panbot/model"
	"panbot/plugin"
	"panbot/util/cache"
)

func TestCacheSweeper_RunOnce(t *testing.T) {
	registry := plugin.NewRegistry()
	registry.Register(&stubStrategy{name: "upso", results: threeResults()})
	svc := NewSearchService(registry, NewSourceSelector(""), cache.NewResultCache(10, time.Millisecond))

	for _, conv := range []int64{1, 2} {
		if _, err := svc.Search(context.Background(), model.SearchQuery{Keyword: "x", ConversationID: conv}); err != nil {
			t.Fatalf("Search: %v", err)
		}
	}
	codes := cache.NewCodeCache(time.Millisecond)
	codes.Set("8df3")

	time.Sleep(10 * time.Millisecond)

	sweeper := NewCacheSweeper(svc, "", codes)
	results, cleared := sweeper.RunOnce()
	if results != 2 || cleared != 1 {
		t.Fatalf("RunOnce = %d, %d; want 2, 1", results, cleared)
	}
	if _, err := svc.SelectByIndex(context.Background(), 1, 1); err == nil {
		t.Fatal("expired results should be gone")
	}
}

func TestCacheSweeper_InvalidSpec(t *testing.T) {
	sweeper := NewCacheSweeper(nil, "not a spec")
	if err := sweeper.Start(); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}
