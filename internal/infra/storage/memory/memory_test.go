package memory

import (
	"context"
	"testing"
	"time"

	"tripdesk/internal/app/session"
	"tripdesk/internal/domain/catalog"
	"tripdesk/internal/domain/search"
)

func newSession(id, inquiryToken string) *session.Session {
	stay := search.SearchContext{CityName: "Porto", InquiryToken: inquiryToken}
	return session.New(id, nil, stay, nil, nil, search.SortBy{ID: 1, Value: "relevance"}, nil)
}

func TestRegistryReplacesSameInquiryOwner(t *testing.T) {
	reg := NewSessionRegistry()

	first := newSession("s-1", "inq-7")
	if retired := reg.Replace(first); retired != nil {
		t.Fatalf("retired = %v, want nil on first insert", retired.ID())
	}

	second := newSession("s-2", "inq-7")
	retired := reg.Replace(second)
	if retired == nil || retired.ID() != "s-1" {
		t.Fatalf("retired = %v, want s-1", retired)
	}
	if _, ok := reg.Get("s-1"); ok {
		t.Fatal("retired session still resolvable")
	}
	if got, ok := reg.Get("s-2"); !ok || got.ID() != "s-2" {
		t.Fatal("new session not resolvable")
	}
}

func TestRegistryKeepsDistinctInquiries(t *testing.T) {
	reg := NewSessionRegistry()
	reg.Replace(newSession("s-1", "inq-1"))
	reg.Replace(newSession("s-2", "inq-2"))
	if _, ok := reg.Get("s-1"); !ok {
		t.Fatal("s-1 evicted by unrelated inquiry")
	}
	if _, ok := reg.Get("s-2"); !ok {
		t.Fatal("s-2 missing")
	}
}

func TestRegistryRemove(t *testing.T) {
	reg := NewSessionRegistry()
	reg.Replace(newSession("s-1", "inq-1"))
	reg.Remove("s-1")
	if _, ok := reg.Get("s-1"); ok {
		t.Fatal("removed session still resolvable")
	}
	// the inquiry slot is free again
	if retired := reg.Replace(newSession("s-3", "inq-1")); retired != nil {
		t.Fatalf("retired = %v, want nil after Remove", retired.ID())
	}
}

func TestCatalogCacheExpiry(t *testing.T) {
	cache := NewCatalogCache(time.Minute)
	current := time.Unix(1000, 0)
	cache.now = func() time.Time { return current }

	cat := &catalog.RateCatalog{HotelID: "H1"}
	if err := cache.Put(context.Background(), "k", cat); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := cache.Get(context.Background(), "k")
	if err != nil || !ok || got.HotelID != "H1" {
		t.Fatalf("Get = %v %v %v, want hit", got, ok, err)
	}

	current = current.Add(2 * time.Minute)
	if _, ok, _ := cache.Get(context.Background(), "k"); ok {
		t.Fatal("expired entry still served")
	}
}

func TestCatalogCacheMiss(t *testing.T) {
	cache := NewCatalogCache(time.Minute)
	if _, ok, err := cache.Get(context.Background(), "absent"); ok || err != nil {
		t.Fatalf("Get = %v %v, want clean miss", ok, err)
	}
}
