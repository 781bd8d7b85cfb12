package cache

import (
	"context"
	"testing"
	"time"

	"github.com/mkarlsven/weather-console/internal/models"
)

func sampleList() []models.Suggestion {
	return []models.Suggestion{
		{DisplayName: "London", RegionLabel: "England, United Kingdom", Latitude: 51.5, Longitude: -0.12},
		{DisplayName: "London", RegionLabel: "Ontario, Canada", Latitude: 42.98, Longitude: -81.25},
	}
}

func TestInMemory_GetMiss(t *testing.T) {
	c := NewInMemory()
	got, ok, err := c.Get(context.Background(), "lond")
	if err != nil {
		t.Fatalf("Get() err = %v", err)
	}
	if ok {
		t.Error("Get() ok = true on empty cache")
	}
	if got != nil {
		t.Errorf("Get() = %v, want nil", got)
	}
}

func TestInMemory_SetGet(t *testing.T) {
	c := NewInMemory()
	ctx := context.Background()
	want := sampleList()
	if err := c.Set(ctx, "lond", want, time.Minute); err != nil {
		t.Fatalf("Set() err = %v", err)
	}
	got, ok, err := c.Get(ctx, "lond")
	if err != nil {
		t.Fatalf("Get() err = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false after Set")
	}
	if len(got) != len(want) {
		t.Fatalf("Get() len = %d, want %d", len(got), len(want))
	}
	if got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestInMemory_EmptyListIsAHit(t *testing.T) {
	c := NewInMemory()
	ctx := context.Background()
	if err := c.Set(ctx, "zzzz", []models.Suggestion{}, time.Minute); err != nil {
		t.Fatalf("Set() err = %v", err)
	}
	got, ok, err := c.Get(ctx, "zzzz")
	if err != nil {
		t.Fatalf("Get() err = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false for cached empty list")
	}
	if len(got) != 0 {
		t.Errorf("Get() len = %d, want 0", len(got))
	}
}

func TestInMemory_Expiration(t *testing.T) {
	c := NewInMemory()
	ctx := context.Background()
	if err := c.Set(ctx, "lond", sampleList(), 10*time.Millisecond); err != nil {
		t.Fatalf("Set() err = %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	_, ok, err := c.Get(ctx, "lond")
	if err != nil {
		t.Fatalf("Get() err = %v", err)
	}
	if ok {
		t.Error("Get() ok = true after TTL elapsed")
	}
}

func TestMemcached_CancelledContext(t *testing.T) {
	c, err := NewMemcached("localhost:11211", 0, 0)
	if err != nil {
		t.Fatalf("NewMemcached() err = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := c.Get(ctx, "lond"); err == nil {
		t.Error("Get() with cancelled context: err = nil")
	}
	if err := c.Set(ctx, "lond", sampleList(), time.Minute); err == nil {
		t.Error("Set() with cancelled context: err = nil")
	}
}
