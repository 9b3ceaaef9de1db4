package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/botlink/botlink/internal/model"
)

func mapping(code string) *model.CodeMapping {
	return &model.CodeMapping{
		Code: code,
		Attribution: model.ClickAttribution{
			Slug:  "promo",
			UTM:   model.UTMParams{Source: "linkedin"},
			Extra: map[string]string{"ref": "abc"},
		},
		BotUsername: "SalesBot",
		CreatedAt:   time.Now().UTC(),
	}
}

func TestResolution_HitAndMiss(t *testing.T) {
	t.Parallel()

	c := NewResolution(8, time.Minute)

	if _, ok := c.Get("absent"); ok {
		t.Error("Get() on empty cache reported a hit")
	}

	c.Set("abc", mapping("abc"))
	got, ok := c.Get("abc")
	if !ok {
		t.Fatal("Get() after Set() reported a miss")
	}
	if got.BotUsername != "SalesBot" {
		t.Errorf("BotUsername = %q, want SalesBot", got.BotUsername)
	}
}

func TestResolution_ReturnsDeepCopies(t *testing.T) {
	t.Parallel()

	c := NewResolution(8, time.Minute)
	m := mapping("abc")
	c.Set("abc", m)

	// Mutations of the inserted value must not leak into the cache.
	m.BotUsername = "Evil"
	m.Attribution.Extra["ref"] = "mutated"

	first, _ := c.Get("abc")
	first.Attribution.Extra["ref"] = "also-mutated"

	second, ok := c.Get("abc")
	if !ok {
		t.Fatal("Get() reported a miss")
	}
	if second.BotUsername != "SalesBot" {
		t.Errorf("BotUsername = %q, cached state was mutated through a reference", second.BotUsername)
	}
	if second.Attribution.Extra["ref"] != "abc" {
		t.Errorf("Extra[ref] = %q, cached state was mutated through a reference", second.Attribution.Extra["ref"])
	}
}

func TestResolution_Delete(t *testing.T) {
	t.Parallel()

	c := NewResolution(8, time.Minute)
	c.Set("abc", mapping("abc"))
	c.Delete("abc")

	if _, ok := c.Get("abc"); ok {
		t.Error("Get() after Delete() reported a hit")
	}
}

func TestResolution_EvictsLRUAtCapacity(t *testing.T) {
	t.Parallel()

	c := NewResolution(2, time.Minute)
	c.Set("a", mapping("a"))
	c.Set("b", mapping("b"))

	// Touch "a" so "b" becomes the least recently used entry.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("Get(a) reported a miss")
	}

	c.Set("c", mapping("c"))

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry survived eviction")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry was evicted")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("newly added entry missing")
	}
}

func TestResolution_EntriesExpire(t *testing.T) {
	t.Parallel()

	c := NewResolution(8, 20*time.Millisecond)
	c.Set("abc", mapping("abc"))

	time.Sleep(50 * time.Millisecond)

	if _, ok := c.Get("abc"); ok {
		t.Error("entry survived past its TTL")
	}
}

func TestResolution_Len(t *testing.T) {
	t.Parallel()

	c := NewResolution(8, time.Minute)
	for i := 0; i < 3; i++ {
		code := fmt.Sprintf("code-%d", i)
		c.Set(code, mapping(code))
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}
