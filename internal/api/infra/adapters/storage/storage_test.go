package storage

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/foodme/internal/api/core/domain"
)

const restaurantsJSON = `[
  {"id":"esthers","name":"Esther's German Saloon","cuisine":"german","price":3,"rating":4,"days":[0,1,2]},
  {"id":"robatayaki","name":"Robatayaki Hachi","type":"Japanese","price":4,"rating":3},
  {"id":"tofuparadise","name":"BBQ Tofu Paradise","category":"vegetarian","price":2,"rating":5}
]`

const menusCSV = `Cuisine,Item Name,Price
german, Bratwurst , 7.95
German,Pretzel,3.5

japanese,Ramen,11
vegetarian,Tofu Skewer,6.25
vegetarian,Mystery,not-a-price
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRestaurants(t *testing.T) {
	t.Parallel()

	store, err := LoadRestaurants(writeFile(t, "restaurants.json", restaurantsJSON))
	require.NoError(t, err)
	assert.Equal(t, 3, store.Len())

	all, err := store.GetAll(context.Background())
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, r := range all {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"esthers", "robatayaki", "tofuparadise"}, ids)

	r, ok, err := store.GetByID(context.Background(), "esthers")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Esther's German Saloon", r.Name)
	assert.Equal(t, []int{0, 1, 2}, r.Days)

	_, ok, err = store.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadRestaurants_MissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	store, err := LoadRestaurants(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Zero(t, store.Len())
}

func TestLoadRestaurants_MalformedFile(t *testing.T) {
	t.Parallel()

	_, err := LoadRestaurants(writeFile(t, "bad.json", `{"id":`))
	assert.ErrorContains(t, err, "storage: decode restaurants")
}

func TestMemoryStore_AddReplacesInPlace(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	store.Add(domain.Restaurant{ID: "a", Name: "first"})
	store.Add(domain.Restaurant{ID: "b"})
	store.Add(domain.Restaurant{ID: "a", Name: "second"})

	all, err := store.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[0].Name)
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Add(domain.Restaurant{ID: string(rune('a' + i))})
		}()
		go func() {
			defer wg.Done()
			_, _ = store.GetAll(context.Background())
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, store.Len())
}

func TestMenuFor(t *testing.T) {
	t.Parallel()

	cat, err := ParseMenus(strings.NewReader(menusCSV))
	require.NoError(t, err)
	assert.Equal(t, 4, cat.Len())

	tests := []struct {
		name       string
		restaurant domain.Restaurant
		want       []domain.MenuItem
	}{
		{
			name:       "cuisine_case_insensitive",
			restaurant: domain.Restaurant{Cuisine: "GERMAN"},
			want:       []domain.MenuItem{{Name: "Bratwurst", Price: 7.95}, {Name: "Pretzel", Price: 3.5}},
		},
		{
			name:       "type_fallback",
			restaurant: domain.Restaurant{Type: "Japanese"},
			want:       []domain.MenuItem{{Name: "Ramen", Price: 11}},
		},
		{
			name:       "category_fallback_drops_bad_price",
			restaurant: domain.Restaurant{Category: "vegetarian"},
			want:       []domain.MenuItem{{Name: "Tofu Skewer", Price: 6.25}},
		},
		{
			name:       "no_cuisine",
			restaurant: domain.Restaurant{},
			want:       []domain.MenuItem{},
		},
		{
			name:       "unknown_cuisine",
			restaurant: domain.Restaurant{Cuisine: "martian"},
			want:       []domain.MenuItem{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cat.MenuFor(tt.restaurant))
		})
	}
}

func TestMenuFor_ReturnsCopy(t *testing.T) {
	t.Parallel()

	cat, err := ParseMenus(strings.NewReader(menusCSV))
	require.NoError(t, err)

	items := cat.MenuFor(domain.Restaurant{Cuisine: "german"})
	items[0].Name = "changed"
	assert.Equal(t, "Bratwurst", cat.MenuFor(domain.Restaurant{Cuisine: "german"})[0].Name)
}

func TestParseMenus_Errors(t *testing.T) {
	t.Parallel()

	_, err := ParseMenus(strings.NewReader("Cuisine,Name\nx,y\n"))
	assert.ErrorContains(t, err, `missing column "Item Name"`)

	cat, err := ParseMenus(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, cat.Len())
}

func TestLoadMenus_MissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	cat, err := LoadMenus(filepath.Join(t.TempDir(), "menus.csv"))
	require.NoError(t, err)
	assert.Empty(t, cat.MenuFor(domain.Restaurant{Cuisine: "german"}))
}

// fakeCache is an in-memory cache.Cache with switchable failures.
type fakeCache struct {
	mu      sync.Mutex
	data    map[string]string
	getErr  error
	setErr  error
	sets    int
	lastTTL time.Duration
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string]string{}} }

func (c *fakeCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.lastTTL = ttl
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	return nil
}

func (c *fakeCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", false, c.getErr
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *fakeCache) GenerateKey(op, key string) string { return "test:" + op + ":" + key }
func (c *fakeCache) Close() error                      { return nil }

// countingStore counts lookups reaching the wrapped store.
type countingStore struct {
	*MemoryStore
	mu    sync.Mutex
	calls int
}

func (s *countingStore) GetByID(ctx context.Context, id string) (domain.Restaurant, bool, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.MemoryStore.GetByID(ctx, id)
}

func TestCachedStore_ReadThrough(t *testing.T) {
	t.Parallel()

	mem := NewMemoryStore()
	mem.Add(domain.Restaurant{ID: "esthers", Name: "Esther's", Cuisine: "german"})
	backing := &countingStore{MemoryStore: mem}
	c := newFakeCache()
	store := NewCachedStore(backing, c, time.Minute, nil)

	for range 3 {
		r, ok, err := store.GetByID(context.Background(), "esthers")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "Esther's", r.Name)
	}
	assert.Equal(t, 1, backing.calls)
	assert.Equal(t, 1, c.sets)
	assert.Equal(t, time.Minute, c.lastTTL)
	assert.Contains(t, c.data, "test:restaurant:esthers")
}

func TestCachedStore_MissIsNotCached(t *testing.T) {
	t.Parallel()

	c := newFakeCache()
	store := NewCachedStore(NewMemoryStore(), c, time.Minute, nil)

	_, ok, err := store.GetByID(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, c.sets)
}

func TestCachedStore_FailuresFallBack(t *testing.T) {
	t.Parallel()

	mem := NewMemoryStore()
	mem.Add(domain.Restaurant{ID: "esthers", Name: "Esther's"})
	c := newFakeCache()
	c.getErr = errors.New("connection refused")
	c.setErr = errors.New("connection refused")

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	store := NewCachedStore(mem, c, time.Minute, logger)

	r, ok, err := store.GetByID(context.Background(), "esthers")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Esther's", r.Name)
	assert.Contains(t, logs.String(), "restaurant cache read failed")
	assert.Contains(t, logs.String(), "restaurant cache write failed")
}

func TestCachedStore_CorruptEntryIsReplaced(t *testing.T) {
	t.Parallel()

	mem := NewMemoryStore()
	mem.Add(domain.Restaurant{ID: "esthers", Name: "Esther's"})
	c := newFakeCache()
	c.data["test:restaurant:esthers"] = "{not json"
	store := NewCachedStore(mem, c, time.Minute, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	r, ok, err := store.GetByID(context.Background(), "esthers")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Esther's", r.Name)
	assert.JSONEq(t, `{"id":"esthers","name":"Esther's"}`, c.data["test:restaurant:esthers"])
}
