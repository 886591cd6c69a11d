package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huntoverlay/pkg/db"
	"huntoverlay/pkg/hotkey"
	"huntoverlay/pkg/model"
	"huntoverlay/pkg/store"
)

func testDefaults() Defaults {
	return Defaults{
		Categories: []string{"armories", "boss", "possible_xp"},
		MapIDs:     []string{"bayou", "delta"},
		Rect:       model.Rect{X: 100, Y: 100, Width: 800, Height: 800},
		Hidden:     []model.HiddenKey{{ID: 7, Category: "possible_xp"}, {ID: 8, Category: "ghost"}},
		ScaleMin:   0.1,
		ScaleMax:   5,
	}
}

func fileStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	return NewStore(NewFileBackend(path), testDefaults()), path
}

func TestDefaults_State(t *testing.T) {
	st := testDefaults().State()

	assert.True(t, st.Overlay.MasterEnabled)
	assert.False(t, st.Overlay.OverlayVisible)
	assert.True(t, st.Overlay.NumericMapSwitchEnabled)
	assert.Equal(t, 1.0, st.Overlay.GlobalScale)
	assert.Equal(t, "bayou", st.Overlay.ActiveMapID)
	assert.Len(t, st.Categories, 3)
	for name, c := range st.Categories {
		assert.True(t, c.Enabled, name)
		assert.Nil(t, c.Color, name)
	}
	// Seeded entries for unknown categories are skipped
	assert.Equal(t, []model.HiddenKey{{ID: 7, Category: "possible_xp"}}, st.Hidden.Sorted())
	assert.Equal(t, hotkey.Defaults(), st.Keybinds)
}

func TestStore_RoundTrip(t *testing.T) {
	red := model.Color{R: 255, A: 200}

	tests := []struct {
		name   string
		mutate func(st *State)
	}{
		{"Defaults", func(st *State) {}},
		{"EmptyHidden", func(st *State) { st.Hidden = NewHiddenSet() }},
		{"Everything", func(st *State) {
			st.Overlay.MasterEnabled = false
			st.Overlay.OverlayVisible = true
			st.Overlay.ActiveMapID = "delta"
			st.Overlay.NumericMapSwitchEnabled = false
			st.Overlay.GlobalScale = 2.35
			st.Overlay.OverlayRect = model.Rect{X: 12.5, Y: 7, Width: 640.25, Height: 480}
			st.Overlay.MapRects["delta"] = model.Rect{X: 1, Y: 2, Width: 3, Height: 4}
			st.Overlay.MinimizeToTray = true
			st.Categories["boss"] = CategoryConfig{Enabled: false, Color: &red}
			st.Categories["armories"] = CategoryConfig{Enabled: true, Color: &red}
			st.Hidden.Add(model.HiddenKey{ID: 1, Category: "boss"})
			st.Hidden.Add(model.HiddenKey{ID: 1, Category: "possible_xp"})
			st.Keybinds[hotkey.ToggleOverlay] = hotkey.Binding{VK: hotkey.VKF1}
			st.Keybinds[hotkey.HideHovered] = hotkey.Binding{VK: 0x58, Alt: true}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := fileStore(t)
			ctx := context.Background()

			st := s.Defaults().State()
			tt.mutate(&st)

			require.NoError(t, s.Save(ctx, st))
			assert.Equal(t, st, s.Load(ctx))
		})
	}
}

func TestStore_LoadMissing(t *testing.T) {
	s, path := fileStore(t)
	st := s.Load(context.Background())
	assert.Equal(t, testDefaults().State(), st)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "load must not create the file")
}

func TestStore_LoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Truncated", `{"masterEnabled": tru`},
		{"WrongType", `{"globalScale": "big"}`},
		{"Array", `[1, 2, 3]`},
		{"Empty", ``},
		{"BadColor", `{"categories": {"boss": {"color": "#XYZ"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, path := fileStore(t)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			st := s.Load(context.Background())
			assert.Equal(t, testDefaults().State(), st)

			kept, err := os.ReadFile(path + ".corrupt")
			require.NoError(t, err, "corrupt file should be kept aside")
			assert.Equal(t, tt.content, string(kept))
		})
	}
}

func TestStore_LenientMerge(t *testing.T) {
	s, path := fileStore(t)
	content := `{
		"version": "0.9",
		"someFutureField": {"nested": true},
		"activeMapId": "atlantis",
		"globalScale": 99,
		"overlayRect": {"x": 5, "y": 5, "w": 0, "h": 100},
		"mapRects": {"delta": {"x": 1, "y": 1, "w": 10, "h": 10}, "atlantis": {"x": 1, "y": 1, "w": 10, "h": 10}, "bayou": {"x": 0, "y": 0, "w": -1, "h": 1}},
		"categories": {
			"boss": {"enabled": false, "color": [10, 20, 30]},
			"armories": {"color": "#112233"},
			"legacy": {"enabled": false}
		},
		"hiddenPois": [{"id": 1, "category": "boss"}, {"id": 2, "category": "legacy"}],
		"keybinds": {"toggle_master": {"vk": 112}, "unknown_action": {"vk": 1}}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	st := s.Load(context.Background())

	assert.True(t, st.Overlay.MasterEnabled, "missing field comes from defaults")
	assert.Equal(t, "bayou", st.Overlay.ActiveMapID, "unknown map falls back to the first")
	assert.Equal(t, 5.0, st.Overlay.GlobalScale, "scale clamped to the maximum")
	assert.Equal(t, testDefaults().Rect, st.Overlay.OverlayRect, "degenerate rect replaced")
	assert.Equal(t, map[string]model.Rect{"delta": {X: 1, Y: 1, Width: 10, Height: 10}}, st.Overlay.MapRects)

	require.Contains(t, st.Categories, "boss")
	assert.False(t, st.Categories["boss"].Enabled)
	assert.Equal(t, &model.Color{R: 10, G: 20, B: 30, A: 255}, st.Categories["boss"].Color)
	assert.True(t, st.Categories["armories"].Enabled, "missing enabled defaults to true")
	assert.NotContains(t, st.Categories, "legacy")
	assert.Contains(t, st.Categories, "possible_xp", "dataset categories missing from the file are added")

	assert.Equal(t, []model.HiddenKey{{ID: 1, Category: "boss"}}, st.Hidden.Sorted())
	assert.Equal(t, hotkey.VKF1, st.Keybinds[hotkey.ToggleMaster].VK)
	assert.Len(t, st.Keybinds, len(hotkey.Actions))

	_, err := os.Stat(path + ".corrupt")
	assert.True(t, os.IsNotExist(err), "a valid file is never quarantined")
}

func TestStore_ExplicitEmptyHiddenWins(t *testing.T) {
	s, path := fileStore(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"hiddenPois": []}`), 0o644))
	assert.Empty(t, s.Load(context.Background()).Hidden)
}

func TestEncode_Shape(t *testing.T) {
	st := testDefaults().State()
	st.Hidden.Add(model.HiddenKey{ID: 1, Category: "boss"})
	st.Hidden.Add(model.HiddenKey{ID: 3, Category: "armories"})

	data, err := Encode(st)
	require.NoError(t, err)
	text := string(data)

	for _, field := range []string{
		`"version": "` + Version + `"`,
		`"masterEnabled": true`,
		`"overlayVisible": false`,
		`"activeMapId": "bayou"`,
		`"numericMapSwitchEnabled": true`,
		`"globalScale": 1`,
		`"overlayRect": {`,
		`"minimizeToTray": false`,
		`"categories": {`,
		`"keybinds": {`,
	} {
		assert.Contains(t, text, field)
	}
	assert.NotContains(t, text, "mapRects", "empty per-map rects are omitted")

	// Hidden list is sorted by category, then id
	assert.Less(t, strings.Index(text, `"armories"`+"\n"), strings.Index(text, `"category": "boss"`))

	again, err := Encode(st)
	require.NoError(t, err)
	assert.Equal(t, data, again, "encoding is deterministic")
}

func TestFileBackend_AtomicWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")
	b := NewFileBackend(path)
	ctx := context.Background()

	require.NoError(t, b.Write(ctx, []byte("one")))
	require.NoError(t, b.Write(ctx, []byte("two")))

	got, err := b.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFileBackend_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// Parent "directory" is a regular file
	s := NewStore(NewFileBackend(filepath.Join(blocker, "config.json")), testDefaults())
	err := s.Save(context.Background(), testDefaults().State())

	var ioErr *IoError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "mkdir", ioErr.Op)
}

func TestSQLiteBackend(t *testing.T) {
	d, err := db.Init(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	st := store.NewSQLiteStore(d)
	defer st.Close()

	ctx := context.Background()
	s := NewStore(NewSQLiteBackend(st), testDefaults())
	assert.Equal(t, "sqlite:overlay_settings", s.Location())

	assert.Equal(t, testDefaults().State(), s.Load(ctx))

	want := testDefaults().State()
	want.Overlay.GlobalScale = 1.75
	want.Hidden.Add(model.HiddenKey{ID: 1, Category: "boss"})
	require.NoError(t, s.Save(ctx, want))
	assert.Equal(t, want, s.Load(ctx))

	// Corrupt row is moved aside and defaults returned
	require.NoError(t, st.SetState(ctx, StateKey, "{nope"))
	assert.Equal(t, testDefaults().State(), s.Load(ctx))
	kept, ok, err := st.GetState(ctx, StateKey+".corrupt")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "{nope", kept)
	_, ok, err = st.GetState(ctx, StateKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

// failingStateStore fails every read and records moves.
type failingStateStore struct {
	readErr error
	rows    map[string]string
	moves   []string
}

func (f *failingStateStore) GetState(context.Context, string) (string, bool, error) {
	return "", false, f.readErr
}

func (f *failingStateStore) SetState(_ context.Context, key, val string) error {
	f.rows[key] = val
	return nil
}

func (f *failingStateStore) DeleteState(_ context.Context, key string) error {
	delete(f.rows, key)
	return nil
}

func (f *failingStateStore) MoveState(_ context.Context, from, to string) error {
	f.moves = append(f.moves, from+"->"+to)
	if v, ok := f.rows[from]; ok {
		f.rows[to] = v
		delete(f.rows, from)
	}
	return nil
}

func TestSQLiteBackend_ReadErrorQuarantines(t *testing.T) {
	st := &failingStateStore{
		readErr: errors.New("database is locked"),
		rows:    map[string]string{StateKey: `{"version":"1.1.0"}`},
	}
	ctx := context.Background()
	b := NewSQLiteBackend(st)

	_, err := b.Read(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, os.ErrNotExist)
	var ioErr *IoError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "read", ioErr.Op)

	// The stored row is moved aside before defaults can overwrite it
	s := NewStore(b, testDefaults())
	assert.Equal(t, testDefaults().State(), s.Load(ctx))
	assert.Equal(t, []string{StateKey + "->" + StateKey + ".corrupt"}, st.moves)
	assert.Equal(t, `{"version":"1.1.0"}`, st.rows[StateKey+".corrupt"])
	_, ok := st.rows[StateKey]
	assert.False(t, ok)
}

func TestHiddenSet(t *testing.T) {
	h := NewHiddenSet()
	k := model.HiddenKey{ID: 1, Category: "boss"}

	assert.True(t, h.Add(k))
	assert.False(t, h.Add(k))
	assert.True(t, h.Has(k))
	assert.False(t, h.Has(model.HiddenKey{ID: 1, Category: "possible_xp"}))

	h.Add(model.HiddenKey{ID: 2, Category: "boss"})
	h.Add(model.HiddenKey{ID: 2, Category: "armories"})
	assert.Equal(t, 2, h.RemoveCategory("boss"))
	assert.Equal(t, []model.HiddenKey{{ID: 2, Category: "armories"}}, h.Sorted())

	assert.True(t, h.Remove(model.HiddenKey{ID: 2, Category: "armories"}))
	assert.False(t, h.Remove(model.HiddenKey{ID: 2, Category: "armories"}))
}

func TestState_Clone(t *testing.T) {
	c := model.Color{R: 1, A: 255}
	st := testDefaults().State()
	st.Categories["boss"] = CategoryConfig{Enabled: true, Color: &c}
	st.Overlay.MapRects["bayou"] = model.Rect{Width: 1, Height: 1}

	cp := st.Clone()
	cp.Categories["boss"].Color.R = 99
	cp.Overlay.MapRects["bayou"] = model.Rect{}
	cp.Hidden.Add(model.HiddenKey{ID: 42, Category: "boss"})
	cp.Keybinds[hotkey.Map1] = hotkey.Binding{VK: 0x41}

	assert.Equal(t, uint8(1), st.Categories["boss"].Color.R)
	assert.Equal(t, 1.0, st.Overlay.MapRects["bayou"].Width)
	assert.False(t, st.Hidden.Has(model.HiddenKey{ID: 42, Category: "boss"}))
	assert.Equal(t, hotkey.VK1, st.Keybinds[hotkey.Map1].VK)
}
