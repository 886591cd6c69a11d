package viewmodel

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huntoverlay/pkg/dataset"
	"huntoverlay/pkg/hotkey"
	"huntoverlay/pkg/model"
	"huntoverlay/pkg/settings"
)

const testStyles = `{
  "boss":     {"label": "Boss", "radius": 8, "color": "#FF0000"},
  "armories": {"label": "Armory", "radius": 6, "color": "#00FF00"},
  "towers":   {"label": "Tower", "radius": 5, "color": "#0000FF"},
  "possible_xp": {"label": "Possible XP", "radius": 4, "color": "#FFD34D", "union": ["armories", "towers"]}
}`

const testData = `[
  {"id": 1, "category": "boss", "mapId": "bayou", "x": 2048, "y": 2048},
  {"id": 2, "category": "armories", "mapId": "bayou", "x": 1024, "y": 1024},
  {"id": 3, "category": "towers", "mapId": "bayou", "x": 3072, "y": 1024},
  {"id": 4, "category": "boss", "mapId": "delta", "x": 0, "y": 0},
  {"id": 5, "category": "armories", "mapId": "bayou", "x": 1024, "y": 3072}
]`

var testRect = model.Rect{X: 100, Y: 100, Width: 800, Height: 800}

type fixture struct {
	vm       *ViewModel
	saves    int
	defaults settings.Defaults
}

func loadDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "data.json")
	stylePath := filepath.Join(dir, "poiData.json")
	require.NoError(t, os.WriteFile(dataPath, []byte(testData), 0o644))
	require.NoError(t, os.WriteFile(stylePath, []byte(testStyles), 0o644))
	ds, err := dataset.NewStore(dataPath, stylePath).Load()
	require.NoError(t, err)
	return ds
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ds := loadDataset(t)
	f := &fixture{
		defaults: settings.Defaults{
			Categories: ds.Categories(),
			MapIDs:     []string{"bayou", "delta"},
			Rect:       testRect,
			ScaleMin:   0.1,
			ScaleMax:   5,
		},
	}
	st := f.defaults.State()
	st.Overlay.OverlayVisible = true
	f.vm = New(ds, f.defaults, st, Options{
		ReferenceWidth: 800,
		HitRadius:      10,
		ScaleStep:      0.05,
		Maps:           []model.MapInfo{{ID: "bayou", Name: "Bayou"}, {ID: "delta", Name: "Delta"}},
	}, func() { f.saves++ })
	return f
}

func keys(list []model.Renderable) []model.HiddenKey {
	out := make([]model.HiddenKey, 0, len(list))
	for _, r := range list {
		out = append(out, r.Key())
	}
	return out
}

func find(list []model.Renderable, id int64, cat string) (model.Renderable, bool) {
	for _, r := range list {
		if r.ID == id && r.Category == cat {
			return r, true
		}
	}
	return model.Renderable{}, false
}

func TestRenderList_ProjectsCenter(t *testing.T) {
	f := newFixture(t)

	boss, ok := find(f.vm.RenderList(), 1, "boss")
	require.True(t, ok)
	assert.Equal(t, 500.0, boss.ScreenX)
	assert.Equal(t, 500.0, boss.ScreenY)
	assert.Equal(t, 8.0, boss.RadiusPx, "reference width equals rect width")
	assert.Equal(t, model.Color{R: 255, A: 255}, boss.Color)
}

func TestRenderList_OrderAndUnion(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, []model.HiddenKey{
		{ID: 2, Category: "armories"},
		{ID: 5, Category: "armories"},
		{ID: 1, Category: "boss"},
		{ID: 2, Category: "possible_xp"},
		{ID: 3, Category: "possible_xp"},
		{ID: 5, Category: "possible_xp"},
		{ID: 3, Category: "towers"},
	}, keys(f.vm.RenderList()))

	// Same input, same output
	assert.Equal(t, f.vm.RenderList(), f.vm.RenderList())
}

func TestRenderList_GatedByMasterAndVisibility(t *testing.T) {
	f := newFixture(t)
	require.NotEmpty(t, f.vm.RenderList())

	f.vm.HideOverlay()
	assert.Empty(t, f.vm.RenderList())

	f.vm.SetOverlayVisible(true)
	require.NotEmpty(t, f.vm.RenderList())

	f.vm.SetMasterEnabled(false)
	assert.Empty(t, f.vm.RenderList())
	assert.False(t, f.vm.State().Overlay.OverlayVisible, "master off hides the overlay")

	assert.False(t, f.vm.ToggleOverlay(), "toggle is ignored while master is off")
	assert.Empty(t, f.vm.RenderList())

	assert.True(t, f.vm.ToggleMaster())
	assert.True(t, f.vm.ToggleOverlay())
	assert.NotEmpty(t, f.vm.RenderList())
}

func TestRenderList_IsACopy(t *testing.T) {
	f := newFixture(t)
	list := f.vm.RenderList()
	list[0].ScreenX = -1
	assert.NotEqual(t, -1.0, f.vm.RenderList()[0].ScreenX)
}

func TestHidePoiAt_Scenario(t *testing.T) {
	f := newFixture(t)
	before := f.saves

	key, ok := f.vm.HidePoiAt(orb.Point{500, 500})
	require.True(t, ok)
	assert.Equal(t, model.HiddenKey{ID: 1, Category: "boss"}, key)
	assert.Greater(t, f.saves, before, "mutation triggers a save")

	_, ok = find(f.vm.RenderList(), 1, "boss")
	assert.False(t, ok)
	assert.Equal(t, []model.HiddenKey{{ID: 1, Category: "boss"}}, f.vm.State().Hidden.Sorted())
}

func TestHidePoiAt_ScopedToCategory(t *testing.T) {
	f := newFixture(t)
	// Armory 2 is drawn at (300, 300) under both armories and possible_xp.
	// possible_xp sorts later, so it is the topmost and gets hidden first.
	key, ok := f.vm.HidePoiAt(orb.Point{302, 299})
	require.True(t, ok)
	assert.Equal(t, model.HiddenKey{ID: 2, Category: "possible_xp"}, key)

	list := f.vm.RenderList()
	_, underXP := find(list, 2, "possible_xp")
	_, underArmory := find(list, 2, "armories")
	assert.False(t, underXP)
	assert.True(t, underArmory, "hiding under one category keeps the POI under the other")

	key, ok = f.vm.HidePoiAt(orb.Point{300, 300})
	require.True(t, ok)
	assert.Equal(t, model.HiddenKey{ID: 2, Category: "armories"}, key)
}

func TestHidePoiAt_Miss(t *testing.T) {
	f := newFixture(t)
	before := f.saves

	_, ok := f.vm.HidePoiAt(orb.Point{511, 500})
	assert.False(t, ok)
	assert.Equal(t, before, f.saves)

	_, ok = f.vm.HidePoiAt(orb.Point{510, 500})
	assert.True(t, ok, "hit radius is inclusive")
}

func TestHover_Nearest(t *testing.T) {
	ds := loadDataset(t)
	defaults := settings.Defaults{Categories: ds.Categories(), MapIDs: []string{"bayou"}, Rect: testRect, ScaleMin: 0.1, ScaleMax: 5}
	st := defaults.State()
	st.Overlay.OverlayVisible = true
	// Large tolerance so several markers compete
	vm := New(ds, defaults, st, Options{ReferenceWidth: 800, HitRadius: 400}, nil)

	r, ok := vm.Hover(orb.Point{490, 490})
	require.True(t, ok)
	assert.Equal(t, model.HiddenKey{ID: 1, Category: "boss"}, r.Key())

	r, ok = vm.Hover(orb.Point{690, 290})
	require.True(t, ok)
	assert.Equal(t, model.HiddenKey{ID: 3, Category: "towers"}, r.Key(), "towers draws above possible_xp")
}

func TestHiddenSurvivesDisable(t *testing.T) {
	f := newFixture(t)
	_, ok := f.vm.HidePoiAt(orb.Point{500, 500})
	require.True(t, ok)

	require.NoError(t, f.vm.SetCategoryEnabled("boss", false))
	require.NoError(t, f.vm.SetCategoryEnabled("boss", true))

	_, ok = find(f.vm.RenderList(), 1, "boss")
	assert.False(t, ok, "a hidden POI stays hidden regardless of enable state")

	assert.True(t, f.vm.Unhide(model.HiddenKey{ID: 1, Category: "boss"}))
	assert.False(t, f.vm.Unhide(model.HiddenKey{ID: 1, Category: "boss"}))
	_, ok = find(f.vm.RenderList(), 1, "boss")
	assert.True(t, ok)
}

func TestSetCategoryEnabled_RestoresSameSet(t *testing.T) {
	f := newFixture(t)
	full := f.vm.RenderList()

	require.NoError(t, f.vm.SetCategoryEnabled("armories", false))
	for _, r := range f.vm.RenderList() {
		assert.NotEqual(t, "armories", r.Category)
	}
	_, ok := find(f.vm.RenderList(), 2, "possible_xp")
	assert.True(t, ok, "union entries follow their own enable flag")

	require.NoError(t, f.vm.SetCategoryEnabled("armories", true))
	assert.Equal(t, full, f.vm.RenderList())

	err := f.vm.SetCategoryEnabled("ghost", true)
	assert.True(t, errors.Is(err, ErrUnknownCategory))
}

func TestSetCategoryColor(t *testing.T) {
	f := newFixture(t)
	pink := model.Color{R: 255, G: 0, B: 255, A: 128}

	require.NoError(t, f.vm.SetCategoryColor("boss", &pink))
	pink.G = 77 // caller's copy must not leak in
	boss, _ := find(f.vm.RenderList(), 1, "boss")
	assert.Equal(t, model.Color{R: 255, B: 255, A: 128}, boss.Color)

	require.NoError(t, f.vm.SetCategoryColor("boss", nil))
	boss, _ = find(f.vm.RenderList(), 1, "boss")
	assert.Equal(t, model.Color{R: 255, A: 255}, boss.Color)

	assert.ErrorIs(t, f.vm.SetCategoryColor("ghost", nil), ErrUnknownCategory)
}

func TestSetGlobalScale_Monotonic(t *testing.T) {
	f := newFixture(t)

	prev := map[model.HiddenKey]float64{}
	for _, s := range []float64{0.1, 0.5, 1, 1.05, 2, 4.99, 5} {
		assert.Equal(t, s, f.vm.SetGlobalScale(s))
		for _, r := range f.vm.RenderList() {
			if p, ok := prev[r.Key()]; ok {
				assert.Greater(t, r.RadiusPx, p, "scale %v", s)
			}
			prev[r.Key()] = r.RadiusPx
		}
	}

	assert.Equal(t, 5.0, f.vm.SetGlobalScale(50))
	assert.Equal(t, 0.1, f.vm.SetGlobalScale(0))
	assert.Equal(t, 0.1, f.vm.SetGlobalScale(-3))
}

func TestStepScale(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, 1.05, f.vm.StepScale(1))
	assert.Equal(t, 1.2, f.vm.StepScale(3))
	assert.Equal(t, 1.0, f.vm.StepScale(-4))
	assert.Equal(t, 5.0, f.vm.StepScale(1000))
}

func TestSetActiveMap(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.vm.SetActiveMap("delta"))
	assert.Equal(t, []model.HiddenKey{{ID: 4, Category: "boss"}}, keys(f.vm.RenderList()))
	r := f.vm.RenderList()[0]
	assert.Equal(t, 100.0, r.ScreenX)
	assert.Equal(t, 100.0, r.ScreenY)

	assert.ErrorIs(t, f.vm.SetActiveMap("atlantis"), ErrUnknownMap)
	assert.Equal(t, "delta", f.vm.ActiveMap())
}

func TestSwitchMapIndex(t *testing.T) {
	f := newFixture(t)

	switched, err := f.vm.SwitchMapIndex(2)
	require.NoError(t, err)
	assert.True(t, switched)
	assert.Equal(t, "delta", f.vm.ActiveMap())

	switched, err = f.vm.SwitchMapIndex(2)
	require.NoError(t, err)
	assert.False(t, switched, "already active")

	_, err = f.vm.SwitchMapIndex(3)
	assert.ErrorIs(t, err, ErrUnknownMap)

	f.vm.SetNumericMapSwitch(false)
	switched, _ = f.vm.SwitchMapIndex(1)
	assert.False(t, switched)
	assert.Equal(t, "delta", f.vm.ActiveMap())

	f.vm.SetNumericMapSwitch(true)
	f.vm.HideOverlay()
	switched, _ = f.vm.SwitchMapIndex(1)
	assert.False(t, switched, "numeric switch only while visible")
}

func TestSetOverlayRect(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.vm.SetOverlayRect(model.Rect{X: 0, Y: 0, Width: 1600, Height: 400}))
	boss, _ := find(f.vm.RenderList(), 1, "boss")
	assert.Equal(t, 800.0, boss.ScreenX)
	assert.Equal(t, 200.0, boss.ScreenY)
	assert.Equal(t, 16.0, boss.RadiusPx)

	assert.ErrorIs(t, f.vm.SetOverlayRect(model.Rect{Width: 0, Height: 10}), ErrInvalidRect)
}

func TestSetMapRect(t *testing.T) {
	f := newFixture(t)
	override := model.Rect{X: 0, Y: 0, Width: 400, Height: 400}

	require.NoError(t, f.vm.SetMapRect("bayou", &override))
	assert.Equal(t, override, f.vm.EffectiveRect())
	boss, _ := find(f.vm.RenderList(), 1, "boss")
	assert.Equal(t, 200.0, boss.ScreenX)

	require.NoError(t, f.vm.SetActiveMap("delta"))
	assert.Equal(t, testRect, f.vm.EffectiveRect())

	require.NoError(t, f.vm.SetMapRect("bayou", nil))
	require.NoError(t, f.vm.SetActiveMap("bayou"))
	assert.Equal(t, testRect, f.vm.EffectiveRect())

	assert.ErrorIs(t, f.vm.SetMapRect("atlantis", nil), ErrUnknownMap)
	assert.ErrorIs(t, f.vm.SetMapRect("bayou", &model.Rect{Width: 5}), ErrInvalidRect)
}

func TestClearHidden(t *testing.T) {
	f := newFixture(t)
	f.vm.HidePoiAt(orb.Point{500, 500})
	f.vm.HidePoiAt(orb.Point{300, 300})
	f.vm.HidePoiAt(orb.Point{300, 300})
	require.Len(t, f.vm.State().Hidden, 3)

	assert.Equal(t, 1, f.vm.ClearHidden("boss"))
	assert.Equal(t, 2, f.vm.ClearHidden(""))
	assert.Equal(t, 0, f.vm.ClearHidden(""))
	assert.Empty(t, f.vm.State().Hidden)
}

func TestResetColorsAndReset(t *testing.T) {
	f := newFixture(t)
	c := model.Color{R: 1, A: 255}
	require.NoError(t, f.vm.SetCategoryColor("boss", &c))
	require.NoError(t, f.vm.SetCategoryEnabled("towers", false))
	f.vm.HidePoiAt(orb.Point{500, 500})
	f.vm.SetGlobalScale(3)

	f.vm.ResetColors()
	st := f.vm.State()
	for name, cfg := range st.Categories {
		assert.True(t, cfg.Enabled, name)
		assert.Nil(t, cfg.Color, name)
	}
	assert.Len(t, st.Hidden, 1, "reset colors keeps hidden entries")
	assert.Equal(t, 3.0, st.Overlay.GlobalScale)

	f.vm.Reset()
	assert.Equal(t, f.defaults.State(), f.vm.State())
	assert.Empty(t, f.vm.RenderList(), "default state has the overlay hidden")
}

func TestSetKeybind(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.vm.SetKeybind(hotkey.ToggleOverlay, hotkey.Binding{VK: 0x4F, Ctrl: true}))
	assert.Equal(t, hotkey.Binding{VK: 0x4F}, f.vm.Keybinds()[hotkey.ToggleOverlay])

	assert.ErrorIs(t, f.vm.SetKeybind("fly", hotkey.Binding{VK: 1}), ErrUnknownAction)
}

func TestState_IsACopy(t *testing.T) {
	f := newFixture(t)
	st := f.vm.State()
	st.Hidden.Add(model.HiddenKey{ID: 1, Category: "boss"})
	st.Categories["boss"] = settings.CategoryConfig{Enabled: false}

	_, ok := find(f.vm.RenderList(), 1, "boss")
	assert.True(t, ok)
}

func TestCategoriesAndMaps(t *testing.T) {
	f := newFixture(t)
	f.vm.HidePoiAt(orb.Point{300, 300})

	cats := f.vm.Categories()
	require.Len(t, cats, 4)
	assert.Equal(t, "armories", cats[0].Name)
	assert.Equal(t, "Armory", cats[0].Label)
	assert.Equal(t, 2, cats[0].OnMap)

	xp := cats[2]
	assert.Equal(t, "possible_xp", xp.Name)
	assert.Equal(t, 3, xp.OnMap)
	assert.Equal(t, 1, xp.Hidden)
	assert.Equal(t, []string{"armories", "towers"}, xp.Union)
	assert.False(t, xp.Overridden)

	maps := f.vm.Maps()
	require.Len(t, maps, 2)
	assert.True(t, maps[0].Active)
	assert.Equal(t, "Delta", maps[1].Name)

	lo, hi := f.vm.ScaleBounds()
	assert.Equal(t, 0.1, lo)
	assert.Equal(t, 5.0, hi)
}
