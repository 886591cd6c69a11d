package dataset

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/bytedance/sonic"

	"huntoverlay/pkg/model"
)

// Store reads the dataset and style files from disk.
type Store struct {
	dataPath  string
	stylePath string
	logger    *slog.Logger
}

// NewStore creates a store for the given POI and style files.
func NewStore(dataPath, stylePath string) *Store {
	return &Store{
		dataPath:  dataPath,
		stylePath: stylePath,
		logger:    slog.With("component", "dataset"),
	}
}

type rawStyle struct {
	Label  *string      `json:"label"`
	Radius *float64     `json:"radius"`
	Color  *model.Color `json:"color"`
	Border *model.Color `json:"border"`
	Union  []string     `json:"union"`
}

type rawPOI struct {
	ID       *int64   `json:"id"`
	Category *string  `json:"category"`
	MapID    *string  `json:"mapId"`
	X        *float64 `json:"x"`
	Y        *float64 `json:"y"`
	Label    string   `json:"label"`
}

var defaultBorder = model.Color{R: 255, G: 255, B: 255, A: 255}

// LoadStyleDefaults reads and validates the style file.
func (s *Store) LoadStyleDefaults() (map[string]model.CategoryStyle, error) {
	data, err := readFile(s.stylePath)
	if err != nil {
		return nil, err
	}

	var raw map[string]rawStyle
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, corrupt(s.stylePath, "invalid JSON", err)
	}
	if len(raw) == 0 {
		return nil, corruptf(s.stylePath, "no categories defined")
	}

	styles := make(map[string]model.CategoryStyle, len(raw))
	for name, r := range raw {
		if name == "" {
			return nil, corruptf(s.stylePath, "empty category name")
		}
		if r.Radius == nil {
			return nil, corruptf(s.stylePath, "category %q: missing radius", name)
		}
		if !(*r.Radius > 0) || math.IsInf(*r.Radius, 0) {
			return nil, corruptf(s.stylePath, "category %q: radius must be positive, got %v", name, *r.Radius)
		}
		if r.Color == nil {
			return nil, corruptf(s.stylePath, "category %q: missing color", name)
		}
		st := model.CategoryStyle{
			Label:  name,
			Radius: *r.Radius,
			Color:  *r.Color,
			Border: defaultBorder,
			Union:  r.Union,
		}
		if r.Label != nil && *r.Label != "" {
			st.Label = *r.Label
		}
		if r.Border != nil {
			st.Border = *r.Border
		}
		styles[name] = st
	}

	for name, st := range styles {
		for _, src := range st.Union {
			srcStyle, ok := styles[src]
			if !ok {
				return nil, corruptf(s.stylePath, "union category %q references unknown category %q", name, src)
			}
			if srcStyle.IsUnion() {
				return nil, corruptf(s.stylePath, "union category %q references union category %q", name, src)
			}
		}
	}
	return styles, nil
}

// LoadPOIs reads and validates the POI file against the style defaults.
func (s *Store) LoadPOIs() ([]model.POI, error) {
	styles, err := s.LoadStyleDefaults()
	if err != nil {
		return nil, err
	}
	return s.loadPOIs(styles)
}

// Load reads both files.
func (s *Store) Load() (*Dataset, error) {
	styles, err := s.LoadStyleDefaults()
	if err != nil {
		return nil, err
	}
	pois, err := s.loadPOIs(styles)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Dataset loaded", "pois", len(pois), "categories", len(styles))
	return newDataset(pois, styles), nil
}

func (s *Store) loadPOIs(styles map[string]model.CategoryStyle) ([]model.POI, error) {
	data, err := readFile(s.dataPath)
	if err != nil {
		return nil, err
	}

	var raw []rawPOI
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, corrupt(s.dataPath, "invalid JSON", err)
	}

	type key struct {
		id  int64
		cat string
	}
	seen := make(map[key]bool, len(raw))
	pois := make([]model.POI, 0, len(raw))

	for i, r := range raw {
		switch {
		case r.ID == nil:
			return nil, corruptf(s.dataPath, "record %d: missing id", i)
		case r.Category == nil || *r.Category == "":
			return nil, corruptf(s.dataPath, "record %d: missing category", i)
		case r.MapID == nil || *r.MapID == "":
			return nil, corruptf(s.dataPath, "record %d: missing mapId", i)
		case r.X == nil || r.Y == nil:
			return nil, corruptf(s.dataPath, "record %d: missing coordinates", i)
		}
		if !inGrid(*r.X) || !inGrid(*r.Y) {
			return nil, corruptf(s.dataPath, "record %d: coordinates (%v, %v) outside [0, %v]", i, *r.X, *r.Y, model.GridSize)
		}
		st, ok := styles[*r.Category]
		if !ok {
			return nil, corruptf(s.dataPath, "record %d: unknown category %q", i, *r.Category)
		}
		if st.IsUnion() {
			return nil, corruptf(s.dataPath, "record %d: category %q is derived and cannot hold POIs", i, *r.Category)
		}
		k := key{*r.ID, *r.Category}
		if seen[k] {
			return nil, corruptf(s.dataPath, "record %d: duplicate id %d in category %q", i, *r.ID, *r.Category)
		}
		seen[k] = true

		pois = append(pois, model.POI{
			ID:       *r.ID,
			Category: *r.Category,
			MapID:    *r.MapID,
			X:        *r.X,
			Y:        *r.Y,
			Label:    r.Label,
		})
	}
	return pois, nil
}

func inGrid(v float64) bool {
	return v >= 0 && v <= model.GridSize
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, corrupt(path, "file missing", err)
	}
	if err != nil {
		return nil, corrupt(path, "unreadable", fmt.Errorf("read: %w", err))
	}
	return data, nil
}
