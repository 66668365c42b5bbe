package chomp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
)

// Catalog is the fixed, ordered set of art pieces on the map.
type Catalog struct {
	pieces []ArtPiece
	index  map[string]int
}

var ErrInvalidCatalog = errors.New("invalid catalog")

func NewCatalog(pieces []ArtPiece) (*Catalog, error) {
	c := &Catalog{
		pieces: make([]ArtPiece, 0, len(pieces)),
		index:  make(map[string]int, len(pieces)),
	}
	for _, p := range pieces {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: piece %q has no id", ErrInvalidCatalog, p.Name)
		}
		if _, dup := c.index[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidCatalog, p.ID)
		}
		if !p.Size.Valid() {
			return nil, fmt.Errorf("%w: %q has unknown size %q", ErrInvalidCatalog, p.ID, p.Size)
		}
		if p.Status == "" {
			p.Status = StatusActive
		}
		if !p.Status.Valid() {
			return nil, fmt.Errorf("%w: %q has unknown status %q", ErrInvalidCatalog, p.ID, p.Status)
		}
		p.CapturedBy = NoTeam
		c.index[p.ID] = len(c.pieces)
		c.pieces = append(c.pieces, p)
	}
	return c, nil
}

func (c *Catalog) Get(id string) (ArtPiece, bool) {
	i, ok := c.index[id]
	if !ok {
		return ArtPiece{}, false
	}
	return c.pieces[i], true
}

// All returns a copy of every piece in catalog order.
func (c *Catalog) All() []ArtPiece { return slices.Clone(c.pieces) }

func (c *Catalog) Len() int { return len(c.pieces) }

// Areas returns the distinct area labels in catalog order.
func (c *Catalog) Areas() []string {
	var areas []string
	for _, p := range c.pieces {
		if !slices.Contains(areas, p.Area) {
			areas = append(areas, p.Area)
		}
	}
	return areas
}

// target is the image-target file format produced by the curation tool.
type target struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Lat    float64   `json:"lat"`
	Lng    float64   `json:"lng"`
	Size   SizeTier  `json:"size"`
	Area   string    `json:"area"`
	Status ArtStatus `json:"status"`
}

// LoadCatalog reads a JSON array of image targets.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var targets []target
	if err := json.NewDecoder(r).Decode(&targets); err != nil {
		return nil, fmt.Errorf("decoding targets: %w", err)
	}
	pieces := make([]ArtPiece, len(targets))
	for i, t := range targets {
		pieces[i] = ArtPiece{
			ID:       t.ID,
			Name:     t.Name,
			Location: Location{Lat: t.Lat, Lng: t.Lng},
			Size:     t.Size,
			Status:   t.Status,
			Area:     t.Area,
		}
	}
	return NewCatalog(pieces)
}

// DefaultCatalog returns the compiled-in map.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultPieces)
	if err != nil {
		panic(err)
	}
	return c
}

var defaultPieces = []ArtPiece{
	{ID: "art-001", Name: "The Chomping Whale", Location: Location{Lat: 37.7599, Lng: -122.4148}, Size: SizeLarge, Area: "Mission"},
	{ID: "art-002", Name: "Neon Koi", Location: Location{Lat: 37.7614, Lng: -122.4211}, Size: SizeMedium, Area: "Mission"},
	{ID: "art-003", Name: "Balmy Alley Sunrise", Location: Location{Lat: 37.7524, Lng: -122.4123}, Size: SizeSmall, Area: "Mission"},
	{ID: "art-004", Name: "Paper Crane Stencil", Location: Location{Lat: 37.7590, Lng: -122.4187}, Size: SizeTiny, Area: "Mission"},
	{ID: "art-005", Name: "Clarion Alley Giant", Location: Location{Lat: 37.7631, Lng: -122.4215}, Size: SizeLarge, Area: "Mission"},
	{ID: "art-006", Name: "Warehouse Tiger", Location: Location{Lat: 37.7785, Lng: -122.3972}, Size: SizeMedium, Area: "SoMa"},
	{ID: "art-007", Name: "Loading Dock Robots", Location: Location{Lat: 37.7762, Lng: -122.4050}, Size: SizeSmall, Area: "SoMa"},
	{ID: "art-008", Name: "Skater Saint", Location: Location{Lat: 37.7801, Lng: -122.4101}, Size: SizeTiny, Area: "SoMa"},
	{ID: "art-009", Name: "Dragon Gate Mural", Location: Location{Lat: 37.7908, Lng: -122.4058}, Size: SizeLarge, Area: "Chinatown"},
	{ID: "art-010", Name: "Lantern Kids", Location: Location{Lat: 37.7941, Lng: -122.4078}, Size: SizeSmall, Area: "Chinatown"},
	{ID: "art-011", Name: "Fog Owl", Location: Location{Lat: 37.7694, Lng: -122.4481}, Size: SizeMedium, Area: "Haight"},
	{ID: "art-012", Name: "Psychedelic Bus", Location: Location{Lat: 37.7699, Lng: -122.4468}, Size: SizeSmall, Area: "Haight"},
	{ID: "art-013", Name: "Faded Astronaut", Location: Location{Lat: 37.7712, Lng: -122.4389}, Size: SizeMedium, Area: "Haight", Status: StatusGhost},
	{ID: "art-014", Name: "Hayes Valley Bees", Location: Location{Lat: 37.7765, Lng: -122.4242}, Size: SizeTiny, Area: "Hayes Valley"},
	{ID: "art-015", Name: "Octavia Octopus", Location: Location{Lat: 37.7757, Lng: -122.4237}, Size: SizeMedium, Area: "Hayes Valley"},
}
