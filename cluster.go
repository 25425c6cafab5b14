package tacmap

// ZoomBand maps a minimum zoom level to a clustering pixel threshold.
type ZoomBand struct {
	MinZoom     float64
	ThresholdPx float64
}

// ClusterConfig tunes when and how tightly entities group.
type ClusterConfig struct {
	// ZoomThreshold disables clustering at or above this zoom level;
	// zoomed in far enough, every entity is drawn individually.
	ZoomThreshold float64
	// Bands give the grouping distance per zoom range. Narrower thresholds
	// at higher zoom keep cluster sizes visually stable as the map scales.
	// Must be sorted by MinZoom descending.
	Bands []ZoomBand
}

// DefaultClusterConfig returns the standard threshold and bands.
func DefaultClusterConfig() ClusterConfig {
	return ClusterConfig{
		ZoomThreshold: 13,
		Bands: []ZoomBand{
			{MinZoom: 12, ThresholdPx: 100},
			{MinZoom: 10, ThresholdPx: 150},
			{MinZoom: 8, ThresholdPx: 220},
			{MinZoom: 0, ThresholdPx: 300},
		},
	}
}

// Cluster is a screen-space grouping of nearby entities shown as one
// marker at low zoom. Always holds at least 2 members.
type Cluster struct {
	Center       GeoPoint
	Members      []EntityID
	ScreenBounds Rect
}

// PlacedEntity pairs an entity with its projected screen position. The
// engine computes these once per frame; clustering and rendering share them.
type PlacedEntity struct {
	Entity Entity
	Screen ScreenPoint
}

// ClusterEngine groups nearby visible entities into cluster markers.
type ClusterEngine struct {
	cfg ClusterConfig
}

// NewClusterEngine creates a cluster engine. A zero config gets defaults.
func NewClusterEngine(cfg ClusterConfig) *ClusterEngine {
	if cfg.ZoomThreshold == 0 && len(cfg.Bands) == 0 {
		cfg = DefaultClusterConfig()
	}
	return &ClusterEngine{cfg: cfg}
}

// thresholdFor returns the grouping distance in pixels for a zoom level.
func (c *ClusterEngine) thresholdFor(zoom float64) float64 {
	for _, band := range c.cfg.Bands {
		if zoom >= band.MinZoom {
			return band.ThresholdPx
		}
	}
	return 0
}

// Cluster groups the placed entities for the given zoom level. At or above
// the zoom threshold every entity comes back ungrouped. The device dot
// never joins a cluster; it must stay individually visible.
//
// The algorithm is a greedy single pass: each unprocessed entity opens a
// bounding box (its point expanded by half the threshold per side); any
// later entity falling inside the box joins the cluster and the box grows
// to include it. Order-dependent and capable of elongated groups; clusters
// are a density hint, not exact geometry. Deterministic for a fixed input
// order.
func (c *ClusterEngine) Cluster(placed []PlacedEntity, zoom float64) ([]Cluster, []EntityID) {
	if zoom >= c.cfg.ZoomThreshold {
		return nil, allIDs(placed)
	}
	threshold := c.thresholdFor(zoom)
	if threshold <= 0 {
		return nil, allIDs(placed)
	}
	half := threshold / 2

	var clusters []Cluster
	var ungrouped []EntityID
	used := make([]bool, len(placed))

	for i, seed := range placed {
		if used[i] {
			continue
		}
		used[i] = true

		if seed.Entity.Kind() == KindDeviceDot {
			ungrouped = append(ungrouped, seed.Entity.Ref().ID)
			continue
		}

		box := Rect{X: seed.Screen.X - half, Y: seed.Screen.Y - half, Width: threshold, Height: threshold}
		members := []EntityID{seed.Entity.Ref().ID}
		latSum, lonSum := seed.Entity.Anchor().Lat, seed.Entity.Anchor().Lon

		for j := i + 1; j < len(placed); j++ {
			if used[j] {
				continue
			}
			cand := placed[j]
			if cand.Entity.Kind() == KindDeviceDot {
				continue
			}
			if !box.Contains(cand.Screen.X, cand.Screen.Y) {
				continue
			}
			used[j] = true
			members = append(members, cand.Entity.Ref().ID)
			anchor := cand.Entity.Anchor()
			latSum += anchor.Lat
			lonSum += anchor.Lon
			box = box.Union(Rect{
				X: cand.Screen.X - half, Y: cand.Screen.Y - half,
				Width: threshold, Height: threshold,
			})
		}

		if len(members) < 2 {
			// No badge around a single item.
			ungrouped = append(ungrouped, members[0])
			continue
		}

		n := float64(len(members))
		clusters = append(clusters, Cluster{
			Center:       GeoPoint{Lat: latSum / n, Lon: lonSum / n},
			Members:      members,
			ScreenBounds: box,
		})
	}
	return clusters, ungrouped
}

func allIDs(placed []PlacedEntity) []EntityID {
	ids := make([]EntityID, len(placed))
	for i, p := range placed {
		ids[i] = p.Entity.Ref().ID
	}
	return ids
}
