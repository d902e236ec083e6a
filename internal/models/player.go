package models

// DraftPlayer is one candidate in a sport's player pool. Loaded once at
// draft creation and immutable afterwards; a picked player is removed from
// the session's available pool exactly once.
type DraftPlayer struct {
	ID              string  `json:"id" yaml:"id"`
	Name            string  `json:"name" yaml:"name"`
	Position        string  `json:"position" yaml:"position"`
	Team            string  `json:"team" yaml:"team"`
	ADP             float64 `json:"adp" yaml:"adp"` // average draft position, lower is better
	ProjectedPoints float64 `json:"projected_points" yaml:"projected_points"`
}
