package cache

// keyVersion is bumped whenever the encoding of cached values changes.
const keyVersion = "v1"

// RouteKeyOpts holds the router settings that influence a route.
type RouteKeyOpts struct {
	GridPitch   float64 `json:"grid_pitch"`
	BendRadius  float64 `json:"bend_radius"`
	Spacing     float64 `json:"spacing"`
	TurnPenalty float64 `json:"turn_penalty"`
	Headings    int     `json:"headings"`
	MaxNodes    int     `json:"max_nodes"`
	Tolerance   float64 `json:"tolerance"`
}

// DiagramKeyOpts holds the settings of a rendered hierarchy diagram.
type DiagramKeyOpts struct {
	Root     string `json:"root"`
	Format   string `json:"format"`
	Detailed bool   `json:"detailed"`
}

// Keyer derives cache keys.
type Keyer interface {
	// RouteKey keys a routing result by the hash of its request, the hash
	// of the obstacle snapshot and the router options.
	RouteKey(requestHash, obstaclesHash string, opts RouteKeyOpts) string

	// DiagramKey keys a rendered hierarchy diagram by design hash.
	DiagramKey(designHash string, opts DiagramKeyOpts) string
}

// DefaultKeyer produces unprefixed content-hash keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) RouteKey(requestHash, obstaclesHash string, opts RouteKeyOpts) string {
	return hashKey("route", keyVersion, requestHash, obstaclesHash, opts)
}

func (DefaultKeyer) DiagramKey(designHash string, opts DiagramKeyOpts) string {
	return hashKey("diagram", keyVersion, designHash, opts)
}

var _ Keyer = DefaultKeyer{}
