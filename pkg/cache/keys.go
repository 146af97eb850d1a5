package cache

// LayoutKeyOpts lists the options that change a layout.
type LayoutKeyOpts struct {
	Width, Height  int
	Seed           uint64
	MinSize        float64
	MaxSize        float64
	Exponent       float64
	Relative       float64
	Rotations      []float64
	RotateChance   float64
	RotationRange  [2]float64
	Margin         int
	FontStep       float64
	Font           string
	FontEngine     string
	MaskHash       string
	MaskMode       string
	MaskCentroid   bool
	Jitter         float64
	SpiralSpacing  float64
	SpiralStep     float64
	MaxRadius      float64
	RotationRetry  bool
}

// ArtifactKeyOpts lists the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format     string
	Colors     string
	Background string
	Scale      float64
	EmbedFont  bool
	Font       string
	FontEngine string
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey keys a layout by the hash of its frequency table.
	LayoutKey(tableHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys a rendered output by the hash of its layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "layout:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(tableHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", tableHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
