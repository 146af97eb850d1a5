package layout

import (
	"fmt"
	"image"
	"math"
	"math/rand/v2"

	"github.com/matzehuels/wordcloud/pkg/core/freq"
	"github.com/matzehuels/wordcloud/pkg/core/glyph"
	"github.com/matzehuels/wordcloud/pkg/core/occupancy"
	"github.com/matzehuels/wordcloud/pkg/core/sizing"
	errs "github.com/matzehuels/wordcloud/pkg/errors"
)

// Rasterizer produces glyph masks for the engine.
type Rasterizer = glyph.Rasterizer

// State is a step of the engine's run.
type State int

const (
	StateIdle State = iota
	StateSizing
	StatePlacingWord
	StateCommitted
	StateDropped
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSizing:
		return "sizing"
	case StatePlacingWord:
		return "placing"
	case StateCommitted:
		return "committed"
	case StateDropped:
		return "dropped"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Event is delivered to the observer on every state change. Index is the
// rank of the word concerned, or -1 for run-level states.
type Event struct {
	State  State
	Index  int
	Word   freq.Word
	Reason Reason
}

// ctxCheckEvery is how many spiral candidates are tried between context
// checks.
const ctxCheckEvery = 4096

// Engine places the words of one frequency table. An Engine runs once.
type Engine struct {
	cfg    config
	rast   Rasterizer
	grid   *occupancy.Grid
	rng    *rand.Rand
	mapper sizing.Mapper
	origin image.Point
	state  State
}

// NewEngine validates the configuration and prepares the occupancy grid.
// It fails with INVALID_CANVAS or INVALID_MASK_DIMENSIONS.
func NewEngine(rast Rasterizer, opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if rast == nil {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "layout: nil rasterizer")
	}
	grid, err := occupancy.New(cfg.width, cfg.height, cfg.mask)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		rast:   rast,
		grid:   grid,
		rng:    rand.New(rand.NewPCG(cfg.seed, cfg.seed^0xdeadbeef)),
		mapper: cfg.mapper.Resolve(cfg.width, cfg.height),
		origin: image.Pt(cfg.width/2, cfg.height/2),
	}
	if cfg.mask != nil && cfg.maskCentroid {
		if c, ok := grid.FreeCentroid(); ok {
			e.origin = c
		}
	}
	return e, nil
}

// Build lays out t on a fresh engine.
func Build(t *freq.Table, rast Rasterizer, opts ...Option) (*Result, error) {
	e, err := NewEngine(rast, opts...)
	if err != nil {
		return nil, err
	}
	return e.Run(t)
}

// State returns the engine's current state.
func (e *Engine) State() State { return e.state }

// Grid exposes the occupancy grid for inspection. It must not be modified.
func (e *Engine) Grid() *occupancy.Grid { return e.grid }

// Run places every word of t in rank order. Words that cannot be placed are
// recorded in Result.Dropped; only input or cancellation errors fail the
// run.
func (e *Engine) Run(t *freq.Table) (*Result, error) {
	if e.state != StateIdle {
		return nil, errs.New(errs.ErrCodeInternal, "layout: engine already used (state %s)", e.state)
	}
	if t == nil || t.Len() == 0 {
		return nil, errs.New(errs.ErrCodeEmptyInput, "no words to lay out")
	}

	e.transition(StateSizing, -1, freq.Word{}, "")
	sized := e.mapper.Map(t)

	res := &Result{
		Width:   e.cfg.width,
		Height:  e.cfg.height,
		Seed:    e.cfg.seed,
		Placed:  make([]PlacedWord, 0, len(sized)),
		Dropped: []DroppedWord{},
	}

	limit := math.Inf(1)
	for i, s := range sized {
		if err := e.cfg.ctx.Err(); err != nil {
			return nil, errs.Wrap(errs.ErrCodeTimeout, err, "layout cancelled after %d of %d words", i, len(sized))
		}
		e.transition(StatePlacingWord, i, s.Word, "")

		if s.TooSmall {
			res.Dropped = append(res.Dropped, DroppedWord{Word: s.Word, Size: s.Size, Reason: ReasonTooSmall})
			e.transition(StateDropped, i, s.Word, ReasonTooSmall)
			continue
		}

		size := min(s.Size, limit)
		p, drop, err := e.place(s.Word, size)
		if err != nil {
			return nil, err
		}
		if drop != nil {
			res.Dropped = append(res.Dropped, *drop)
			e.transition(StateDropped, i, s.Word, drop.Reason)
			continue
		}
		res.Placed = append(res.Placed, p)
		limit = p.Size
		e.transition(StateCommitted, i, s.Word, "")
	}

	res.Coverage = e.grid.Coverage()
	e.transition(StateDone, -1, freq.Word{}, "")
	return res, nil
}

func (e *Engine) transition(s State, i int, w freq.Word, reason Reason) {
	e.state = s
	if e.cfg.observer != nil {
		e.cfg.observer(Event{State: s, Index: i, Word: w, Reason: reason})
	}
}

// place tries the word at its drawn rotation, shrinking by the font step,
// then at each remaining rotation from the original size.
func (e *Engine) place(w freq.Word, size float64) (PlacedWord, *DroppedWord, error) {
	rotations := e.rotations()
	start := e.start()

	var lastSize float64
	for _, rot := range rotations {
		for sz := size; sz >= e.mapper.MinSize && sz > 0; sz -= e.cfg.fontStep {
			lastSize = sz
			m, err := e.rast.Rasterize(w.Text, sz, rot)
			if err != nil {
				return PlacedWord{}, &DroppedWord{Word: w, Size: sz, Reason: ReasonRenderFailed, Detail: err.Error()}, nil
			}
			if m.Empty() {
				return PlacedWord{}, &DroppedWord{Word: w, Size: sz, Reason: ReasonRenderFailed, Detail: "glyph has no ink"}, nil
			}

			pos, ok, err := e.search(m, start)
			if err != nil {
				return PlacedWord{}, nil, err
			}
			if ok {
				e.commit(m, pos)
				return PlacedWord{
					SizedWord: SizedWord{Word: w, Size: sz, Rotation: rot},
					X:         pos.X,
					Y:         pos.Y,
					Width:     m.Width(),
					Height:    m.Height(),
				}, nil, nil
			}
			if e.cfg.fontStep <= 0 {
				break
			}
		}
	}
	return PlacedWord{}, &DroppedWord{Word: w, Size: lastSize, Reason: ReasonNoSpace}, nil
}

// rotations draws the word's rotation and appends the retry order.
func (e *Engine) rotations() []float64 {
	if r := e.cfg.rotRange; r != nil {
		return []float64{r[0] + e.rng.Float64()*(r[1]-r[0])}
	}
	set := e.cfg.rotations
	pick := 0
	if e.rng.Float64() < e.cfg.rotateChance && len(set) > 1 {
		pick = 1 + e.rng.IntN(len(set)-1)
	}
	out := []float64{set[pick]}
	if e.cfg.rotationRetry {
		for i, r := range set {
			if i != pick {
				out = append(out, r)
			}
		}
	}
	return out
}

// start returns the spiral centre for the next word.
func (e *Engine) start() image.Point {
	p := e.origin
	if j := e.cfg.jitter; j > 0 {
		p.X += e.rng.IntN(2*j+1) - j
		p.Y += e.rng.IntN(2*j+1) - j
		p.X = min(max(p.X, 0), e.cfg.width-1)
		p.Y = min(max(p.Y, 0), e.cfg.height-1)
	}
	return p
}

// search walks the spiral around start and returns the first top-left
// position where m fits.
func (e *Engine) search(m *glyph.Mask, start image.Point) (image.Point, bool, error) {
	if m.Width() > e.cfg.width || m.Height() > e.cfg.height {
		if trimmed, _ := m.Trim(); trimmed.Width() > e.cfg.width || trimmed.Height() > e.cfg.height {
			return image.Point{}, false, nil
		}
	}
	maxR := e.cfg.maxRadius
	if maxR <= 0 {
		maxR = farthestCorner(start, e.cfg.width, e.cfg.height)
	}
	half := image.Pt(m.Width()/2, m.Height()/2)
	sp := newSpiral(start, e.cfg.spacing, e.cfg.step, maxR)
	for n := 0; ; n++ {
		if n%ctxCheckEvery == ctxCheckEvery-1 {
			if err := e.cfg.ctx.Err(); err != nil {
				return image.Point{}, false, errs.Wrap(errs.ErrCodeTimeout, err, "layout cancelled during search")
			}
		}
		c, ok := sp.next()
		if !ok {
			return image.Point{}, false, nil
		}
		pos := c.Sub(half)
		if !e.grid.Collides(m, pos.X, pos.Y) {
			return pos, true, nil
		}
	}
}

// commit marks m at pos, grown by the configured margin.
func (e *Engine) commit(m *glyph.Mask, pos image.Point) {
	r := e.cfg.margin
	e.grid.Commit(glyph.Dilate(m, r), pos.X-r, pos.Y-r)
}
