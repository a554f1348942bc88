package editor

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gekko3d/galaxy"
	"github.com/gekko3d/galaxy/rt/core"
)

type ControlKind int

const (
	ControlInt ControlKind = iota
	ControlFloat
	ControlColor
)

// HueStep is the colour nudge in degrees.
const HueStep = 1.0

// ToneStep is the saturation and value nudge, both in [0,1].
const ToneStep = 0.01

// ColorChannel picks which HSV component a colour nudge moves.
type ColorChannel int

const (
	ChannelHue ColorChannel = iota
	ChannelSaturation
	ChannelValue
)

func (ch ColorChannel) String() string {
	switch ch {
	case ChannelSaturation:
		return "sat"
	case ChannelValue:
		return "val"
	}
	return "hue"
}

// CoarseMultiplier scales a nudge while Shift is held.
const CoarseMultiplier = 10

// Control edits one generation parameter. Numeric controls are clamped to
// [Min,Max] and snapped to Step; colour controls move one HSV channel.
type Control struct {
	Name string
	Kind ControlKind
	Min  float64
	Max  float64
	Step float64

	get      func(p *galaxy.GenerationParameters) float64
	set      func(p *galaxy.GenerationParameters, v float64)
	color    func(p *galaxy.GenerationParameters) *galaxy.Color
	decimals int
}

func numeric(name string, kind ControlKind, lo, hi, step float64,
	get func(p *galaxy.GenerationParameters) float64,
	set func(p *galaxy.GenerationParameters, v float64)) Control {
	return Control{Name: name, Kind: kind, Min: lo, Max: hi, Step: step, get: get, set: set, decimals: decimalsOf(step)}
}

func colorControl(name string, field func(p *galaxy.GenerationParameters) *galaxy.Color) Control {
	return Control{Name: name, Kind: ControlColor, Min: 0, Max: 360, Step: HueStep, color: field}
}

// DefaultControls lists every generation parameter in panel order.
func DefaultControls() []Control {
	return []Control{
		numeric("count", ControlInt, galaxy.MinCount, galaxy.MaxCount, 100,
			func(p *galaxy.GenerationParameters) float64 { return float64(p.Count) },
			func(p *galaxy.GenerationParameters, v float64) { p.Count = int(v) }),
		numeric("size", ControlFloat, 1, 64, 0.5,
			func(p *galaxy.GenerationParameters) float64 { return float64(p.Size) },
			func(p *galaxy.GenerationParameters, v float64) { p.Size = float32(v) }),
		numeric("radius", ControlFloat, 0.01, 20, 0.01,
			func(p *galaxy.GenerationParameters) float64 { return float64(p.Radius) },
			func(p *galaxy.GenerationParameters, v float64) { p.Radius = float32(v) }),
		numeric("branches", ControlInt, galaxy.MinBranches, 20, 1,
			func(p *galaxy.GenerationParameters) float64 { return float64(p.Branches) },
			func(p *galaxy.GenerationParameters, v float64) { p.Branches = int(v) }),
		numeric("spin", ControlFloat, -5, 5, 0.001,
			func(p *galaxy.GenerationParameters) float64 { return float64(p.Spin) },
			func(p *galaxy.GenerationParameters, v float64) { p.Spin = float32(v) }),
		numeric("randomness", ControlFloat, 0, 2, 0.001,
			func(p *galaxy.GenerationParameters) float64 { return float64(p.Randomness) },
			func(p *galaxy.GenerationParameters, v float64) { p.Randomness = float32(v) }),
		numeric("randomnessPower", ControlFloat, galaxy.MinRandomnessPower, 10, 0.001,
			func(p *galaxy.GenerationParameters) float64 { return float64(p.RandomnessPower) },
			func(p *galaxy.GenerationParameters, v float64) { p.RandomnessPower = float32(v) }),
		colorControl("insideColor", func(p *galaxy.GenerationParameters) *galaxy.Color { return &p.InsideColor }),
		colorControl("outsideColor", func(p *galaxy.GenerationParameters) *galaxy.Color { return &p.OutsideColor }),
	}
}

// Value reads the control's current value from p. For colours it is the hue.
func (c *Control) Value(p *galaxy.GenerationParameters) float64 {
	if c.Kind == ControlColor {
		h, _, _ := c.color(p).Hsv()
		return h
	}
	return c.get(p)
}

// Constrain clamps v to the control's range and snaps it to the step grid
// anchored at Min.
func (c *Control) Constrain(v float64) float64 {
	if math.IsNaN(v) {
		return c.Min
	}
	if c.Step > 0 {
		v = c.Min + math.Round((v-c.Min)/c.Step)*c.Step
	}
	v = math.Max(c.Min, math.Min(c.Max, v))
	if c.decimals > 0 {
		pow := math.Pow(10, float64(c.decimals))
		v = math.Round(v*pow) / pow
	}
	return v
}

// Nudge moves the control by steps and reports whether p changed. Colour
// controls rotate the hue.
func (c *Control) Nudge(p *galaxy.GenerationParameters, steps float64) bool {
	if c.Kind == ControlColor {
		return c.NudgeColor(p, ChannelHue, steps)
	}
	before := c.get(p)
	c.set(p, c.Constrain(before+steps*c.Step))
	return c.get(p) != before
}

// NudgeColor moves one HSV channel of a colour control. Hue wraps at 360;
// saturation and value clamp to [0,1].
func (c *Control) NudgeColor(p *galaxy.GenerationParameters, ch ColorChannel, steps float64) bool {
	if c.Kind != ControlColor {
		return false
	}
	col := c.color(p)
	h, s, v := col.Hsv()
	switch ch {
	case ChannelHue:
		if s == 0 || v == 0 {
			return false
		}
		h = math.Mod(h+steps*c.Step, 360)
		if h < 0 {
			h += 360
		}
	case ChannelSaturation:
		next := clamp01(s + steps*ToneStep)
		if next == s {
			return false
		}
		s = next
	case ChannelValue:
		next := clamp01(v + steps*ToneStep)
		if next == v {
			return false
		}
		v = next
	}
	next := galaxy.ColorFromHsv(h, s, v)
	if next == *col {
		return false
	}
	*col = next
	return true
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func (c *Control) Format(p *galaxy.GenerationParameters) string {
	switch c.Kind {
	case ControlColor:
		return c.color(p).Hex()
	case ControlInt:
		return strconv.Itoa(int(c.get(p)))
	}
	return strconv.FormatFloat(c.get(p), 'f', c.decimals, 64)
}

func decimalsOf(step float64) int {
	d := 0
	for d < 6 && math.Abs(step-math.Round(step)) > 1e-9 {
		step *= 10
		d++
	}
	return d
}

// Panel is the keyboard driven parameter editor. Nudges edit a working copy;
// Commit hands the result back once the key is released, the way a slider
// reports on finish rather than on every change.
type Panel struct {
	Controls []Control
	Selected int
	Visible  bool
	Channel  ColorChannel

	params  galaxy.GenerationParameters
	pending bool
}

func NewPanel(params galaxy.GenerationParameters) *Panel {
	return &Panel{
		Controls: DefaultControls(),
		Visible:  true,
		params:   params,
	}
}

func (p *Panel) Params() galaxy.GenerationParameters {
	return p.params
}

// SetParams replaces the working copy, dropping any uncommitted edit.
func (p *Panel) SetParams(params galaxy.GenerationParameters) {
	p.params = params
	p.pending = false
}

// CycleChannel steps the colour channel hue, sat, val and back to hue.
func (p *Panel) CycleChannel() {
	p.Channel = (p.Channel + 1) % 3
}

func (p *Panel) Toggle() {
	p.Visible = !p.Visible
}

func (p *Panel) Select(delta int) {
	n := len(p.Controls)
	if n == 0 {
		return
	}
	p.Selected = ((p.Selected+delta)%n + n) % n
}

func (p *Panel) Current() *Control {
	if len(p.Controls) == 0 {
		return nil
	}
	return &p.Controls[p.Selected]
}

// Nudge moves the selected control by dir steps, ten times that when coarse.
func (p *Panel) Nudge(dir int, coarse bool) bool {
	c := p.Current()
	if c == nil || dir == 0 || !p.Visible {
		return false
	}
	steps := float64(dir)
	if coarse {
		steps *= CoarseMultiplier
	}
	var changed bool
	if c.Kind == ControlColor {
		changed = c.NudgeColor(&p.params, p.Channel, steps)
	} else {
		changed = c.Nudge(&p.params, steps)
	}
	if changed {
		p.pending = true
		return true
	}
	return false
}

// Commit returns the edited parameters if anything changed since the last
// commit.
func (p *Panel) Commit() (galaxy.GenerationParameters, bool) {
	if !p.pending {
		return p.params, false
	}
	p.pending = false
	return p.params, true
}

func (p *Panel) Pending() bool {
	return p.pending
}

func (p *Panel) Lines() []string {
	lines := make([]string, 0, len(p.Controls)+1)
	for i := range p.Controls {
		c := &p.Controls[i]
		marker := "  "
		if i == p.Selected {
			marker = "> "
		}
		line := fmt.Sprintf("%s%-16s %s", marker, c.Name, c.Format(&p.params))
		if i == p.Selected && c.Kind == ControlColor {
			line += " (" + p.Channel.String() + ")"
		}
		lines = append(lines, line)
	}
	lines = append(lines, "  [up/down] select  [left/right] adjust  [shift] x10  [tab] hue/sat/val  [h] hide")
	return lines
}

var (
	panelText     = [4]float32{0.9, 0.9, 0.9, 1}
	panelSelected = [4]float32{1, 0.8, 0.3, 1}
)

// TextItems lays the panel out as one item per line starting at x,y in
// surface pixels.
func (p *Panel) TextItems(tr *core.TextRenderer, x, y, scale float32) []core.TextItem {
	if !p.Visible || tr == nil {
		return nil
	}
	lineH := tr.GetLineHeight(scale)
	lines := p.Lines()
	items := make([]core.TextItem, 0, len(lines))
	for i, line := range lines {
		color := panelText
		if i == p.Selected {
			color = panelSelected
		}
		items = append(items, core.TextItem{
			Text:     line,
			Position: [2]float32{x, y + float32(i)*lineH},
			Scale:    scale,
			Color:    color,
		})
	}
	return items
}
