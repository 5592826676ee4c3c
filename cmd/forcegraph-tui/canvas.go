package main

import (
	"math"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-forcegraph/pkg/visualization"
)

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellEdge
	cellLabel
	cellNode
	cellPinned
	cellSelected
	cellFocus
)

var cellStyles = map[cellKind]lipgloss.Style{
	cellEdge:     lipgloss.NewStyle().Foreground(lipgloss.Color("#555555")),
	cellLabel:    lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
	cellNode:     lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF")).Bold(true),
	cellPinned:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")).Bold(true),
	cellSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#FF00FF")).Bold(true),
	cellFocus:    lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true),
}

// canvas is a character grid. Higher kinds overwrite lower ones.
type canvas struct {
	w, h  int
	runes [][]rune
	kinds [][]cellKind
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: max(w, 0), h: max(h, 0)}
	c.runes = make([][]rune, c.h)
	c.kinds = make([][]cellKind, c.h)
	for row := range c.runes {
		c.runes[row] = []rune(strings.Repeat(" ", c.w))
		c.kinds[row] = make([]cellKind, c.w)
	}
	return c
}

func (c *canvas) set(col, row int, r rune, kind cellKind) {
	if col < 0 || row < 0 || col >= c.w || row >= c.h {
		return
	}
	if kind < c.kinds[row][col] {
		return
	}
	c.runes[row][col] = r
	c.kinds[row][col] = kind
}

func (c *canvas) at(col, row int) (rune, cellKind) {
	if col < 0 || row < 0 || col >= c.w || row >= c.h {
		return ' ', cellEmpty
	}
	return c.runes[row][col], c.kinds[row][col]
}

// line draws from (x0,y0) to (x1,y1) with Bresenham's algorithm. The
// endpoints are skipped since nodes sit there.
func (c *canvas) line(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	ch := edgeGlyph(x1-x0, y1-y0)
	e := dx + dy
	x, y := x0, y0
	for steps := 0; steps <= dx-dy; steps++ {
		if (x != x0 || y != y0) && (x != x1 || y != y1) {
			c.set(x, y, ch, cellEdge)
		}
		if x == x1 && y == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func (c *canvas) text(col, row int, s string, kind cellKind) {
	for i, r := range []rune(s) {
		c.set(col+i, row, r, kind)
	}
}

// Render returns the grid as styled lines
func (c *canvas) Render() string {
	var b strings.Builder
	for row := 0; row < c.h; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for col := 1; col <= c.w; col++ {
			if col < c.w && c.kinds[row][col] == c.kinds[row][start] {
				continue
			}
			run := string(c.runes[row][start:col])
			if style, ok := cellStyles[c.kinds[row][start]]; ok {
				run = style.Render(run)
			}
			b.WriteString(run)
			start = col
		}
	}
	return b.String()
}

func edgeGlyph(dx, dy int) rune {
	switch {
	case dy == 0 || abs(dx) > 2*abs(dy):
		return '-'
	case dx == 0 || abs(dy) > 2*abs(dx):
		return '|'
	case (dx > 0) == (dy > 0):
		return '\\'
	default:
		return '/'
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// glyph is the character drawn for a node
func glyph(node visualization.NodeState) rune {
	name := node.Label
	if name == "" {
		name = node.ID
	}
	for _, r := range name {
		return unicode.ToUpper(r)
	}
	return 'o'
}

// drawLayout projects the session through its camera onto a w×h grid.
// Edges go first so nodes and labels sit on top.
func drawLayout(s *visualization.Session, w, h int, selected string) *canvas {
	c := newCanvas(w, h)
	if w == 0 || h == 0 {
		return c
	}
	cam := s.Camera()
	vp := s.Viewport()
	project := func(p visualization.Position) (int, int) {
		sp := cam.Apply(p)
		col := int(math.Floor(sp.X / vp.Width * float64(w)))
		row := int(math.Floor(sp.Y / vp.Height * float64(h)))
		return col, row
	}

	st := s.State()
	positions := make(map[string]visualization.Position, len(st.Nodes))
	for _, node := range st.Nodes {
		positions[node.ID] = node.Position
	}
	for _, e := range st.Edges {
		src, ok1 := positions[e.SourceID]
		dst, ok2 := positions[e.TargetID]
		if !ok1 || !ok2 {
			continue
		}
		x0, y0 := project(src)
		x1, y1 := project(dst)
		c.line(x0, y0, x1, y1)
	}

	for _, node := range st.Nodes {
		col, row := project(node.Position)
		kind := cellNode
		switch {
		case node.ID == selected:
			kind = cellSelected
			c.text(col+2, row, node.ID, cellLabel)
		case node.ID == st.FocusNodeID:
			kind = cellFocus
		case node.Pinned:
			kind = cellPinned
		}
		c.set(col, row, glyph(node), kind)
	}
	return c
}
