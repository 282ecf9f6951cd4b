package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/san-kum/hocp/internal/kkt"
)

const (
	sketchWidth  = 70
	sketchHeight = 20
	clearScreen  = "\033[2J\033[H"
	hideCursor   = "\033[?25l"
	showCursor   = "\033[?25h"
)

// sketchRenderer redraws a solved trajectory's configuration frame by
// frame to the terminal, grounded on the teacher's
// internal/tui.LiveRenderer ascii canvas — an ANSI clear-screen redraw
// loop rather than a bubbletea program, since this plays back an
// already-solved trajectory instead of driving a live simulation.
type sketchRenderer struct {
	modelName string
	canvas    [][]rune
	trail     []struct{ x, y int }
}

func newSketchRenderer(modelName string) *sketchRenderer {
	canvas := make([][]rune, sketchHeight)
	for i := range canvas {
		canvas[i] = make([]rune, sketchWidth)
	}
	return &sketchRenderer{modelName: modelName, canvas: canvas, trail: make([]struct{ x, y int }, 0, 50)}
}

func (r *sketchRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *sketchRenderer) set(x, y int, c rune) {
	if x >= 0 && x < sketchWidth && y >= 0 && y < sketchHeight {
		r.canvas[y][x] = c
	}
}

func (r *sketchRenderer) line(x1, y1, x2, y2 int, c rune) {
	dx, dy := abs(x2-x1), abs(y2-y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		r.set(x1, y1, c)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func (r *sketchRenderer) drawFrame(q []float64) {
	switch {
	case r.modelName == "pendulum" && len(q) >= 1:
		r.drawPendulum(q)
	case r.modelName == "twolink" && len(q) >= 2:
		r.drawTwoLink(q)
	default:
		r.drawGeneric(q)
	}
}

func (r *sketchRenderer) drawPendulum(q []float64) {
	theta := q[0]
	px, py := sketchWidth/2, 3
	length := 10.0
	bx := px + int(length*math.Sin(theta))
	by := py + int(length*math.Cos(theta))

	r.trail = append(r.trail, struct{ x, y int }{bx, by})
	if len(r.trail) > 40 {
		r.trail = r.trail[1:]
	}
	for i, pt := range r.trail {
		if i < len(r.trail)/2 {
			r.set(pt.x, pt.y, '.')
		} else {
			r.set(pt.x, pt.y, 'o')
		}
	}

	r.set(px, py, '+')
	r.line(px, py, bx, by, '|')
	r.set(bx, by, 'O')
}

func (r *sketchRenderer) drawTwoLink(q []float64) {
	t1, t2 := q[0], q[1]
	px, py := sketchWidth/2, 2
	length := 6.0

	b1x := px + int(length*math.Sin(t1))
	b1y := py + int(length*math.Cos(t1))
	b2x := b1x + int(length*math.Sin(t1+t2))
	b2y := b1y + int(length*math.Cos(t1+t2))

	r.trail = append(r.trail, struct{ x, y int }{b2x, b2y})
	if len(r.trail) > 50 {
		r.trail = r.trail[1:]
	}
	for _, pt := range r.trail {
		r.set(pt.x, pt.y, '.')
	}

	r.set(px, py, '+')
	r.line(px, py, b1x, b1y, '|')
	r.set(b1x, b1y, 'o')
	r.line(b1x, b1y, b2x, b2y, '|')
	r.set(b2x, b2y, 'O')
}

func (r *sketchRenderer) drawGeneric(q []float64) {
	cy := sketchHeight / 2
	for i := 5; i < sketchWidth-5; i++ {
		r.set(i, cy, '-')
	}
	if len(q) == 0 {
		return
	}

	bw := (sketchWidth - 15) / len(q)
	if bw < 3 {
		bw = 3
	}

	maxVal := 1.0
	for _, v := range q {
		if math.Abs(v) > maxVal {
			maxVal = math.Abs(v)
		}
	}

	for i, v := range q {
		bx := 8 + i*bw
		bh := int((v / maxVal) * float64(sketchHeight/3))
		if bh > 0 {
			for y := cy - 1; y >= cy-bh && y >= 1; y-- {
				r.set(bx, y, '#')
			}
		} else {
			for y := cy + 1; y <= cy-bh && y < sketchHeight-1; y++ {
				r.set(bx, y, '#')
			}
		}
	}
}

func (r *sketchRenderer) render(q []float64, t float64) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  t=%.2fs\n", r.modelName, t))
	b.WriteString("  " + strings.Repeat("-", sketchWidth) + "\n")

	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", sketchWidth) + "\n")

	stateStr := "  "
	for i, v := range q {
		if i >= 4 {
			break
		}
		stateStr += fmt.Sprintf("q%d=%.2f ", i, v)
	}
	b.WriteString(stateStr + "\n")

	fmt.Print(b.String())
}

func (r *sketchRenderer) start() { fmt.Print(hideCursor) }
func (r *sketchRenderer) stop()  { fmt.Print(showCursor) }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// sketchTrajectory redraws a solved trajectory's configuration stage by
// stage at fps frames per second.
func sketchTrajectory(modelName string, times []float64, solution []*kkt.SplitSolution, fps int) {
	r := newSketchRenderer(modelName)
	r.start()
	defer r.stop()

	delay := time.Second / time.Duration(fps)
	for i, sol := range solution {
		r.clear()
		r.drawFrame(sol.Q)
		t := 0.0
		if i < len(times) {
			t = times[i]
		}
		r.render(sol.Q, t)
		time.Sleep(delay)
	}
}
