// Package export renders an SVG snapshot of a subdomain: the cell-grid
// lines (when a *cellblock.Grid is supplied) and every particle projected
// onto the xy plane, coloured by ownership tag. Grounded on this package's
// internal/export/svg.go strings.Builder/header-footer SVG emission shape;
// the Braille viz.Canvas source dependency is replaced with direct
// particle/cellblock coordinates, since this engine has no terminal canvas
// to rasterize from.
package export

import (
	"fmt"
	"strings"

	"github.com/cellgrid/autotune/internal/cellblock"
	"github.com/cellgrid/autotune/internal/container"
	"github.com/cellgrid/autotune/internal/particle"
)

// colorFor maps an ownership tag to the dot colour by
// calling out owned/halo/dummy as the three states worth telling apart at a
// glance.
func colorFor(o particle.OwnershipState) string {
	switch o {
	case particle.Owned:
		return "#3fb950"
	case particle.Halo:
		return "#d29922"
	default:
		return "#6e7681"
	}
}

// Snapshot renders c's particles (and grid's cell lines, if grid is
// non-nil) as an SVG document of width x height pixels, projecting onto the
// xy plane of box.
func Snapshot(c container.Container, box particle.Box, grid *cellblock.Grid, width, height int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0d1117"/>
`, width, height, width, height))

	toScreen := func(pos particle.Vec3) (float64, float64) {
		spanX := box.Max[0] - box.Min[0]
		spanY := box.Max[1] - box.Min[1]
		x := (pos[0] - box.Min[0]) / spanX * float64(width)
		y := float64(height) - (pos[1]-box.Min[1])/spanY*float64(height)
		return x, y
	}

	if grid != nil {
		sb.WriteString(`<g stroke="#30363d" stroke-width="0.5">` + "\n")
		for ix := 1; ix < grid.Dims[0]-1; ix++ {
			x, _ := toScreen(particle.Vec3{box.Min[0] + float64(ix)*grid.CellLength[0], box.Min[1], box.Min[2]})
			sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="0" x2="%.1f" y2="%d"/>`+"\n", x, x, height))
		}
		for iy := 1; iy < grid.Dims[1]-1; iy++ {
			_, y := toScreen(particle.Vec3{box.Min[0], box.Min[1] + float64(iy)*grid.CellLength[1], box.Min[2]})
			sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%d" y2="%.1f"/>`+"\n", y, width, y))
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString(`<rect x="0" y="0" width="100%" height="100%" fill="none" stroke="#58a6ff" stroke-width="1.5"/>` + "\n")

	dotRadius := 2.0
	c.ForEach(particle.MaskOwnedOrHaloOrDummy, nil, func(p *particle.Particle) bool {
		x, y := toScreen(p.Position)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n", x, y, dotRadius, colorFor(p.Ownership)))
		return true
	})

	sb.WriteString("</svg>")
	return sb.String()
}

// Trajectory renders a simple xy polyline through points, unrelated to any
// container snapshot — useful for plotting one particle's path across steps
// when debugging a tuner-triggered container switch.
func Trajectory(points []particle.Vec3, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0][0], points[0][0]
	minY, maxY := points[0][1], points[0][1]
	for _, p := range points {
		if p[0] < minX {
			minX = p[0]
		}
		if p[0] > maxX {
			maxX = p[0]
		}
		if p[1] < minY {
			minY = p[1]
		}
		if p[1] > maxY {
			maxY = p[1]
		}
	}
	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0d1117"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`, width, height, width, height, strokeColor))

	for i, p := range points {
		x := (p[0] - minX) / rangeX * float64(width)
		y := float64(height) - (p[1]-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
