package models

import (
	"math"

	"github.com/taigrr/umbra/pkg/math3d"
)

// NewUVSphere builds a sphere from sectors around the pole axis and stacks
// from pole to pole. The pole axis is local Z. Vertices are laid out stack by
// stack with sectors+1 per stack so the seam is duplicated.
func NewUVSphere(radius float64, sectors, stacks int) *Mesh {
	sectors = max(sectors, 3)
	stacks = max(stacks, 2)

	m := NewMesh("sphere")
	sectorStep := 2 * math.Pi / float64(sectors)
	stackStep := math.Pi / float64(stacks)

	for i := 0; i <= stacks; i++ {
		stackAngle := math.Pi/2 - float64(i)*stackStep
		xy := radius * math.Cos(stackAngle)
		z := radius * math.Sin(stackAngle)

		for j := 0; j <= sectors; j++ {
			sectorAngle := float64(j) * sectorStep
			pos := math3d.V3(xy*math.Cos(sectorAngle), xy*math.Sin(sectorAngle), z)
			m.AddVertex(pos, pos.Normalize())
		}
	}

	// The pole stacks contribute one triangle per sector, the rest two.
	for i := range stacks {
		k1 := i * (sectors + 1)
		k2 := k1 + sectors + 1

		for j := 0; j < sectors; j, k1, k2 = j+1, k1+1, k2+1 {
			if i != 0 {
				m.AddTriangle(k1, k2, k1+1)
			}
			if i != stacks-1 {
				m.AddTriangle(k1+1, k2, k2+1)
			}
		}
	}

	m.CalculateBounds()
	return m
}

// cubeFaces lists each face normal with two in-plane axes where u x v = n.
var cubeFaces = [6][3]math3d.Vec3{
	{{X: 1}, {Y: 1}, {Z: 1}},
	{{X: -1}, {Z: 1}, {Y: 1}},
	{{Y: 1}, {Z: 1}, {X: 1}},
	{{Y: -1}, {X: 1}, {Z: 1}},
	{{Z: 1}, {X: 1}, {Y: 1}},
	{{Z: -1}, {Y: 1}, {X: 1}},
}

// NewCube builds an axis-aligned cube of edge length size centred on the
// origin. Each face has its own four vertices so normals stay flat.
func NewCube(size float64) *Mesh {
	m := NewMesh("cube")
	h := size / 2

	for _, f := range cubeFaces {
		n, u, v := f[0], f[1].Scale(h), f[2].Scale(h)
		c := n.Scale(h)

		p0 := m.AddVertex(c.Sub(u).Sub(v), n)
		p1 := m.AddVertex(c.Add(u).Sub(v), n)
		p2 := m.AddVertex(c.Add(u).Add(v), n)
		p3 := m.AddVertex(c.Sub(u).Add(v), n)

		m.AddTriangle(p0, p1, p2)
		m.AddTriangle(p0, p2, p3)
	}

	m.CalculateBounds()
	return m
}

// NewPlane builds a square of edge length size in the XZ plane facing +Y.
func NewPlane(size float64) *Mesh {
	m := NewMesh("plane")
	h := size / 2
	up := math3d.Up()

	p0 := m.AddVertex(math3d.V3(-h, 0, -h), up)
	p1 := m.AddVertex(math3d.V3(-h, 0, h), up)
	p2 := m.AddVertex(math3d.V3(h, 0, h), up)
	p3 := m.AddVertex(math3d.V3(h, 0, -h), up)

	m.AddTriangle(p0, p1, p2)
	m.AddTriangle(p0, p2, p3)

	m.CalculateBounds()
	return m
}
