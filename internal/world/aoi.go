package world

import (
	"fmt"

	"github.com/l1jgo/worldcore/internal/entity"
)

// Grid is the cell-based area of interest. A cell sees every entity that
// stands within radius cells of it (Chebyshev), so with radius 1 the 3x3
// neighbourhood. Cells exist only while something stands in them.
//
// Grid is the only caller of EnterView/LeaveView, and it updates each cell's
// roster in the same step, which keeps cell.viewing and every entity's
// observer set mirror images of each other.
// Accessed only from the game loop goroutine; no locks.
type Grid struct {
	cellSize int32
	radius   int32
	cells    map[entity.CellKey]*Cell
}

// Cell is one spatial partition. It implements entity.Observer: anything sent
// to it goes to every player standing in it.
type Cell struct {
	key       entity.CellKey
	occupants map[entity.Entity]struct{}
	players   map[*entity.Player]struct{}
	viewing   map[entity.Entity]struct{} // observer roster
}

func newCell(k entity.CellKey) *Cell {
	return &Cell{
		key:       k,
		occupants: make(map[entity.Entity]struct{}),
		players:   make(map[*entity.Player]struct{}),
		viewing:   make(map[entity.Entity]struct{}),
	}
}

func (c *Cell) Key() entity.CellKey { return c.key }
func (c *Cell) Occupants() int      { return len(c.occupants) }
func (c *Cell) Viewing() int        { return len(c.viewing) }

// Sees reports whether e is on the cell's roster.
func (c *Cell) Sees(e entity.Entity) bool {
	_, ok := c.viewing[e]
	return ok
}

// Send implements entity.Observer.
func (c *Cell) Send(data []byte) {
	for p := range c.players {
		p.Send(data)
	}
}

func (c *Cell) String() string {
	return fmt.Sprintf("cell(%d:%d,%d)", c.key.Instance, c.key.CX, c.key.CY)
}

func (c *Cell) addOccupant(e entity.Entity) {
	c.occupants[e] = struct{}{}
	if p, ok := e.(*entity.Player); ok {
		c.players[p] = struct{}{}
	}
}

func (c *Cell) removeOccupant(e entity.Entity) {
	delete(c.occupants, e)
	if p, ok := e.(*entity.Player); ok {
		delete(c.players, p)
	}
}

// NewGrid builds a grid. cellSize is in world units; radius in cells.
func NewGrid(cellSize, radius int32) *Grid {
	if cellSize <= 0 {
		cellSize = 20
	}
	if radius < 0 {
		radius = 0
	}
	return &Grid{
		cellSize: cellSize,
		radius:   radius,
		cells:    make(map[entity.CellKey]*Cell),
	}
}

func (g *Grid) toCellCoord(v int32) int32 {
	if v < 0 {
		return (v - g.cellSize + 1) / g.cellSize
	}
	return v / g.cellSize
}

// KeyFor returns the cell key of a position in an instance.
func (g *Grid) KeyFor(instance uint64, p entity.Pos) entity.CellKey {
	return entity.CellKey{Instance: instance, CX: g.toCellCoord(p.X), CY: g.toCellCoord(p.Y)}
}

// CellAt returns the live cell for k, or nil.
func (g *Grid) CellAt(k entity.CellKey) *Cell {
	return g.cells[k]
}

func (g *Grid) CellCount() int { return len(g.cells) }

// around returns the live cells within radius of k, k included.
func (g *Grid) around(k entity.CellKey) []*Cell {
	var out []*Cell
	for dx := -g.radius; dx <= g.radius; dx++ {
		for dy := -g.radius; dy <= g.radius; dy++ {
			nk := entity.CellKey{Instance: k.Instance, CX: k.CX + dx, CY: k.CY + dy}
			if c := g.cells[nk]; c != nil {
				out = append(out, c)
			}
		}
	}
	return out
}

func (g *Grid) within(a, b entity.CellKey) bool {
	if a.Instance != b.Instance {
		return false
	}
	return abs32(a.CX-b.CX) <= g.radius && abs32(a.CY-b.CY) <= g.radius
}

// show and hide are the only places an observer relation changes.
func show(c *Cell, e entity.Entity) {
	e.EnterView(c)
	c.viewing[e] = struct{}{}
}

func hide(c *Cell, e entity.Entity) {
	e.LeaveView(c)
	delete(c.viewing, e)
}

// createCell brings k to life with an empty room: the entities already
// standing nearby go on its roster, and their enter packets reach nobody yet.
func (g *Grid) createCell(k entity.CellKey) *Cell {
	c := newCell(k)
	g.cells[k] = c
	for _, n := range g.around(k) {
		for e := range n.occupants {
			show(c, e)
		}
	}
	return c
}

// destroyCell drops an empty cell, leaving view of everything it saw.
func (g *Grid) destroyCell(c *Cell) {
	for e := range c.viewing {
		hide(c, e)
	}
	delete(g.cells, c.key)
}

func (g *Grid) cellFor(k entity.CellKey) *Cell {
	if c := g.cells[k]; c != nil {
		return c
	}
	return g.createCell(k)
}

// Add places e at its current position and announces it to every nearby cell.
func (g *Grid) Add(e entity.Entity) {
	b := e.Record()
	k := g.KeyFor(b.Instance(), b.Position())
	b.SetCell(k)

	c := g.cellFor(k)
	for _, n := range g.around(k) {
		show(n, e)
	}
	c.addOccupant(e)

	if p, ok := e.(*entity.Player); ok {
		for other := range c.viewing {
			if other != e {
				entity.Show(other, p)
			}
		}
	}
}

// Remove takes e out of the grid. Every observer gets its leave notification
// and e's observer set is empty afterwards.
func (g *Grid) Remove(e entity.Entity) {
	b := e.Record()
	c := g.cells[b.Cell()]
	if c != nil {
		c.removeOccupant(e)
		if p, ok := e.(*entity.Player); ok {
			for other := range c.viewing {
				if other != e {
					entity.Hide(other, p)
				}
			}
		}
	}
	for _, o := range b.Observers() {
		if oc, ok := o.(*Cell); ok {
			hide(oc, e)
		} else {
			e.LeaveView(o)
		}
	}
	if c != nil && len(c.occupants) == 0 {
		g.destroyCell(c)
	}
}

// Move updates e's position. Observers that keep e in view get a move packet;
// cells that gain or lose it get enter or leave.
func (g *Grid) Move(e entity.Entity, pos entity.Pos) {
	b := e.Record()
	oldKey := b.Cell()
	b.SetPosition(pos)
	newKey := g.KeyFor(b.Instance(), pos)

	if oldKey == newKey {
		if mv := movePacket(e); mv != nil {
			// Step out of the cell for the broadcast so a player never
			// receives its own move.
			c := g.cells[oldKey]
			if c != nil {
				c.removeOccupant(e)
			}
			for _, o := range b.Observers() {
				o.Send(mv)
			}
			if c != nil {
				c.addOccupant(e)
			}
		}
		return
	}

	oc := g.cells[oldKey]
	var before map[entity.Entity]struct{}
	p, isPlayer := e.(*entity.Player)
	if isPlayer && oc != nil {
		before = make(map[entity.Entity]struct{}, len(oc.viewing))
		for other := range oc.viewing {
			before[other] = struct{}{}
		}
	}

	// e stands nowhere while its own transitions go out, so a moving
	// player never receives its own enter, leave or move.
	if oc != nil {
		oc.removeOccupant(e)
	}
	nc := g.cellFor(newKey)
	mv := movePacket(e)
	for _, o := range b.Observers() {
		obs, ok := o.(*Cell)
		if !ok {
			continue
		}
		if g.within(obs.key, newKey) {
			if mv != nil {
				obs.Send(mv)
			}
		} else {
			hide(obs, e)
		}
	}
	for _, n := range g.around(newKey) {
		show(n, e)
	}
	nc.addOccupant(e)
	b.SetCell(newKey)
	if oc != nil && len(oc.occupants) == 0 {
		g.destroyCell(oc)
	}

	if isPlayer {
		for other := range nc.viewing {
			if other == e {
				continue
			}
			if _, known := before[other]; !known {
				entity.Show(other, p)
			}
		}
		for other := range before {
			if other == e {
				continue
			}
			if _, still := nc.viewing[other]; !still {
				entity.Hide(other, p)
			}
		}
	}
}

// movePacket is nil for entities observers cannot see.
func movePacket(e entity.Entity) []byte {
	if egg, ok := e.(*entity.Egg); ok && egg.Dead {
		return nil
	}
	return entity.MovePacket(e)
}

// CheckConsistency verifies the cell↔entity mirror. A non-nil result is a bug
// in the grid, never a runtime condition to recover from.
func (g *Grid) CheckConsistency() error {
	for k, c := range g.cells {
		if len(c.occupants) == 0 {
			return fmt.Errorf("%s: live cell without occupants", c)
		}
		for e := range c.viewing {
			if !e.Record().ObservedBy(c) {
				return fmt.Errorf("%s: roster has %s but its observer set lacks the cell", c, e.Handle())
			}
			if !g.within(k, e.Record().Cell()) {
				return fmt.Errorf("%s: sees %s out of range", c, e.Handle())
			}
		}
		for e := range c.occupants {
			if e.Record().Cell() != k {
				return fmt.Errorf("%s: occupant %s thinks it is in %+v", c, e.Handle(), e.Record().Cell())
			}
			want := g.around(k)
			if len(want) != e.Record().ObserverCount() {
				return fmt.Errorf("%s: %s observed by %d cells, want %d", c, e.Handle(), e.Record().ObserverCount(), len(want))
			}
			for _, n := range want {
				if !n.Sees(e) || !e.Record().ObservedBy(n) {
					return fmt.Errorf("%s: %s not mirrored", n, e.Handle())
				}
			}
		}
	}
	return nil
}

func abs32(n int32) int32 {
	if n < 0 {
		return -n
	}
	return n
}
