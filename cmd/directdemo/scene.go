package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/gogpu/directbuf"
)

// scene owns the simulation behind one kind of primitive.
type scene interface {
	// setup allocates the scene's streams and writes the fixed ones.
	setup(dc *directbuf.Context) error
	// produce advances the simulation and writes the coordinates.
	produce() error
	count() int
}

func newScene(name string, n int, w, h float32, seed uint64) (scene, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	switch name {
	case "points":
		return &pointsScene{swarm: newSwarm(withDefault(n, 80000), w, h, 0.5, rng)}, nil
	case "lines":
		n = withDefault(n, 5000)
		return &linesScene{swarm: newSwarm(2*n, w, h, 0.5, rng), pairs: rng.Perm(2 * n), rng: rng}, nil
	case "boxes":
		n = withDefault(n, 20000)
		sc := &boxesScene{swarm: newSwarm(n, w, h, 0.5, rng), radius: make([]float32, n)}
		for i := range sc.radius {
			sc.radius[i] = float32(2 + rng.IntN(5))
		}
		return sc, nil
	default:
		return nil, fmt.Errorf("unknown scene %q (want points, lines or boxes)", name)
	}
}

func withDefault(n, def int) int {
	if n > 0 {
		return n
	}
	return def
}

// pointsScene draws one square point per swarm member.
type pointsScene struct {
	swarm *swarm
	bufs  *directbuf.Buffers
}

func (s *pointsScene) setup(dc *directbuf.Context) error {
	var err error
	s.bufs, err = dc.Allocate(directbuf.Point2D, s.swarm.len())
	return err
}

func (s *pointsScene) produce() error {
	s.swarm.step()
	return s.bufs.Coords.CopyFrom(s.swarm.pos)
}

func (s *pointsScene) count() int { return s.swarm.len() }

// linesScene joins random pairs of swarm members with colored segments.
type linesScene struct {
	swarm *swarm
	pairs []int
	rng   *rand.Rand
	bufs  *directbuf.Buffers
}

func (s *linesScene) setup(dc *directbuf.Context) error {
	var err error
	s.bufs, err = dc.Allocate(directbuf.Line2D, s.count(), directbuf.WithColored())
	if err != nil {
		return err
	}
	colors := s.bufs.Colors.Data()
	for i := range colors {
		c, err := directbuf.Pack(s.rng.IntN(255), s.rng.IntN(255), s.rng.IntN(255))
		if err != nil {
			return err
		}
		colors[i] = c
	}
	return nil
}

func (s *linesScene) produce() error {
	s.swarm.step()
	coords := s.bufs.Coords.Data()
	for i := range s.count() {
		line := coords[4*i : 4*i+4]
		line[0], line[1] = s.swarm.at(s.pairs[2*i])
		line[2], line[3] = s.swarm.at(s.pairs[2*i+1])
	}
	return nil
}

func (s *linesScene) count() int { return len(s.pairs) / 2 }

// boxesScene draws a closed square outline around each swarm member.
type boxesScene struct {
	swarm  *swarm
	radius []float32
	bufs   *directbuf.Buffers
}

func (s *boxesScene) setup(dc *directbuf.Context) error {
	var err error
	s.bufs, err = dc.Allocate(directbuf.Polyline2D, s.count(),
		directbuf.WithCoords(8), directbuf.WithStroked(), directbuf.WithColored(), directbuf.WithClosed())
	if err != nil {
		return err
	}
	black, err := directbuf.Pack(0, 0, 0)
	if err != nil {
		return err
	}
	if err := s.bufs.Colors.Fill(black); err != nil {
		return err
	}
	return s.bufs.Weights.Fill(0.5)
}

func (s *boxesScene) produce() error {
	s.swarm.step()
	for i := range s.count() {
		x, y := s.swarm.at(i)
		r := s.radius[i]
		err := s.bufs.Coords.SetRow(i, []float32{
			x - r, y + r,
			x + r, y + r,
			x + r, y - r,
			x - r, y - r,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *boxesScene) count() int { return s.swarm.len() }
