package main

import (
	"math"
	"math/rand/v2"
)

// swarm is a set of points drifting at constant speed and bouncing off
// the canvas edges.
type swarm struct {
	w, h float32
	pos  []float32 // x, y pairs
	vel  []float32 // dx, dy pairs
}

func newSwarm(n int, w, h, speed float32, rng *rand.Rand) *swarm {
	s := &swarm{
		w:   w,
		h:   h,
		pos: make([]float32, 2*n),
		vel: make([]float32, 2*n),
	}
	for i := range n {
		s.pos[2*i] = rng.Float32() * w
		s.pos[2*i+1] = rng.Float32() * h
		phi := rng.Float64() * 2 * math.Pi * 0.25
		s.vel[2*i] = float32(math.Cos(phi)) * speed
		s.vel[2*i+1] = float32(math.Sin(phi)) * speed
	}
	return s
}

func (s *swarm) len() int { return len(s.pos) / 2 }

// step advances every point by its velocity and flips the velocity
// component of any coordinate that left the canvas.
func (s *swarm) step() {
	for i := 0; i < len(s.pos); i += 2 {
		s.pos[i] += s.vel[i]
		s.pos[i+1] += s.vel[i+1]
		if s.pos[i] < 0 || s.pos[i] > s.w {
			s.vel[i] = -s.vel[i]
		}
		if s.pos[i+1] < 0 || s.pos[i+1] > s.h {
			s.vel[i+1] = -s.vel[i+1]
		}
	}
}

func (s *swarm) at(i int) (x, y float32) {
	return s.pos[2*i], s.pos[2*i+1]
}
