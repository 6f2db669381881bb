// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package shaders holds the WGSL sources used by the GPU batch renderer
// and their compiled SPIR-V form.
package shaders

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/naga"
)

//go:embed batch.wgsl
var batchSource string

// ParamsSize is the size in bytes of the batch uniform block.
const ParamsSize = 32

// Bind group slots used by batch.wgsl.
const (
	BindingParams = 0
	BindingCoords = 1
	BindingColors = 2
)

// Entry points in batch.wgsl.
const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)

// BatchSource returns the WGSL source of the batch shader.
func BatchSource() string {
	return batchSource
}

var (
	batchOnce  sync.Once
	batchSPIRV []uint32
	batchErr   error
)

// BatchSPIRV compiles the batch shader once and returns the SPIR-V words.
// The returned slice is shared and must not be modified.
func BatchSPIRV() ([]uint32, error) {
	batchOnce.Do(func() {
		batchSPIRV, batchErr = CompileSPIRV(batchSource)
	})
	return batchSPIRV, batchErr
}

// CompileSPIRV compiles WGSL source to SPIR-V words.
func CompileSPIRV(wgsl string) ([]uint32, error) {
	code, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("shaders: compile: %w", err)
	}
	if len(code)%4 != 0 {
		return nil, fmt.Errorf("shaders: SPIR-V length %d is not word aligned", len(code))
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return words, nil
}

// Params mirrors the Params uniform struct in batch.wgsl.
type Params struct {
	ViewportWidth  float32
	ViewportHeight float32
	Stride         uint32
	Dim            uint32
	Vertices       uint32
	HasColors      bool
	DefaultColor   uint32
}

// Bytes encodes the params in uniform buffer layout.
func (p Params) Bytes() []byte {
	buf := make([]byte, ParamsSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(p.ViewportWidth))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(p.ViewportHeight))
	binary.LittleEndian.PutUint32(buf[8:12], p.Stride)
	binary.LittleEndian.PutUint32(buf[12:16], p.Dim)
	binary.LittleEndian.PutUint32(buf[16:20], p.Vertices)
	if p.HasColors {
		binary.LittleEndian.PutUint32(buf[20:24], 1)
	}
	binary.LittleEndian.PutUint32(buf[24:28], p.DefaultColor)
	// Padding bytes 28..31 remain zero.
	return buf
}
