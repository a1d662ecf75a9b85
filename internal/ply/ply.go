// Package ply writes triangle meshes as binary PLY files and reads vertex
// positions back from PLY files.
package ply

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrInvalidMesh is returned for meshes whose arrays do not agree.
var ErrInvalidMesh = errors.New("ply: invalid mesh")

// Mesh is an indexed triangle mesh. N and UV are optional; when present N
// holds one normal per position and UV two values per position.
type Mesh struct {
	Indices []int
	P       []r3.Vec
	N       []r3.Vec
	UV      []float64
}

// Validate checks array sizes and index ranges.
func (m *Mesh) Validate() error {
	if len(m.Indices) == 0 || len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a positive multiple of 3", ErrInvalidMesh, len(m.Indices))
	}
	if len(m.P) == 0 {
		return fmt.Errorf("%w: no vertex positions", ErrInvalidMesh)
	}
	for _, i := range m.Indices {
		if i < 0 || i >= len(m.P) {
			return fmt.Errorf("%w: vertex index %d out of range [0, %d)", ErrInvalidMesh, i, len(m.P))
		}
	}
	if len(m.N) > 0 && len(m.N) != len(m.P) {
		return fmt.Errorf("%w: %d normals for %d positions", ErrInvalidMesh, len(m.N), len(m.P))
	}
	if len(m.UV) > 0 && len(m.UV) != 2*len(m.P) {
		return fmt.Errorf("%w: %d uv values for %d positions", ErrInvalidMesh, len(m.UV), len(m.P))
	}
	return nil
}

// WriteFile writes m to path.
func WriteFile(path string, m *Mesh) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return Write(f, m)
}

// Write encodes m as binary little endian PLY.
func Write(w io.Writer, m *Mesh) error {
	if err := m.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "ply\nformat binary_little_endian 1.0\ncomment written by pbrtgo\n")
	fmt.Fprintf(bw, "element vertex %d\n", len(m.P))
	fmt.Fprintf(bw, "property float x\nproperty float y\nproperty float z\n")
	if len(m.N) > 0 {
		fmt.Fprintf(bw, "property float nx\nproperty float ny\nproperty float nz\n")
	}
	if len(m.UV) > 0 {
		fmt.Fprintf(bw, "property float u\nproperty float v\n")
	}
	fmt.Fprintf(bw, "element face %d\n", len(m.Indices)/3)
	fmt.Fprintf(bw, "property list uchar int vertex_indices\nend_header\n")

	vertex := make([]float32, 0, 8)
	for i, p := range m.P {
		vertex = append(vertex[:0], float32(p.X), float32(p.Y), float32(p.Z))
		if len(m.N) > 0 {
			n := m.N[i]
			vertex = append(vertex, float32(n.X), float32(n.Y), float32(n.Z))
		}
		if len(m.UV) > 0 {
			vertex = append(vertex, float32(m.UV[2*i]), float32(m.UV[2*i+1]))
		}
		if err := binary.Write(bw, binary.LittleEndian, vertex); err != nil {
			return err
		}
	}

	for i := 0; i < len(m.Indices); i += 3 {
		face := struct {
			N uint8
			V [3]int32
		}{N: 3, V: [3]int32{int32(m.Indices[i]), int32(m.Indices[i+1]), int32(m.Indices[i+2])}}
		if err := binary.Write(bw, binary.LittleEndian, face); err != nil {
			return err
		}
	}
	return bw.Flush()
}
