package ply

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// scalarSizes maps PLY scalar type names to their byte size.
var scalarSizes = map[string]int{
	"char": 1, "int8": 1, "uchar": 1, "uint8": 1,
	"short": 2, "int16": 2, "ushort": 2, "uint16": 2,
	"int": 4, "int32": 4, "uint": 4, "uint32": 4,
	"float": 4, "float32": 4,
	"double": 8, "float64": 8,
}

type property struct {
	name string
	typ  string
}

type header struct {
	format      string
	vertexCount int
	props       []property
}

// ReadPositions returns the vertex positions stored in the PLY file at path.
// The vertex element must be the first element of the file.
func ReadPositions(path string) ([]r3.Vec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodePositions(f)
}

// DecodePositions reads vertex positions from a PLY stream.
func DecodePositions(r io.Reader) ([]r3.Vec, error) {
	br := bufio.NewReader(r)
	h, err := readHeader(br)
	if err != nil {
		return nil, err
	}

	xi, yi, zi := -1, -1, -1
	for i, p := range h.props {
		switch p.name {
		case "x":
			xi = i
		case "y":
			yi = i
		case "z":
			zi = i
		}
	}
	if xi < 0 || yi < 0 || zi < 0 {
		return nil, fmt.Errorf("ply: vertex element lacks x, y or z")
	}

	out := make([]r3.Vec, 0, h.vertexCount)
	values := make([]float64, len(h.props))
	for v := 0; v < h.vertexCount; v++ {
		if h.format == "ascii" {
			err = readASCIIVertex(br, values)
		} else {
			err = readBinaryVertex(br, h, values)
		}
		if err != nil {
			return nil, fmt.Errorf("ply: vertex %d: %w", v, err)
		}
		out = append(out, r3.Vec{X: values[xi], Y: values[yi], Z: values[zi]})
	}
	return out, nil
}

func readHeader(br *bufio.Reader) (*header, error) {
	magic, err := br.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return nil, fmt.Errorf("ply: missing magic number")
	}

	h := &header{}
	element := ""
	seenElement := false
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("ply: truncated header: %w", err)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "format":
			if len(fields) < 2 {
				return nil, fmt.Errorf("ply: malformed format line")
			}
			switch fields[1] {
			case "ascii", "binary_little_endian", "binary_big_endian":
				h.format = fields[1]
			default:
				return nil, fmt.Errorf("ply: unknown format %q", fields[1])
			}
		case "comment", "obj_info":
		case "element":
			if len(fields) != 3 {
				return nil, fmt.Errorf("ply: malformed element line %q", strings.TrimSpace(line))
			}
			if !seenElement && fields[1] != "vertex" {
				return nil, fmt.Errorf("ply: first element is %q, expected vertex", fields[1])
			}
			seenElement = true
			element = fields[1]
			if element == "vertex" {
				n, err := strconv.Atoi(fields[2])
				if err != nil || n < 0 {
					return nil, fmt.Errorf("ply: bad vertex count %q", fields[2])
				}
				h.vertexCount = n
			}
		case "property":
			if element != "vertex" {
				continue
			}
			if len(fields) != 3 {
				return nil, fmt.Errorf("ply: unsupported vertex property %q", strings.TrimSpace(line))
			}
			if _, ok := scalarSizes[fields[1]]; !ok {
				return nil, fmt.Errorf("ply: unknown property type %q", fields[1])
			}
			h.props = append(h.props, property{name: fields[2], typ: fields[1]})
		case "end_header":
			if h.format == "" {
				return nil, fmt.Errorf("ply: missing format line")
			}
			return h, nil
		default:
			return nil, fmt.Errorf("ply: unexpected header line %q", strings.TrimSpace(line))
		}
	}
}

func readASCIIVertex(br *bufio.Reader, values []float64) error {
	for i := range values {
		var v float64
		if _, err := fmt.Fscan(br, &v); err != nil {
			return err
		}
		values[i] = v
	}
	return nil
}

func readBinaryVertex(br *bufio.Reader, h *header, values []float64) error {
	var order binary.ByteOrder = binary.LittleEndian
	if h.format == "binary_big_endian" {
		order = binary.BigEndian
	}
	var buf [8]byte
	for i, p := range h.props {
		size := scalarSizes[p.typ]
		if _, err := io.ReadFull(br, buf[:size]); err != nil {
			return err
		}
		values[i] = decodeScalar(p.typ, order, buf[:size])
	}
	return nil
}

func decodeScalar(typ string, order binary.ByteOrder, b []byte) float64 {
	switch typ {
	case "char", "int8":
		return float64(int8(b[0]))
	case "uchar", "uint8":
		return float64(b[0])
	case "short", "int16":
		return float64(int16(order.Uint16(b)))
	case "ushort", "uint16":
		return float64(order.Uint16(b))
	case "int", "int32":
		return float64(int32(order.Uint32(b)))
	case "uint", "uint32":
		return float64(order.Uint32(b))
	case "float", "float32":
		return float64(math.Float32frombits(order.Uint32(b)))
	default:
		return math.Float64frombits(order.Uint64(b))
	}
}
