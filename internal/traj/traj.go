package traj

import (
	"encoding/binary"
	"fmt"
	"math"
)

// #region kinds
// Kind distinguishes the two frame representations a simulator can produce.
type Kind string

const (
	// KindDiscrete marks trajectories whose frames are discrete-state indices.
	KindDiscrete Kind = "discrete"
	// KindVector marks trajectories whose frames are continuous feature vectors.
	KindVector Kind = "vector"
)

// #endregion kinds

// #region types
// Discrete is an ordered sequence of discrete-state indices.
// Trajectories are immutable once produced; consumers must not modify them.
type Discrete []int

// Vector is an ordered sequence of fixed-width feature vectors.
type Vector [][]float64

// Len returns the number of frames.
func (t Discrete) Len() int { return len(t) }

// Len returns the number of frames.
func (t Vector) Len() int { return len(t) }

// #endregion types

// #region discrete-encoding
// EncodeDiscrete serializes state indices as little-endian int64 frames.
func EncodeDiscrete(t Discrete) []byte {
	buf := make([]byte, len(t)*8)
	for i, s := range t {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(int64(s)))
	}
	return buf
}

// DecodeDiscrete is the inverse of EncodeDiscrete.
func DecodeDiscrete(b []byte) (Discrete, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("discrete blob length %d not a multiple of 8", len(b))
	}
	t := make(Discrete, len(b)/8)
	for i := range t {
		t[i] = int(int64(binary.LittleEndian.Uint64(b[i*8:])))
	}
	return t, nil
}

// #endregion discrete-encoding

// #region vector-encoding
// EncodeVector serializes a vector trajectory as a dim header followed by
// little-endian float64 values, frame by frame.
func EncodeVector(t Vector) []byte {
	dim := 0
	if len(t) > 0 {
		dim = len(t[0])
	}
	buf := make([]byte, 8+len(t)*dim*8)
	binary.LittleEndian.PutUint64(buf, uint64(dim))
	off := 8
	for _, frame := range t {
		for _, v := range frame {
			binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(v))
			off += 8
		}
	}
	return buf
}

// DecodeVector is the inverse of EncodeVector.
func DecodeVector(b []byte) (Vector, error) {
	if len(b) < 8 {
		return nil, fmt.Errorf("vector blob too short: %d bytes", len(b))
	}
	dim := int(binary.LittleEndian.Uint64(b))
	body := b[8:]
	if dim == 0 {
		if len(body) != 0 {
			return nil, fmt.Errorf("zero-dim vector blob with %d trailing bytes", len(body))
		}
		return Vector{}, nil
	}
	frameBytes := dim * 8
	if len(body)%frameBytes != 0 {
		return nil, fmt.Errorf("vector blob length %d not a multiple of frame size %d", len(body), frameBytes)
	}
	t := make(Vector, len(body)/frameBytes)
	for i := range t {
		frame := make([]float64, dim)
		for j := range frame {
			frame[j] = math.Float64frombits(binary.LittleEndian.Uint64(body[i*frameBytes+j*8:]))
		}
		t[i] = frame
	}
	return t, nil
}

// #endregion vector-encoding
