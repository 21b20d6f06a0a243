package replay

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLayout(t *testing.T) {
	m := &Message{
		Callsign: "G-CHOY",
		Time:     36000.5,
		Position: [3]float64{3980000, -100000, 4970000},
		Orientation: [3]float32{0.1, 0.2, 0.3},
	}

	data, err := m.Encode()
	require.NoError(t, err)

	// Header: magic, version, message id, total length, 8 reserved
	// bytes, 8-byte callsign.
	assert.Equal(t, "FGFS", string(data[:4]))
	assert.Equal(t, uint32(0x00010001), binary.BigEndian.Uint32(data[4:8]))
	assert.Equal(t, uint32(7), binary.BigEndian.Uint32(data[8:12]))
	assert.Equal(t, uint32(len(data)), binary.BigEndian.Uint32(data[12:16]))
	assert.Equal(t, "G-CHOY\x00\x00", string(data[24:32]))

	// Payload: 96-byte model path, then XDR doubles.
	model := data[32 : 32+96]
	assert.Equal(t, DefaultModel, string(model[:len(DefaultModel)]))
	for _, b := range model[len(DefaultModel):] {
		assert.Zero(t, b)
	}

	off := 32 + 96
	assert.Equal(t, 36000.5, math.Float64frombits(binary.BigEndian.Uint64(data[off:off+8])))
	off += 8 // lag
	assert.Equal(t, 0.0, math.Float64frombits(binary.BigEndian.Uint64(data[off:off+8])))
	off += 8
	assert.Equal(t, 3980000.0, math.Float64frombits(binary.BigEndian.Uint64(data[off:off+8])))
}

func TestEncodeTotalLength(t *testing.T) {
	m := &Message{Callsign: "AB"}
	data, err := m.Encode()
	require.NoError(t, err)

	// 32 header + 96 model + 5 doubles + 15 floats + 4 pad
	assert.Len(t, data, 32+96+40+60+4)
}

func TestEncodeRejectsLongCallsign(t *testing.T) {
	m := &Message{Callsign: "TOO-LONG-CALLSIGN"}
	_, err := m.Encode()
	assert.Error(t, err)
}

func TestEncodeOrientationFloats(t *testing.T) {
	m := &Message{Callsign: "X", Orientation: [3]float32{1.5, -2.5, 0.25}}
	data, err := m.Encode()
	require.NoError(t, err)

	off := 32 + 96 + 40
	assert.Equal(t, float32(1.5), math.Float32frombits(binary.BigEndian.Uint32(data[off:off+4])))
	assert.Equal(t, float32(-2.5), math.Float32frombits(binary.BigEndian.Uint32(data[off+4:off+8])))
	assert.Equal(t, float32(0.25), math.Float32frombits(binary.BigEndian.Uint32(data[off+8:off+12])))
}
