// Package replay encodes processed trajectory states as FlightGear
// multiplayer position messages and streams them over UDP, so a flight
// can be watched back in the simulator.
package replay

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
)

// Wire constants for the FlightGear multiplayer protocol. All values
// are big-endian; the payload is XDR encoded.
const (
	magic           = "FGFS"
	protocolVersion = 0x00010001
	positionMsgID   = 7

	headerLen   = 32
	callsignLen = 8
	modelLen    = 96
)

// DefaultModel is the aircraft model used when none is configured.
const DefaultModel = "Aircraft/DG-101G/Models/DG-101G.xml"

// DefaultPort is FlightGear's default multiplayer port.
const DefaultPort = 5124

// Message is one multiplayer position report. Position is ECEF metres,
// Orientation the axis-angle rotation vector, velocities in m/s.
type Message struct {
	Callsign string
	Model    string

	Time float64 // UTC seconds of day
	Lag  float64

	Position     [3]float64
	Orientation  [3]float32
	Velocity     [3]float32
	AngularVel   [3]float32
	LinearAccel  [3]float32
	AngularAccel [3]float32
}

// Encode serialises the message into the multiplayer wire format.
func (m *Message) Encode() ([]byte, error) {
	if len(m.Callsign) > callsignLen {
		return nil, fmt.Errorf("callsign %q longer than %d bytes", m.Callsign, callsignLen)
	}
	model := m.Model
	if model == "" {
		model = DefaultModel
	}
	if len(model) > modelLen {
		return nil, fmt.Errorf("model path %q longer than %d bytes", model, modelLen)
	}

	var data bytes.Buffer
	data.WriteString(model)
	data.Write(make([]byte, modelLen-len(model)))

	for _, v := range []float64{m.Time, m.Lag, m.Position[0], m.Position[1], m.Position[2]} {
		if err := binary.Write(&data, binary.BigEndian, v); err != nil {
			return nil, err
		}
	}
	for _, triplet := range [][3]float32{m.Orientation, m.Velocity, m.AngularVel, m.LinearAccel, m.AngularAccel} {
		if err := binary.Write(&data, binary.BigEndian, triplet); err != nil {
			return nil, err
		}
	}
	// Trailing pad word
	data.Write(make([]byte, 4))

	var msg bytes.Buffer
	msg.WriteString(magic)
	binary.Write(&msg, binary.BigEndian, uint32(protocolVersion))
	binary.Write(&msg, binary.BigEndian, uint32(positionMsgID))
	binary.Write(&msg, binary.BigEndian, uint32(data.Len()+headerLen))
	msg.Write(make([]byte, 8)) // range and reply-port fields, unused
	msg.WriteString(m.Callsign)
	msg.Write(make([]byte, callsignLen-len(m.Callsign)))
	msg.Write(data.Bytes())

	return msg.Bytes(), nil
}

// Sender streams messages to a FlightGear instance.
type Sender struct {
	conn *net.UDPConn
}

// NewSender connects to the given UDP address, e.g. "127.0.0.1:5124".
func NewSender(addr string) (*Sender, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Sender{conn: conn}, nil
}

// Send encodes and transmits one message.
func (s *Sender) Send(m *Message) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	_, err = s.conn.Write(data)
	return err
}

// Close releases the connection.
func (s *Sender) Close() error {
	return s.conn.Close()
}
