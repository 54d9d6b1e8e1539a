package calls

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

// Parcel is a linear stream of typed fields.
//
// Layout matches the platform parcel so records can cross process boundaries:
// int32 values are little-endian; a string is an int32 count of UTF-16 code
// units (-1 for null), the code units, a NUL code unit, then zero padding to a
// 4-byte boundary.
type Parcel struct {
	buf []byte
	pos int
}

// NewParcel returns a parcel positioned at the start of b.
func NewParcel(b []byte) *Parcel { return &Parcel{buf: b} }

// Bytes returns everything written so far.
func (p *Parcel) Bytes() []byte { return p.buf }

// Remaining is the number of unread bytes.
func (p *Parcel) Remaining() int { return len(p.buf) - p.pos }

func (p *Parcel) WriteInt32(v int32) {
	p.buf = binary.LittleEndian.AppendUint32(p.buf, uint32(v))
}

func (p *Parcel) WriteString(s string) {
	units := utf16.Encode([]rune(s))
	p.WriteInt32(int32(len(units)))
	for _, u := range units {
		p.buf = binary.LittleEndian.AppendUint16(p.buf, u)
	}
	p.buf = binary.LittleEndian.AppendUint16(p.buf, 0)
	p.pad()
}

// WriteNullString writes the null marker.
func (p *Parcel) WriteNullString() { p.WriteInt32(-1) }

func (p *Parcel) pad() {
	for len(p.buf)%4 != 0 {
		p.buf = append(p.buf, 0)
	}
}

func (p *Parcel) ReadInt32() (int32, error) {
	if p.Remaining() < 4 {
		return 0, fmt.Errorf("%w: need 4 bytes at offset %d, have %d", ErrShortParcel, p.pos, p.Remaining())
	}
	v := int32(binary.LittleEndian.Uint32(p.buf[p.pos:]))
	p.pos += 4
	return v, nil
}

// ReadString reads a string field. ok is false when the null marker was read.
func (p *Parcel) ReadString() (s string, ok bool, err error) {
	n, err := p.ReadInt32()
	if err != nil {
		return "", false, err
	}
	if n < 0 {
		return "", false, nil
	}
	size := (int(n) + 1) * 2
	if p.Remaining() < size {
		return "", false, fmt.Errorf("%w: string of %d units at offset %d", ErrShortParcel, n, p.pos)
	}
	units := make([]uint16, n)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(p.buf[p.pos+i*2:])
	}
	p.pos += size
	if rem := p.pos % 4; rem != 0 {
		p.pos += 4 - rem
		if p.pos > len(p.buf) {
			p.pos = len(p.buf)
		}
	}
	return string(utf16.Decode(units)), true, nil
}

// WriteTo appends r to p in wire order. The projected disconnect cause is written.
func (r *Record) WriteTo(p *Parcel) {
	p.WriteInt32(int32(r.callID))
	p.WriteString(r.number)
	p.WriteInt32(int32(r.state))
	p.WriteInt32(int32(r.numberPresentation))
	p.WriteInt32(int32(r.cnapNamePresentation))
	p.WriteString(r.cnapName)
	p.WriteString(r.DisconnectCause().String())
}

// ReadRecord reads one record from p in wire order.
func ReadRecord(p *Parcel) (*Record, error) {
	id, err := p.ReadInt32()
	if err != nil {
		return nil, err
	}
	r := NewRecord(int(id))

	if r.number, _, err = p.ReadString(); err != nil {
		return nil, err
	}

	n, err := p.ReadInt32()
	if err != nil {
		return nil, err
	}
	if r.state, err = StateFromInt(n); err != nil {
		return nil, err
	}

	if n, err = p.ReadInt32(); err != nil {
		return nil, err
	}
	if r.numberPresentation, err = PresentationFromInt(n); err != nil {
		return nil, err
	}
	if n, err = p.ReadInt32(); err != nil {
		return nil, err
	}
	if r.cnapNamePresentation, err = PresentationFromInt(n); err != nil {
		return nil, err
	}

	if r.cnapName, _, err = p.ReadString(); err != nil {
		return nil, err
	}

	name, ok, err := p.ReadString()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: null", ErrUnknownDisconnectCause)
	}
	if r.disconnectCause, err = ParseDisconnectCause(name); err != nil {
		return nil, err
	}
	return r, nil
}

// Marshal encodes r as a standalone parcel.
func Marshal(r *Record) []byte {
	p := &Parcel{}
	r.WriteTo(p)
	return p.Bytes()
}

// Unmarshal decodes a parcel produced by Marshal. Trailing bytes are ignored.
func Unmarshal(b []byte) (*Record, error) {
	return ReadRecord(NewParcel(b))
}
