package ops

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"evolog/internal/plane"
)

// Record format, shared by hashing and the binary log:
//
//	[1 byte kind]
//	then each field in declaration order:
//	  string => [4 bytes big-endian length][utf-8 bytes]
//	  float  => [8 bytes big-endian IEEE-754 bits]
//	  plane  => 12 floats (origin, primary, secondary, tertiary)
//
// Changing any of this changes every fingerprint.

// canonicalNaN is the quiet NaN every NaN is folded to before encoding
const canonicalNaN uint64 = 0x7ff8000000000000

// maxStringLen bounds a single string field read from a record
const maxStringLen = 64 << 20

// ErrUnknownKind is returned when a record carries a tag no variant owns
var ErrUnknownKind = errors.New("unknown operation kind")

type recordWriter struct {
	w   io.Writer
	buf [8]byte
	err error
}

func (rw *recordWriter) write(b []byte) {
	if rw.err != nil {
		return
	}
	_, rw.err = rw.w.Write(b)
}

func (rw *recordWriter) kind(k Kind) {
	rw.buf[0] = byte(k)
	rw.write(rw.buf[:1])
}

func (rw *recordWriter) str(s string) {
	binary.BigEndian.PutUint32(rw.buf[:4], uint32(len(s)))
	rw.write(rw.buf[:4])
	rw.write([]byte(s))
}

func (rw *recordWriter) float(f float64) {
	binary.BigEndian.PutUint64(rw.buf[:8], floatBits(f))
	rw.write(rw.buf[:8])
}

func (rw *recordWriter) plane(p plane.Plane) {
	for _, f := range p.Floats() {
		rw.float(f)
	}
}

// floatBits folds -0 into +0 and all NaNs into one so numerically equal
// values share an encoding
func floatBits(f float64) uint64 {
	switch {
	case f == 0:
		return 0
	case math.IsNaN(f):
		return canonicalNaN
	}
	return math.Float64bits(f)
}

// WriteOp writes a single operation record
func WriteOp(w io.Writer, op Operation) error {
	op = Value(op)
	rw := &recordWriter{w: w}
	rw.kind(op.Kind())
	switch o := op.(type) {
	case Create:
		rw.str(o.Nonce)
	case Describe:
		rw.str(o.Description)
		rw.str(o.Commit)
	case NewPlane:
		rw.str(o.Name)
		rw.plane(o.Plane)
	case NewSketch:
		rw.str(o.Name)
		rw.str(o.PlaneName)
		rw.str(o.UniqueID)
	case NewRectangle:
		rw.str(o.SketchID)
		rw.float(o.X)
		rw.float(o.Y)
		rw.float(o.Width)
		rw.float(o.Height)
	case NewCircle:
		rw.str(o.SketchID)
		rw.float(o.X)
		rw.float(o.Y)
		rw.float(o.Radius)
	case NewExtrusion:
		rw.str(o.Name)
		rw.str(o.UniqueID)
		rw.str(o.SketchID)
		rw.float(o.ClickX)
		rw.float(o.ClickY)
		rw.float(o.Depth)
	case ModifyExtrusionDepth:
		rw.str(o.UniqueID)
		rw.float(o.Depth)
	default:
		panic(fmt.Sprintf("ops: unhandled operation %T", op))
	}
	return rw.err
}

// Encode returns the record bytes of op
func Encode(op Operation) []byte {
	var buf bytes.Buffer
	// writes to a bytes.Buffer cannot fail
	_ = WriteOp(&buf, op)
	return buf.Bytes()
}

type recordReader struct {
	r   io.Reader
	buf [8]byte
	err error
}

func (rr *recordReader) read(n int) []byte {
	if rr.err != nil {
		return rr.buf[:n]
	}
	if _, err := io.ReadFull(rr.r, rr.buf[:n]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		rr.err = err
	}
	return rr.buf[:n]
}

func (rr *recordReader) str() string {
	n := binary.BigEndian.Uint32(rr.read(4))
	if rr.err != nil {
		return ""
	}
	if n > maxStringLen {
		rr.err = fmt.Errorf("string field of %d bytes exceeds limit", n)
		return ""
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(rr.r, b); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		rr.err = err
		return ""
	}
	return string(b)
}

func (rr *recordReader) float() float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(rr.read(8)))
}

func (rr *recordReader) plane() plane.Plane {
	var f [12]float64
	for i := range f {
		f[i] = rr.float()
	}
	return plane.FromFloats(f)
}

// ReadOp reads one record. A clean end of stream before the kind byte
// returns io.EOF; a record cut short returns io.ErrUnexpectedEOF.
func ReadOp(r io.Reader) (Operation, error) {
	var tag [1]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return nil, err
	}
	rr := &recordReader{r: r}
	var op Operation
	switch Kind(tag[0]) {
	case KindCreate:
		op = Create{Nonce: rr.str()}
	case KindDescribe:
		op = Describe{Description: rr.str(), Commit: rr.str()}
	case KindNewPlane:
		op = NewPlane{Name: rr.str(), Plane: rr.plane()}
	case KindNewSketch:
		op = NewSketch{Name: rr.str(), PlaneName: rr.str(), UniqueID: rr.str()}
	case KindNewRectangle:
		op = NewRectangle{SketchID: rr.str(), X: rr.float(), Y: rr.float(), Width: rr.float(), Height: rr.float()}
	case KindNewCircle:
		op = NewCircle{SketchID: rr.str(), X: rr.float(), Y: rr.float(), Radius: rr.float()}
	case KindNewExtrusion:
		op = NewExtrusion{
			Name:     rr.str(),
			UniqueID: rr.str(),
			SketchID: rr.str(),
			ClickX:   rr.float(),
			ClickY:   rr.float(),
			Depth:    rr.float(),
		}
	case KindModifyExtrusionDepth:
		op = ModifyExtrusionDepth{UniqueID: rr.str(), Depth: rr.float()}
	default:
		return nil, fmt.Errorf("%w: tag %d", ErrUnknownKind, tag[0])
	}
	if rr.err != nil {
		return nil, fmt.Errorf("failed to read %s record: %w", Kind(tag[0]), rr.err)
	}
	return op, nil
}

// LoadAllOps reads every record in filename. A missing file is an empty list.
func LoadAllOps(filename string) ([]Operation, error) {
	var out []Operation
	f, err := os.Open(filename)
	if os.IsNotExist(err) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for {
		op, e := ReadOp(f)
		if e == io.EOF {
			break
		}
		if e != nil {
			return out, e
		}
		out = append(out, op)
	}
	return out, nil
}

// AppendOp appends one record to filename, creating it if needed
func AppendOp(filename string, op Operation) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteOp(f, op)
}
