// Package trace records suspend cycles for offline inspection.
//
// A recording is a sequence of framed messages:
//
//	[4-byte big-endian type][8-byte big-endian payload length][payload bytes]
//
// starting with a gob-encoded Header, followed by one gob-encoded Cycle per
// suspend cycle and closed by an empty MsgEnd.
package trace

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/bobuhiro11/gorkpm/config"
	"github.com/bobuhiro11/gorkpm/pm"
)

// MsgType identifies a recording message.
type MsgType uint32

const (
	MsgHeader MsgType = 1 // gob-encoded Header
	MsgCycle  MsgType = 2 // gob-encoded Cycle
	MsgEnd    MsgType = 3 // end of recording
)

const headerSize = 12

var (
	ErrNoHeader          = errors.New("recording does not start with a header")
	ErrUnexpectedMessage = errors.New("unexpected message type")
)

// Header describes a recording.
type Header struct {
	Source string
	Runs   int
}

// Cycle is the outcome of one suspend cycle.
type Cycle struct {
	Run         int
	Seq         int
	Mode        config.Mode
	Wake        config.Wake
	Phases      []pm.Phase
	Checkpoints string
	WakeStatus  uint32
	GPIO0Status uint32
	Timeouts    []string
	Err         string
}

// FromContext captures the last cycle run on ctx. err is what Enter
// returned.
func FromContext(run, seq int, ctx *pm.Context, err error) *Cycle {
	cfg := ctx.Config()

	c := &Cycle{
		Run:         run,
		Seq:         seq,
		Mode:        cfg.Mode,
		Wake:        cfg.Wake,
		Phases:      append([]pm.Phase(nil), ctx.Phases...),
		Checkpoints: string(ctx.Checkpoints),
		WakeStatus:  ctx.PMU.WakeStatus,
		GPIO0Status: ctx.PMU.GPIO0Status,
	}

	for _, t := range ctx.Timeouts {
		c.Timeouts = append(c.Timeouts, t.Error())
	}

	if err != nil {
		c.Err = err.Error()
	}

	return c
}

// Recorder writes framed messages. It is safe for concurrent use; every
// message is written whole.
type Recorder struct {
	mu sync.Mutex
	w  io.Writer
}

// NewRecorder wraps w.
func NewRecorder(w io.Writer) *Recorder { return &Recorder{w: w} }

func (r *Recorder) send(t MsgType, payload []byte) error {
	hdr := make([]byte, headerSize)
	binary.BigEndian.PutUint32(hdr[0:4], uint32(t))
	binary.BigEndian.PutUint64(hdr[4:12], uint64(len(payload)))

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.w.Write(hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if len(payload) > 0 {
		if _, err := r.w.Write(payload); err != nil {
			return fmt.Errorf("write payload: %w", err)
		}
	}

	return nil
}

func (r *Recorder) sendGob(t MsgType, v any) error {
	var buf bytes.Buffer

	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("encode message %d: %w", t, err)
	}

	return r.send(t, buf.Bytes())
}

// Begin writes the recording header.
func (r *Recorder) Begin(h *Header) error {
	return r.sendGob(MsgHeader, h)
}

// Record appends one cycle.
func (r *Recorder) Record(c *Cycle) error {
	return r.sendGob(MsgCycle, c)
}

// End closes the recording.
func (r *Recorder) End() error {
	return r.send(MsgEnd, nil)
}

// Reader reads framed messages.
type Reader struct {
	r io.Reader
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader { return &Reader{r: r} }

// Next reads the next message and its full payload.
func (r *Reader) Next() (MsgType, []byte, error) {
	hdr := make([]byte, headerSize)
	if _, err := io.ReadFull(r.r, hdr); err != nil {
		return 0, nil, fmt.Errorf("read header: %w", err)
	}

	t := MsgType(binary.BigEndian.Uint32(hdr[0:4]))
	length := binary.BigEndian.Uint64(hdr[4:12])

	if length == 0 {
		return t, nil, nil
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		return 0, nil, fmt.Errorf("read payload (type=%d len=%d): %w", t, length, err)
	}

	return t, payload, nil
}

func decode(payload []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	return nil
}

// ReadAll reads a whole recording. A recording cut short before MsgEnd
// returns the cycles read so far along with io.ErrUnexpectedEOF.
func ReadAll(r io.Reader) (*Header, []*Cycle, error) {
	rd := NewReader(r)

	t, payload, err := rd.Next()
	if err != nil {
		return nil, nil, err
	}

	if t != MsgHeader {
		return nil, nil, fmt.Errorf("type %d: %w", t, ErrNoHeader)
	}

	h := &Header{}
	if err := decode(payload, h); err != nil {
		return nil, nil, fmt.Errorf("header: %w", err)
	}

	var cycles []*Cycle

	for {
		t, payload, err := rd.Next()

		switch {
		case errors.Is(err, io.EOF):
			return h, cycles, io.ErrUnexpectedEOF
		case err != nil:
			return h, cycles, err
		}

		switch t {
		case MsgEnd:
			return h, cycles, nil
		case MsgCycle:
			c := &Cycle{}
			if err := decode(payload, c); err != nil {
				return h, cycles, fmt.Errorf("cycle %d: %w", len(cycles), err)
			}

			cycles = append(cycles, c)
		default:
			return h, cycles, fmt.Errorf("type %d: %w", t, ErrUnexpectedMessage)
		}
	}
}
