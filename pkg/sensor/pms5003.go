package sensor

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/itohio/goaq/pkg/reading"
)

const (
	pmsFrameLen = 32
	pmsStart1   = 0x42
	pmsStart2   = 0x4d
)

// ParsePMS5003 decodes one 32-byte PMS5003 frame.
// Concentrations are the standard-particle (CF=1) values.
func ParsePMS5003(frame []byte) (reading.Particulate, error) {
	if len(frame) != pmsFrameLen || frame[0] != pmsStart1 || frame[1] != pmsStart2 {
		return reading.Particulate{}, fmt.Errorf("pms5003: malformed frame")
	}
	if n := binary.BigEndian.Uint16(frame[2:4]); n != pmsFrameLen-4 {
		return reading.Particulate{}, fmt.Errorf("pms5003: unexpected frame length %d", n)
	}

	var sum uint16
	for _, b := range frame[:pmsFrameLen-2] {
		sum += uint16(b)
	}
	if sum != binary.BigEndian.Uint16(frame[pmsFrameLen-2:]) {
		return reading.Particulate{}, ErrChecksum
	}

	w := func(i int) uint16 { return binary.BigEndian.Uint16(frame[4+2*i:]) }
	return reading.Particulate{
		PM1_0: w(0),
		PM2_5: w(1),
		PM10:  w(2),
		Counts: reading.Counts{
			Over0_3: w(6),
			Over0_5: w(7),
			Over1_0: w(8),
			Over2_5: w(9),
			Over5_0: w(10),
			Over10:  w(11),
		},
	}, nil
}

// scanPMS5003 is a bufio.SplitFunc that yields 32-byte frames, resynchronising on the start bytes.
func scanPMS5003(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for i := 0; i+1 < len(data); i++ {
		if data[i] != pmsStart1 || data[i+1] != pmsStart2 {
			continue
		}
		if len(data)-i < pmsFrameLen {
			if atEOF {
				return len(data), nil, nil
			}
			return i, nil, nil
		}
		return i + pmsFrameLen, data[i : i+pmsFrameLen], nil
	}
	if atEOF {
		return len(data), nil, nil
	}
	// Keep a possible first start byte at the end
	if n := len(data); n > 0 && data[n-1] == pmsStart1 {
		return n - 1, nil, nil
	}
	return len(data), nil, nil
}

// PMS5003 reads frames streamed by a Plantower PMS5003 in active mode.
// A goroutine parses the stream; Read returns the newest frame not yet returned.
type PMS5003 struct {
	port   io.ReadCloser
	log    *slog.Logger
	latest *mailbox[reading.Particulate]

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPMS5003 starts reading frames from port. The driver owns port and closes it on Close.
func NewPMS5003(port io.ReadCloser, log *slog.Logger) *PMS5003 {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &PMS5003{
		port:   port,
		log:    log.With("sensor", "pms5003"),
		latest: newMailbox[reading.Particulate](),
		cancel: cancel,
	}
	p.wg.Add(1)
	go p.readFrames(ctx)
	return p
}

// OpenPMS5003 opens the serial port and starts the driver.
func OpenPMS5003(name string, baud int, log *slog.Logger) (*PMS5003, error) {
	port, err := openPort(name, baud)
	if err != nil {
		return nil, &InitError{Sensor: "pms5003", Err: err}
	}
	return NewPMS5003(port, log), nil
}

func (p *PMS5003) String() string {
	return "pms5003"
}

// Read returns the newest unread sample or ErrNoData.
func (p *PMS5003) Read() (reading.Particulate, error) {
	return p.latest.Take()
}

// Close stops the reader and closes the port.
func (p *PMS5003) Close() error {
	p.cancel()
	err := p.port.Close()
	p.wg.Wait()
	return err
}

func (p *PMS5003) readFrames(ctx context.Context) {
	defer p.wg.Done()

	scanner := bufio.NewScanner(p.port)
	scanner.Split(scanPMS5003)
	for scanner.Scan() {
		sample, err := ParsePMS5003(scanner.Bytes())
		if err != nil {
			p.log.Debug("dropping frame", "error", err)
			continue
		}
		p.latest.Put(sample)
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil && !errors.Is(err, io.ErrClosedPipe) {
		p.log.Error("serial read failed", "error", err)
	}
}
