package sensor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

const (
	mhzFrameLen      = 9
	mhzStart         = 0xff
	mhzCmdRead       = 0x86
	mhzCmdAutoCalib  = 0x79
	mhzDefaultPeriod = 5 * time.Second
)

// mhzChecksum is the two's complement of the sum of bytes 1..7.
func mhzChecksum(frame []byte) byte {
	var sum byte
	for _, b := range frame[1 : mhzFrameLen-1] {
		sum += b
	}
	return ^sum + 1
}

// mhzCommand builds a 9-byte command frame.
func mhzCommand(cmd byte, arg byte) []byte {
	f := []byte{mhzStart, 0x01, cmd, arg, 0, 0, 0, 0, 0}
	f[mhzFrameLen-1] = mhzChecksum(f)
	return f
}

// ParseMHZ19 decodes the response to a gas concentration read.
func ParseMHZ19(frame []byte) (uint16, error) {
	if len(frame) != mhzFrameLen || frame[0] != mhzStart || frame[1] != mhzCmdRead {
		return 0, fmt.Errorf("mhz19: malformed response")
	}
	if mhzChecksum(frame) != frame[mhzFrameLen-1] {
		return 0, ErrChecksum
	}
	return uint16(frame[2])<<8 | uint16(frame[3]), nil
}

// MHZ19 is a Winsen MH-Z19 NDIR CO2 sensor on a UART.
// A goroutine polls the sensor; Read returns the newest concentration not yet returned.
type MHZ19 struct {
	port   io.ReadWriteCloser
	log    *slog.Logger
	period time.Duration
	latest *mailbox[uint16]

	mu     sync.Mutex // Serialises writes to port
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMHZ19 starts polling the sensor on port every period (5s when zero).
// The port should have a read timeout so a silent sensor does not stall the poller.
func NewMHZ19(port io.ReadWriteCloser, period time.Duration, log *slog.Logger) *MHZ19 {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if period <= 0 {
		period = mhzDefaultPeriod
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &MHZ19{
		port:   port,
		log:    log.With("sensor", "mhz19"),
		period: period,
		latest: newMailbox[uint16](),
		cancel: cancel,
	}
	m.wg.Add(1)
	go m.poll(ctx)
	return m
}

// OpenMHZ19 opens the serial port and starts the driver.
func OpenMHZ19(name string, baud int, log *slog.Logger) (*MHZ19, error) {
	port, err := openPort(name, baud)
	if err != nil {
		return nil, &InitError{Sensor: "mhz19", Err: err}
	}
	if err := port.SetReadTimeout(time.Second); err != nil {
		port.Close()
		return nil, &InitError{Sensor: "mhz19", Err: err}
	}
	return NewMHZ19(port, 0, log), nil
}

func (m *MHZ19) String() string {
	return "mhz19"
}

// Read returns the newest unread CO2 concentration (ppm) or ErrNoData.
func (m *MHZ19) Read() (uint16, error) {
	return m.latest.Take()
}

// SetAutoCalibration turns the automatic baseline correction on or off.
func (m *MHZ19) SetAutoCalibration(on bool) error {
	arg := byte(0x00)
	if on {
		arg = 0xa0
	}
	if err := m.write(mhzCommand(mhzCmdAutoCalib, arg)); err != nil {
		return readErr("mhz19", fmt.Errorf("%w: %w", ErrCalibration, err))
	}
	return nil
}

// Close stops polling and closes the port.
func (m *MHZ19) Close() error {
	m.cancel()
	err := m.port.Close()
	m.wg.Wait()
	return err
}

func (m *MHZ19) write(frame []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.port.Write(frame)
	return err
}

func (m *MHZ19) poll(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.period)
	defer ticker.Stop()

	for {
		co2, err := m.request()
		switch {
		case err == nil:
			m.latest.Put(co2)
		case ctx.Err() != nil:
			return
		case errors.Is(err, ErrNoData):
			m.log.Debug("no response")
		default:
			m.log.Warn("read failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// request sends a read command and waits for the 9-byte response.
func (m *MHZ19) request() (uint16, error) {
	if err := m.write(mhzCommand(mhzCmdRead, 0)); err != nil {
		return 0, err
	}

	frame := make([]byte, 0, mhzFrameLen)
	buf := make([]byte, mhzFrameLen)
	for len(frame) < mhzFrameLen {
		n, err := m.port.Read(buf[:mhzFrameLen-len(frame)])
		if err != nil {
			return 0, err
		}
		if n == 0 {
			// Read timeout
			return 0, ErrNoData
		}
		frame = append(frame, buf[:n]...)
		// Drop leading garbage until a start byte
		for len(frame) > 0 && frame[0] != mhzStart {
			frame = frame[1:]
		}
	}
	return ParseMHZ19(frame)
}
