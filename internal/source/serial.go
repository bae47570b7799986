package source

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// PortInfo describes an enumerable serial port.
type PortInfo struct {
	Name         string // device path, e.g. /dev/ttyUSB0 or COM11
	Product      string
	SerialNumber string
	USB          bool
	VID, PID     string
}

// Description is the human-readable text matched against a filter.
func (p PortInfo) Description() string {
	if p.Product == "" {
		return p.Name
	}
	return fmt.Sprintf("%s (%s)", p.Name, p.Product)
}

func (p PortInfo) matches(filter string) bool {
	return strings.Contains(p.Name, filter) ||
		strings.Contains(p.Product, filter) ||
		(p.SerialNumber != "" && strings.Contains(p.SerialNumber, filter))
}

// Enumerator lists the ports present on the machine.
type Enumerator func() ([]PortInfo, error)

// SerialPorts enumerates ports through the operating system.
func SerialPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerate serial ports: %w", err)
	}
	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		ports = append(ports, PortInfo{
			Name:         d.Name,
			Product:      d.Product,
			SerialNumber: d.SerialNumber,
			USB:          d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
		})
	}
	return ports, nil
}

// Discover returns the first port whose description contains filter.
func Discover(filter string, enumerate Enumerator) (PortInfo, error) {
	ports, err := enumerate()
	if err != nil {
		return PortInfo{}, err
	}
	if len(ports) == 0 {
		return PortInfo{}, ErrNoDeviceFound
	}
	for _, p := range ports {
		if p.matches(filter) {
			return p, nil
		}
	}
	available := make([]string, 0, len(ports))
	for _, p := range ports {
		available = append(available, p.Description())
	}
	return PortInfo{}, &NoMatchError{Filter: filter, Available: available}
}

// SerialOptions configure an opened port.
type SerialOptions struct {
	Baud        int
	ReadTimeout time.Duration
}

// port is the subset of serial.Port the line reader needs.
type port interface {
	io.ReadCloser
	SetReadTimeout(time.Duration) error
}

var openPort = func(name string, baud int) (port, error) {
	return serial.Open(name, &serial.Mode{BaudRate: baud})
}

// Serial reads lines from a serial port.
type Serial struct {
	info  PortInfo
	port  port
	chunk []byte
	lines lineSplitter

	open      atomic.Bool
	closeOnce sync.Once
}

// OpenSerial opens the port described by info.
func OpenSerial(info PortInfo, opts SerialOptions) (*Serial, error) {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 100 * time.Millisecond
	}
	p, err := openPort(info.Name, opts.Baud)
	if err != nil {
		return nil, &DeviceError{Port: info.Name, Op: "open", Err: err}
	}
	if err := p.SetReadTimeout(opts.ReadTimeout); err != nil {
		_ = p.Close()
		return nil, &DeviceError{Port: info.Name, Op: "configure", Err: err}
	}
	s := &Serial{info: info, port: p, chunk: make([]byte, 4096)}
	s.open.Store(true)
	return s, nil
}

// Connect discovers a port matching filter and opens it.
func Connect(filter string, opts SerialOptions, enumerate Enumerator) (*Serial, error) {
	info, err := Discover(filter, enumerate)
	if err != nil {
		return nil, err
	}
	return OpenSerial(info, opts)
}

// ReadLine returns the next complete line. When the read timeout expires
// before a newline arrives it returns an empty line and a nil error.
func (s *Serial) ReadLine(ctx context.Context) (string, error) {
	for {
		if line, ok := s.lines.next(); ok {
			return line, nil
		}
		if !s.IsOpen() {
			return "", ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, err := s.port.Read(s.chunk)
		if n > 0 {
			s.lines.feed(s.chunk[:n])
		}
		if err != nil {
			_ = s.Close()
			if rest := s.lines.rest(); rest != "" {
				return rest, nil
			}
			return "", &DeviceError{Port: s.info.Name, Op: "read", Err: err}
		}
		if n == 0 {
			return "", nil
		}
	}
}

// IsOpen reports whether the port is still usable.
func (s *Serial) IsOpen() bool {
	return s.open.Load()
}

// Close releases the port. Safe to call more than once.
func (s *Serial) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.open.Store(false)
		err = s.port.Close()
	})
	return err
}

// Name returns the port description.
func (s *Serial) Name() string {
	return s.info.Description()
}
