package link

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/itohio/gopedal/pkg/diag"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

const (
	// DefaultBaudRate is the baud rate of the firmware diagnostic stream.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the reports channel buffer.
	DefaultBufferSize = 100
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial reads the diagnostic stream of a pedal board over a serial port.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      io.ReadCloser
	reports   chan diag.Report
	done      chan struct{}
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	now       func() time.Time
}

// New creates a new Serial instance with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		reports:  make(chan diag.Report, bufSize),
		ctx:      ctx,
		cancel:   cancel,
		now:      time.Now,
	}
}

// Ports returns a list of available serial ports. USB ports are described by
// their product string when the platform exposes it.
func Ports() ([]Port, error) {
	detailed, err := enumerator.GetDetailedPortsList()
	if err == nil && len(detailed) > 0 {
		result := make([]Port, 0, len(detailed))
		for _, p := range detailed {
			desc := p.Name
			if p.IsUSB {
				desc = fmt.Sprintf("%s:%s %s", p.VID, p.PID, p.Product)
			}
			result = append(result, Port{Name: p.Name, Description: desc})
		}
		return result, nil
	}

	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// Connect opens the serial port and starts reading reports.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.start(port)
	return nil
}

// start must be called with mu held.
func (d *Serial) start(conn io.ReadCloser) {
	d.conn = conn
	d.connected = true
	d.done = make(chan struct{})

	go d.readReports()
}

// Close closes the connection and stops reading reports.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	// Cancel context to stop reading goroutine
	d.cancel()

	// Closing the port unblocks a pending read
	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}
	<-d.done

	d.connected = false
	close(d.reports)

	return nil
}

// Reports returns the channel for reading reports.
func (d *Serial) Reports() <-chan diag.Report {
	return d.reports
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readReports reads lines from the port and parses them into reports.
func (d *Serial) readReports() {
	defer close(d.done)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readReports: %v", r)
		}
	}()

	scanner := bufio.NewScanner(d.conn)
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
		}

		if !scanner.Scan() {
			// Scanner stopped (EOF or error)
			if err := scanner.Err(); err != nil && d.ctx.Err() == nil {
				log.Printf("Error reading from serial port: %v", err)
			}
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		report, err := diag.ParseLine(line)
		if err != nil {
			log.Printf("Failed to parse line '%s': %v", line, err)
			continue
		}
		report.Time = d.now()

		// Send report to channel (non-blocking)
		select {
		case d.reports <- report:
		case <-d.ctx.Done():
			return
		default:
			log.Printf("Reports channel full, dropping report")
		}
	}
}
