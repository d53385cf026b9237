package logship

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ramisettybhargavi/devsecops-backend/pkg/circuitbreaker"
)

const (
	defaultDialTimeout  = 5 * time.Second
	defaultWriteTimeout = 5 * time.Second
	defaultQueueSize    = 1024
)

type (
	// Config describes the Logstash TCP input to ship log lines to.
	Config struct {
		Host         string
		Port         string
		DialTimeout  time.Duration
		WriteTimeout time.Duration

		// QueueSize bounds the number of lines waiting to be shipped.
		// Lines beyond it are dropped.
		QueueSize int

		Breaker circuitbreaker.Config
	}

	// Writer is an io.Writer that forwards newline delimited log lines to a
	// Logstash TCP input. Shipping is asynchronous and best effort: Write
	// never blocks on the network and never returns an error, so a dead log
	// pipeline cannot take the service down with it.
	Writer struct {
		address      string
		dialTimeout  time.Duration
		writeTimeout time.Duration
		breaker      *circuitbreaker.CircuitBreaker[int]

		queue    chan []byte
		shutdown chan struct{}
		done     chan struct{}

		closeOnce sync.Once
		dropped   atomic.Uint64

		// conn is owned by the run goroutine.
		conn net.Conn
	}
)

func NewWriter(cfg Config) *Writer {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}

	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}

	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}

	w := &Writer{
		address:      net.JoinHostPort(cfg.Host, cfg.Port),
		dialTimeout:  cfg.DialTimeout,
		writeTimeout: cfg.WriteTimeout,
		breaker:      circuitbreaker.New[int](cfg.Breaker),
		queue:        make(chan []byte, cfg.QueueSize),
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
	}

	go w.run()

	return w
}

// Write queues p for shipping and reports success regardless of the pipeline
// state. p is copied before Write returns, as io.Writer requires.
func (w *Writer) Write(p []byte) (int, error) {
	select {
	case <-w.shutdown:
		return len(p), nil
	default:
	}

	line := make([]byte, len(p))
	copy(line, p)

	select {
	case w.queue <- line:
	default:
		// Queue full, drop rather than block the caller.
		w.dropped.Add(1)
	}

	return len(p), nil
}

// Dropped returns the number of lines lost to a full queue or a failed ship
// attempt since the writer was created.
func (w *Writer) Dropped() uint64 {
	return w.dropped.Load()
}

// Close drains lines already queued, closes the connection and waits for the
// shipping goroutine to stop.
func (w *Writer) Close() error {
	w.closeOnce.Do(func() {
		close(w.shutdown)
	})

	<-w.done

	return nil
}

func (w *Writer) run() {
	defer close(w.done)
	defer w.closeConn()

	for {
		select {
		case <-w.shutdown:
			for {
				select {
				case line := <-w.queue:
					w.shipThroughBreaker(line)
				default:
					return
				}
			}
		case line := <-w.queue:
			w.shipThroughBreaker(line)
		}
	}
}

func (w *Writer) shipThroughBreaker(line []byte) {
	_, err := circuitbreaker.Execute(w.breaker, func() (int, error) {
		return w.ship(line)
	})
	if err != nil {
		w.dropped.Add(1)
	}
}

func (w *Writer) ship(line []byte) (int, error) {
	if w.conn == nil {
		conn, err := net.DialTimeout("tcp", w.address, w.dialTimeout)
		if err != nil {
			return 0, err
		}

		w.conn = conn
	}

	if err := w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout)); err != nil {
		w.closeConn()

		return 0, err
	}

	n, err := w.conn.Write(line)
	if err != nil {
		w.closeConn()

		return n, err
	}

	return n, nil
}

func (w *Writer) closeConn() {
	if w.conn == nil {
		return
	}

	_ = w.conn.Close()
	w.conn = nil
}
