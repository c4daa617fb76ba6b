package logging

import (
	"errors"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LogstashSink forwards newline-delimited log documents to a Logstash TCP
// input from a background goroutine. Write never blocks: entries are dropped
// when the queue is full or while the connection is cooling down.
type LogstashSink struct {
	addr          string
	dialTimeout   time.Duration
	writeTimeout  time.Duration
	retryInterval time.Duration

	queue   chan []byte
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Int64

	conn      net.Conn
	nextRetry time.Time
}

type SinkOption func(*LogstashSink)

func WithDialTimeout(d time.Duration) SinkOption {
	return func(s *LogstashSink) { s.dialTimeout = d }
}

func WithWriteTimeout(d time.Duration) SinkOption {
	return func(s *LogstashSink) { s.writeTimeout = d }
}

func WithRetryInterval(d time.Duration) SinkOption {
	return func(s *LogstashSink) { s.retryInterval = d }
}

func WithQueueSize(n int) SinkOption {
	return func(s *LogstashSink) {
		if n > 0 {
			s.queue = make(chan []byte, n)
		}
	}
}

func NewLogstashSink(addr string, opts ...SinkOption) (*LogstashSink, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, errors.New("logstash: empty address")
	}
	s := &LogstashSink{
		addr:          addr,
		dialTimeout:   2 * time.Second,
		writeTimeout:  time.Second,
		retryInterval: 5 * time.Second,
		queue:         make(chan []byte, 1024),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)
	go s.run()
	return s, nil
}

func (s *LogstashSink) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	data := make([]byte, len(p), len(p)+1)
	copy(data, p)
	if data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	select {
	case <-s.done:
		return len(p), nil
	default:
	}
	select {
	case s.queue <- data:
	default:
		s.dropped.Add(1)
	}
	return len(p), nil
}

// Dropped reports entries discarded because the queue was full.
func (s *LogstashSink) Dropped() int64 {
	return s.dropped.Load()
}

// Close flushes what the connection accepts and stops the sender.
func (s *LogstashSink) Close() error {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
	return nil
}

func (s *LogstashSink) run() {
	defer s.wg.Done()
	defer s.disconnect()
	for {
		select {
		case data := <-s.queue:
			s.send(data)
		case <-s.done:
			for {
				select {
				case data := <-s.queue:
					s.send(data)
				default:
					return
				}
			}
		}
	}
}

func (s *LogstashSink) send(data []byte) {
	if s.conn == nil {
		if !s.nextRetry.IsZero() && time.Now().Before(s.nextRetry) {
			return
		}
		conn, err := net.DialTimeout("tcp", s.addr, s.dialTimeout)
		if err != nil {
			s.nextRetry = time.Now().Add(s.retryInterval)
			return
		}
		s.conn = conn
		s.nextRetry = time.Time{}
	}
	if s.writeTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	if _, err := s.conn.Write(data); err != nil {
		s.disconnect()
		s.nextRetry = time.Now().Add(s.retryInterval)
	}
}

func (s *LogstashSink) disconnect() {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}
