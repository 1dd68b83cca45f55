package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	// ErrNotConfigured - URL брокера не задан, уведомления выключены.
	ErrNotConfigured = errors.New("rabbitmq url is not configured")

	// ErrNoChannel - соединение ещё не установлено или переподключается.
	ErrNoChannel = errors.New("no amqp channel available")

	// ErrConnectionClosed - соединение закрыто через Close.
	ErrConnectionClosed = errors.New("amqp connection closed")
)

const (
	defaultReconnectMin = time.Second
	defaultReconnectMax = 30 * time.Second
)

// Backoff - задержки между попытками переподключения к брокеру.
type Backoff struct {
	Min time.Duration
	Max time.Duration
}

// Delay возвращает задержку перед попыткой attempt (с нуля): Min,
// затем удвоение до Max.
func (b Backoff) Delay(attempt int) time.Duration {
	b = b.normalized()

	d := b.Min
	for i := 0; i < attempt && d < b.Max; i++ {
		d *= 2
	}
	return min(d, b.Max)
}

func (b Backoff) normalized() Backoff {
	if b.Min <= 0 {
		b.Min = defaultReconnectMin
	}
	if b.Max <= 0 {
		b.Max = max(defaultReconnectMax, b.Min)
	}
	if b.Max < b.Min {
		b.Max = b.Min
	}
	return b
}

// ConnectionConfig - параметры соединения с брокером.
type ConnectionConfig struct {
	URL     string
	Backoff Backoff

	// Topology объявляется на каждом новом канале, в том числе после
	// reconnect. nil - ничего не объявлять (только публикация).
	Topology *Topology

	Logger *slog.Logger
}

// Connection - AMQP соединение с одним каналом. Переживает разрыв
// соединения и закрытие канала брокером.
type Connection struct {
	url      string
	backoff  Backoff
	topology *Topology
	logger   *slog.Logger

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool

	closedCh    chan struct{}
	reconnectCh chan struct{}
}

// Dial подключается к брокеру и объявляет топологию очереди задач.
func Dial(cfg ConnectionConfig) (*Connection, error) {
	if cfg.URL == "" {
		return nil, ErrNotConfigured
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Connection{
		url:         cfg.URL,
		backoff:     cfg.Backoff.normalized(),
		topology:    cfg.Topology,
		logger:      logger,
		closedCh:    make(chan struct{}),
		reconnectCh: make(chan struct{}, 1),
	}

	if err := c.connect(); err != nil {
		return nil, err
	}
	c.logger.Info("connected to RabbitMQ", "declare_topology", c.topology != nil)

	go c.watch()

	return c, nil
}

// connect открывает новое соединение и канал.
func (c *Connection) connect() error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := c.openChannel(conn)
	if err != nil {
		_ = conn.Close()
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		_ = conn.Close()
		return ErrConnectionClosed
	}
	c.conn = conn
	c.channel = ch
	return nil
}

// openChannel открывает канал и объявляет на нём топологию.
func (c *Connection) openChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if c.topology != nil {
		if err := c.topology.declare(ch); err != nil {
			_ = ch.Close()
			return nil, err
		}
	}
	return ch, nil
}

// reopenChannel заменяет закрытый брокером канал, не трогая соединение.
func (c *Connection) reopenChannel(conn *amqp.Connection) error {
	ch, err := c.openChannel(conn)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		_ = ch.Close()
		return ErrConnectionClosed
	}
	c.channel = ch
	return nil
}

// watch ждёт закрытия канала или соединения и восстанавливает их.
func (c *Connection) watch() {
	for {
		c.mu.RLock()
		conn, ch := c.conn, c.channel
		c.mu.RUnlock()

		connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))
		chClosed := ch.NotifyClose(make(chan *amqp.Error, 1))

		select {
		case <-c.closedCh:
			return

		case err := <-chClosed:
			if c.isClosed() {
				return
			}
			c.logger.Warn("channel closed", "error", err)

			if !conn.IsClosed() {
				reopenErr := c.reopenChannel(conn)
				if reopenErr == nil {
					c.logger.Info("channel reopened")
					c.notifyReconnect()
					continue
				}
				c.logger.Warn("failed to reopen channel", "error", reopenErr)
			}
			c.reconnect(conn)

		case err := <-connClosed:
			if c.isClosed() {
				return
			}
			c.logger.Warn("connection closed", "error", err)
			c.reconnect(conn)
		}

		if c.isClosed() {
			return
		}
	}
}

// reconnect переподключается с задержкой по backoff, пока не выйдет
// или пока соединение не закроют.
func (c *Connection) reconnect(old *amqp.Connection) {
	c.mu.Lock()
	c.channel = nil
	c.mu.Unlock()
	_ = old.Close()

	for attempt := 0; ; attempt++ {
		delay := c.backoff.Delay(attempt)
		c.logger.Info("attempting to reconnect", "attempt", attempt+1, "delay", delay)

		timer := time.NewTimer(delay)
		select {
		case <-c.closedCh:
			timer.Stop()
			return
		case <-timer.C:
		}

		if err := c.connect(); err != nil {
			if errors.Is(err, ErrConnectionClosed) {
				return
			}
			c.logger.Warn("reconnect failed", "attempt", attempt+1, "error", err)
			continue
		}

		c.logger.Info("reconnected to RabbitMQ", "attempts", attempt+1)
		c.notifyReconnect()
		return
	}
}

func (c *Connection) notifyReconnect() {
	select {
	case c.reconnectCh <- struct{}{}:
	default:
	}
}

func (c *Connection) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Channel возвращает текущий канал или nil во время переподключения.
func (c *Connection) Channel() *amqp.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

// ReconnectNotify сигналит, когда канал снова готов к работе.
func (c *Connection) ReconnectNotify() <-chan struct{} {
	return c.reconnectCh
}

// Ready сообщает, можно ли сейчас публиковать и потреблять.
func (c *Connection) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel != nil && c.conn != nil && !c.conn.IsClosed()
}

// WithChannel выполняет fn с текущим каналом.
func (c *Connection) WithChannel(ctx context.Context, fn func(ch *amqp.Channel) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ch := c.Channel()
	if ch == nil {
		return ErrNoChannel
	}
	return fn(ch)
}

// Close закрывает канал и соединение и останавливает переподключение.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.closedCh)

	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
	}

	c.logger.Info("RabbitMQ connection closed")
	return errors.Join(errs...)
}
