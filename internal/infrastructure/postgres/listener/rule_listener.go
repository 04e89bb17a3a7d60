package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

const (
	reconnectInterval = 5 * time.Second
	pingInterval      = 90 * time.Second
)

// Invalidator drops a cached rule set.
type Invalidator interface {
	Invalidate()
}

// RuleNotification is the payload sent with a rule update.
type RuleNotification struct {
	Key  string `json:"key"`
	Size int    `json:"size"`
}

// RuleListener listens for rule document updates saved by any instance
// and invalidates the local rule cache so the next match reloads.
type RuleListener struct {
	connStr    string
	channel    string
	cache      Invalidator
	log        zerolog.Logger
	shutdownCh chan struct{}
	done       chan struct{}

	// listened is set after the first successful LISTEN. Only touched by
	// the listen goroutine.
	listened bool
}

// NewRuleListener creates a listener on channel.
func NewRuleListener(connStr, channel string, cache Invalidator, log zerolog.Logger) *RuleListener {
	return &RuleListener{
		connStr:    connStr,
		channel:    channel,
		cache:      cache,
		log:        log.With().Str("component", "rule_listener").Str("channel", channel).Logger(),
		shutdownCh: make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start begins listening for notifications in a background goroutine
func (l *RuleListener) Start(ctx context.Context) {
	go l.listen(ctx)
	l.log.Info().Msg("Rule update listener started")
}

// Stop gracefully shuts down the listener
func (l *RuleListener) Stop() {
	close(l.shutdownCh)
	<-l.done
	l.log.Info().Msg("Rule update listener stopped")
}

func (l *RuleListener) listen(ctx context.Context) {
	defer close(l.done)

	for {
		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		default:
			l.connectAndListen(ctx)
		}

		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		case <-time.After(reconnectInterval):
			l.log.Info().Msg("Reconnecting to PostgreSQL for notifications")
		}
	}
}

func (l *RuleListener) connectAndListen(ctx context.Context) {
	listener := pq.NewListener(l.connStr, 10*time.Second, time.Minute, l.onEvent)
	defer listener.Close()

	if err := listener.Listen(l.channel); err != nil {
		l.log.Error().Err(err).Msg("Failed to listen on channel")
		return
	}

	l.resync()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		case n := <-listener.Notify:
			if n == nil {
				// Connection lost; lib/pq reconnects and we resync on the next event.
				l.cache.Invalidate()
				continue
			}
			l.handleNotification(n)
		case <-ticker.C:
			go func() {
				if err := listener.Ping(); err != nil {
					l.log.Warn().Err(err).Msg("Listener ping failed")
				}
			}()
		}
	}
}

// resync invalidates the cache after a reconnect, since updates may have
// been missed while disconnected. The first connect keeps the warm cache.
func (l *RuleListener) resync() {
	if !l.listened {
		l.listened = true
		return
	}
	l.cache.Invalidate()
	l.log.Info().Msg("Listening again, rule cache invalidated")
}

func (l *RuleListener) onEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnected:
		l.log.Info().Msg("Connected to PostgreSQL notification channel")
	case pq.ListenerEventDisconnected:
		l.log.Warn().Err(err).Msg("Disconnected from PostgreSQL notification channel")
	case pq.ListenerEventReconnected:
		l.log.Info().Msg("Reconnected to PostgreSQL notification channel")
	case pq.ListenerEventConnectionAttemptFailed:
		l.log.Warn().Err(err).Msg("Connection attempt failed")
	}
}

func (l *RuleListener) handleNotification(n *pq.Notification) {
	var payload RuleNotification
	if err := json.Unmarshal([]byte(n.Extra), &payload); err != nil {
		l.log.Warn().Err(err).Msg("Unparseable rule notification, invalidating anyway")
	}

	l.cache.Invalidate()
	l.log.Info().Str("key", payload.Key).Int("size", payload.Size).Msg("Rule document changed, cache invalidated")
}
