// Package notify tells netifd about bridge lifecycle and hotplug events.
//
// Notifications are best effort: a single sender goroutine delivers them in
// the order they were queued, failures are logged and counted, and nothing
// is retried. A lost notification never undoes the operation that
// triggered it.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/docker/go-connections/sockets"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// DefaultSocket is the netifd socket notifications are posted to
const DefaultSocket = "/var/run/netifd.sock"

const (
	baseURL     = "http://netifd"
	pathPrefix  = "/ovs/"
	sendTimeout = 5 * time.Second

	// DefaultQueueSize is the number of notifications that may wait for
	// delivery before new ones are dropped
	DefaultQueueSize = 256
)

// Event names a notification
type Event string

const (
	EventCreate Event = "create"
	EventReload Event = "reload"
	EventFree   Event = "free"

	EventPrepare Event = "prepare"
	EventAdd     Event = "add"
	EventRemove  Event = "remove"
)

var notificationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ovsd_notifications_total",
		Help: "Notifications sent to netifd",
	},
	[]string{"event", "result"},
)

func init() {
	prometheus.MustRegister(notificationsTotal)
}

// Notifier delivers events without blocking the caller
type Notifier interface {
	Notify(event Event, bridge, member string)
}

// Payload builds the message body for event. Port events carry the bridge
// and the member, every other event only the bridge name.
func Payload(event Event, bridge, member string) map[string]string {
	switch event {
	case EventAdd, EventRemove:
		return map[string]string{
			"bridge": bridge,
			"member": member,
		}
	default:
		return map[string]string{
			"name": bridge,
		}
	}
}

// Dispatcher posts notifications to netifd over HTTP, one at a time
type Dispatcher struct {
	client  *http.Client
	baseURL string
	logger  *logrus.Logger

	mu     sync.Mutex
	closed bool
	queue  chan notification
	done   chan struct{}
}

type notification struct {
	event  Event
	bridge string
	member string
}

// New creates a dispatcher posting to the unix socket at socket and starts
// its sender. Close stops it.
func New(socket string, logger *logrus.Logger) (*Dispatcher, error) {
	if socket == "" {
		socket = DefaultSocket
	}

	tr := &http.Transport{}
	if err := sockets.ConfigureTransport(tr, "unix", socket); err != nil {
		return nil, fmt.Errorf("failed to configure netifd transport: %w", err)
	}

	client := &http.Client{Transport: tr, Timeout: sendTimeout}
	return newDispatcher(client, baseURL, DefaultQueueSize, logger), nil
}

func newDispatcher(client *http.Client, url string, size int, logger *logrus.Logger) *Dispatcher {
	d := &Dispatcher{
		client:  client,
		baseURL: url,
		logger:  logger,
		queue:   make(chan notification, size),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Notify queues the event for delivery. It never blocks on netifd: when the
// queue is full or the dispatcher is closed the event is dropped.
func (d *Dispatcher) Notify(event Event, bridge, member string) {
	n := notification{event: event, bridge: bridge, member: member}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.closed {
		select {
		case d.queue <- n:
			return
		default:
		}
	}

	notificationsTotal.WithLabelValues(string(event), "dropped").Inc()
	d.logger.WithField("bridge", bridge).Errorf("%s notification dropped", event)
}

// Close stops accepting notifications and blocks until the queued ones have
// been delivered
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for n := range d.queue {
		if err := d.send(n.event, Payload(n.event, n.bridge, n.member)); err != nil {
			notificationsTotal.WithLabelValues(string(n.event), "failed").Inc()
			d.logger.WithError(err).WithField("bridge", n.bridge).Errorf("%s notification failed", n.event)
			continue
		}

		notificationsTotal.WithLabelValues(string(n.event), "sent").Inc()
		d.logger.WithField("bridge", n.bridge).Debugf("Sent %s notification", n.event)
	}
}

func (d *Dispatcher) send(event Event, payload map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	resp, err := d.client.Post(d.baseURL+pathPrefix+string(event), "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("netifd answered %s", resp.Status)
	}
	return nil
}
