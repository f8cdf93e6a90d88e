// Package bus serves bus objects over HTTP on a unix socket. A method call
// is a POST of a JSON attribute object to /<object>.<method>; the reply is
// a types.Reply.
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/docker/go-connections/sockets"
	"github.com/docker/go-plugins-helpers/sdk"
	"github.com/ovs-container-lab/ovsd/pkg/types"
	"github.com/sirupsen/logrus"
)

// DefaultSocket is where the daemon listens for bus clients
const DefaultSocket = "/var/run/ovsd.sock"

// ReconnectInterval is the fixed delay between attempts to get back on the
// bus after the transport failed
const ReconnectInterval = 2 * time.Second

// Object is a named set of methods
type Object interface {
	Methods() []string
	Invoke(method string, msg types.Message) *types.Reply
}

// Server exposes one object on the bus
type Server struct {
	name    string
	object  Object
	socket  string
	handler sdk.Handler
	logger  *logrus.Logger

	listen   func() (net.Listener, error)
	interval time.Duration
}

// NewServer creates a server for object, registered under name
func NewServer(name string, object Object, socket string, logger *logrus.Logger) *Server {
	if socket == "" {
		socket = DefaultSocket
	}

	s := &Server{
		name:     name,
		object:   object,
		socket:   socket,
		logger:   logger,
		interval: ReconnectInterval,
	}
	s.listen = s.listenUnix
	s.handler = s.register()
	return s
}

func (s *Server) register() sdk.Handler {
	h := sdk.NewHandler(fmt.Sprintf(`{"Implements": [%q]}`, s.name))
	for _, method := range s.object.Methods() {
		h.HandleFunc(s.path(method), s.handle(method))
	}
	h.HandleFunc("/", s.notFound)
	return h
}

func (s *Server) path(method string) string {
	return "/" + s.name + "." + method
}

func (s *Server) listenUnix() (net.Listener, error) {
	return sockets.NewUnixSocketWithOpts(s.socket, sockets.WithChmod(0o660))
}

// Run serves until ctx is cancelled. Failing to listen the first time is
// fatal; later transport failures are retried every interval, forever.
func (s *Server) Run(ctx context.Context) error {
	l, err := s.listen()
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.socket, err)
	}
	s.logger.Infof("Serving object %s on %s", s.name, s.socket)

	for {
		err := s.serve(ctx, l)
		if ctx.Err() != nil {
			return nil
		}
		s.logger.WithError(err).Warn("Lost bus connection, reconnecting")

		l, err = backoff.Retry(ctx, s.listen,
			backoff.WithBackOff(backoff.NewConstantBackOff(s.interval)),
			backoff.WithMaxElapsedTime(0),
			backoff.WithNotify(func(err error, next time.Duration) {
				s.logger.WithError(err).Debugf("Failed to reconnect, retrying in %s", next)
			}),
		)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to reconnect to bus: %w", err)
		}
		s.logger.Infof("Reconnected object %s on %s", s.name, s.socket)
	}
}

// serve blocks until the listener fails or ctx is cancelled
func (s *Server) serve(ctx context.Context, l net.Listener) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			l.Close()
		case <-done:
		}
	}()

	return s.handler.Serve(l)
}

func (s *Server) handle(method string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msg := types.Message{}
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil && !errors.Is(err, io.EOF) {
			s.logger.WithError(err).WithField("method", method).Warn("Malformed request")
			s.reply(w, &types.Reply{Status: types.RPCStatusInvalidArgument})
			return
		}

		s.reply(w, s.object.Invoke(method, msg))
	}
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.logger.WithField("path", r.URL.Path).Warn("No such method")
	s.reply(w, &types.Reply{Status: types.RPCStatusMethodNotFound})
}

func (s *Server) reply(w http.ResponseWriter, reply *types.Reply) {
	sdk.EncodeResponse(w, reply, reply.Status != types.RPCStatusOK)
}
