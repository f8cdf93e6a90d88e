package bus

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/sockets"
	"github.com/ovs-container-lab/ovsd/pkg/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	method string
	msg    types.Message
}

type fakeObject struct {
	mu    sync.Mutex
	calls []call
}

func (f *fakeObject) Methods() []string {
	return []string{"check_state", "create"}
}

func (f *fakeObject) Invoke(method string, msg types.Message) *types.Reply {
	f.mu.Lock()
	f.calls = append(f.calls, call{method: method, msg: msg})
	f.mu.Unlock()

	if msg["bridge"] == "br-missing" {
		return &types.Reply{Status: types.RPCStatusNotFound}
	}
	return &types.Reply{Status: types.RPCStatusOK, Data: types.Attributes{"bridge": msg["bridge"]}}
}

func (f *fakeObject) recorded() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func decodeReply(t *testing.T, body string) types.Reply {
	var reply types.Reply
	require.NoError(t, json.Unmarshal([]byte(body), &reply))
	return reply
}

func TestHandle(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		status     types.RPCStatus
		httpStatus int
		invoked    bool
	}{
		{name: "found", body: `{"bridge":"br-lan"}`, status: types.RPCStatusOK, httpStatus: http.StatusOK, invoked: true},
		{name: "not found", body: `{"bridge":"br-missing"}`, status: types.RPCStatusNotFound, httpStatus: http.StatusInternalServerError, invoked: true},
		{name: "empty body", body: "", status: types.RPCStatusOK, httpStatus: http.StatusOK, invoked: true},
		{name: "malformed", body: `{"bridge":`, status: types.RPCStatusInvalidArgument, httpStatus: http.StatusInternalServerError},
		{name: "not an object", body: `["br-lan"]`, status: types.RPCStatusInvalidArgument, httpStatus: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			obj := &fakeObject{}
			s := NewServer("ovs", obj, "", logrus.New())

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/ovs.check_state", strings.NewReader(tc.body))
			s.handle("check_state")(w, r)

			assert.Equal(t, tc.httpStatus, w.Code)
			assert.Equal(t, tc.status, decodeReply(t, w.Body.String()).Status)
			if tc.invoked {
				require.Len(t, obj.recorded(), 1)
				assert.Equal(t, "check_state", obj.recorded()[0].method)
			} else {
				assert.Empty(t, obj.recorded())
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	obj := &fakeObject{}
	s := NewServer("ovs", obj, "", logrus.New())

	w := httptest.NewRecorder()
	s.notFound(w, httptest.NewRequest(http.MethodPost, "/ovs.explode", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, types.RPCStatusMethodNotFound, decodeReply(t, w.Body.String()).Status)
	assert.Empty(t, obj.recorded())
}

func newUnixClient(t *testing.T, socket string) *http.Client {
	tr := &http.Transport{}
	require.NoError(t, sockets.ConfigureTransport(tr, "unix", socket))
	return &http.Client{Transport: tr, Timeout: 5 * time.Second}
}

func post(t *testing.T, client *http.Client, path, body string) (int, types.Reply) {
	resp, err := client.Post("http://ovsd"+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var reply types.Reply
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	return resp.StatusCode, reply
}

func TestRunOverUnixSocket(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "ovsd.sock")
	obj := &fakeObject{}
	s := NewServer("ovs", obj, socket, logrus.New())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	client := newUnixClient(t, socket)
	require.Eventually(t, func() bool {
		resp, err := client.Post("http://ovsd/Plugin.Activate", "application/json", nil)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	code, reply := post(t, client, "/ovs.create", `{"bridge":"br-lan"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, types.RPCStatusOK, reply.Status)
	assert.Equal(t, "br-lan", reply.Data["bridge"])

	code, reply = post(t, client, "/ovs.reboot", `{}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, types.RPCStatusMethodNotFound, reply.Status)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRunFailsWithoutSocket(t *testing.T) {
	s := NewServer("ovs", &fakeObject{}, filepath.Join(t.TempDir(), "missing", "ovsd.sock"), logrus.New())

	err := s.Run(context.Background())
	assert.Error(t, err)
}

type brokenListener struct {
	net.Listener
}

func (brokenListener) Accept() (net.Conn, error) {
	return nil, errors.New("connection lost")
}

func (brokenListener) Close() error {
	return nil
}

func TestRunReconnects(t *testing.T) {
	obj := &fakeObject{}
	s := NewServer("ovs", obj, "", logrus.New())
	s.interval = 10 * time.Millisecond

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var mu sync.Mutex
	attempts := 0
	s.listen = func() (net.Listener, error) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		switch attempts {
		case 1:
			return brokenListener{ln}, nil
		case 2:
			return nil, errors.New("bus unavailable")
		default:
			return ln, nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	client := &http.Client{Timeout: 5 * time.Second}
	require.Eventually(t, func() bool {
		resp, err := client.Post("http://"+ln.Addr().String()+"/ovs.check_state", "application/json", strings.NewReader(`{"bridge":"br-lan"}`))
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, 3, attempts)
	mu.Unlock()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
