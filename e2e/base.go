package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quicktalk/session"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type BaseSuite struct {
	suite.Suite
	Config Config
	client *http.Client
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerAddr == "" {
		s.T().Skip("E2E_SERVER_ADDR is not set")
	}
	s.client = &http.Client{Timeout: 10 * time.Second}
}

// Step prints a colorized header before running fn
func (s *BaseSuite) Step(name string, fn func()) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
	fn()
}

// Call sends a JSON request and decodes the JSON answer into out when given.
func (s *BaseSuite) Call(method, path, token string, body, out any) int {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		payload = bytes.NewReader(raw)
	}
	r, err := http.NewRequest(method, "http://"+s.Config.ServerAddr+path, payload)
	s.Require().NoError(err)
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := s.client.Do(r)
	s.Require().NoError(err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	logBuilder := strings.Builder{}
	fmt.Fprintf(&logBuilder, "HTTP %s %s [%d] in %v", method, path, resp.StatusCode, time.Since(start))
	if s.Config.DebugJSON {
		fmt.Fprintf(&logBuilder, "\nREQUEST: %v\nRESPONSE: %s", body, raw)
	}
	s.T().Log(logBuilder.String())

	if out != nil && resp.StatusCode < http.StatusBadRequest && len(raw) > 0 {
		s.Require().NoError(json.Unmarshal(raw, out))
	}
	return resp.StatusCode
}

// Dial opens a websocket on a chat, the caller closes it.
func (s *BaseSuite) Dial(chatID int64, token string) (*websocket.Conn, int) {
	endpoint := url.URL{Scheme: "ws", Host: s.Config.ServerAddr, Path: fmt.Sprintf("/ws/chat/%d/", chatID)}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, resp, err := websocket.DefaultDialer.Dial(endpoint.String(), header)
	if err != nil {
		s.Require().NotNil(resp, "dial failed: %v", err)
		return nil, resp.StatusCode
	}
	return conn, http.StatusSwitchingProtocols
}

func (s *BaseSuite) Read(conn *websocket.Conn) session.OutboundFrame {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	var frame session.OutboundFrame
	s.Require().NoError(conn.ReadJSON(&frame))
	return frame
}

// Health queries the gRPC health endpoint.
func (s *BaseSuite) Health(service string) healthpb.HealthCheckResponse_ServingStatus {
	conn, err := grpc.NewClient(s.Config.HealthAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	s.Require().NoError(err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	s.Require().NoError(err)
	return resp.Status
}
