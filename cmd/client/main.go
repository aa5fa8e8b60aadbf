package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quicktalk/session"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress string `envconfig:"CHAT_SERVER_ADDR" default:"localhost:8000"`
	ChatID        int64  `envconfig:"CHAT_ID" default:"1"`
	Token         string `envconfig:"CHAT_TOKEN" required:"true"`
	Colours       bool   `envconfig:"CHAT_COLOURS" default:"true"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"WARN"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run connects to one chat, prints every message it receives and sends every
// line typed on stdin.
func run() (int, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	endpoint := url.URL{Scheme: "ws", Host: config.ServerAddress, Path: fmt.Sprintf("/ws/chat/%d/", config.ChatID)}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+config.Token)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint.String(), header)
	if err != nil {
		if resp != nil {
			return exitRuntime, fmt.Errorf("join refused with status %d: %w", resp.StatusCode, err)
		}
		return exitRuntime, fmt.Errorf("could not connect to %s: %w", endpoint.String(), err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = conn.Close()
	}()

	fmt.Println(paint(config.Colours, color.FgGreen, fmt.Sprintf(">>> Connected to chat %d (Ctrl+C to quit)", config.ChatID)))

	received := make(chan error, 1)
	go func() {
		received <- receive(conn, config.Colours)
	}()
	go send(ctx, conn)

	select {
	case <-ctx.Done():
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		return exitOK, nil
	case err := <-received:
		if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
			return exitOK, nil
		}
		return exitRuntime, fmt.Errorf("connection lost: %w", err)
	}
}

func receive(conn *websocket.Conn, colours bool) error {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var frame session.OutboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			fmt.Println(paint(colours, color.FgRed, "unreadable frame: "+string(raw)))
			continue
		}
		at := frame.Timestamp
		if parsed, err := session.ParseTimestamp(frame.Timestamp); err == nil {
			at = parsed.Local().Format(time.TimeOnly)
		}
		fmt.Printf("[%s] %s: %s\n", at, paint(colours, color.FgCyan, frame.Username), frame.Message)
	}
}

// send stops at EOF on stdin; reads from the connection go on.
func send(ctx context.Context, conn *websocket.Conn) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		raw, _ := json.Marshal(map[string]string{"message": scanner.Text()})
		if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			return
		}
	}
}

func paint(enabled bool, c color.Color, text string) string {
	if !enabled {
		return text
	}
	return color.New(c, color.OpBold).Render(text)
}
