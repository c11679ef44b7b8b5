package main

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/gorilla/websocket"
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
	ServerAddress string `env:"TALKY_ADDR,default=localhost:8000"`
	Username      string `env:"TALKY_USERNAME,required=true"`
	LogLevel      string `env:"LOG_LEVEL,default=WARN"`
	Colours       bool   `env:"TALKY_COLOURS,default=true"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run connects, prints every server event and sends stdin lines until
// Ctrl+C, EOF or a transport error.
func run() (int, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	u := url.URL{Scheme: "ws", Host: config.ServerAddress, Path: "/ws", RawQuery: "username=" + url.QueryEscape(config.Username)}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to server at %s: %w", config.ServerAddress, err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = conn.Close()
	}()

	fmt.Printf(">>> Connected to %s as %q (/w <user> <text> to whisper, /summarize, Ctrl+C to quit)\n",
		config.ServerAddress, config.Username)

	renderer := Renderer{Colours: config.Colours}
	received := make(chan error, 1)
	go func() {
		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				received <- err
				return
			}
			fmt.Println(renderer.Render(payload))
		}
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return exitOK, nil
		case err := <-received:
			if ctx.Err() != nil {
				return exitOK, nil
			}
			return exitRuntime, fmt.Errorf("connection error: %w", err)
		case line, ok := <-lines:
			if !ok {
				return exitOK, nil
			}
			msg, ok := ParseLine(line)
			if !ok {
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				return exitRuntime, fmt.Errorf("send failed: %w", err)
			}
		}
	}
}
