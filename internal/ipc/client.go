package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotRunning is returned when no instance is listening.
var ErrNotRunning = errors.New("eyedoro is not running")

// Client talks to a running instance. Calls are serialized.
type Client struct {
	conn    net.Conn
	reader  *bufio.Reader
	encoder *json.Encoder
	origin  string
	mu      sync.Mutex
}

// Dial connects to the instance at address. origin tags config saves.
func Dial(ctx context.Context, address, origin string) (*Client, error) {
	dialer := net.Dialer{Timeout: 2 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	return &Client{
		conn:    conn,
		reader:  bufio.NewReaderSize(conn, 64*1024),
		encoder: json.NewEncoder(conn),
		origin:  origin,
	}, nil
}

// Close closes the connection.
func (client *Client) Close() error {
	return client.conn.Close()
}

// Call sends command with args and decodes the result into out, which may be nil.
func (client *Client) Call(ctx context.Context, command string, args, out any) error {
	client.mu.Lock()
	defer client.mu.Unlock()

	request := Request{ID: uuid.NewString(), Command: command, Origin: client.origin}
	if args != nil {
		encoded, err := json.Marshal(args)
		if err != nil {
			return fmt.Errorf("encode args: %w", err)
		}
		request.Args = encoded
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = client.conn.SetDeadline(deadline)
		defer client.conn.SetDeadline(time.Time{})
	}
	if err := client.encoder.Encode(request); err != nil {
		return fmt.Errorf("send %s: %w", command, err)
	}

	for {
		message, err := client.read()
		if err != nil {
			return fmt.Errorf("read %s response: %w", command, err)
		}
		if message.Event != nil || message.ID != request.ID {
			continue
		}
		if message.Error != "" {
			return errors.New(message.Error)
		}
		if out == nil || len(message.Result) == 0 {
			return nil
		}
		if err := json.Unmarshal(message.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", command, err)
		}
		return nil
	}
}

// Subscribe turns the connection into an event stream. The channel closes
// when ctx is done or the connection drops; the client is unusable for
// calls afterwards.
func (client *Client) Subscribe(ctx context.Context) (<-chan EventMessage, error) {
	if err := client.Call(ctx, CommandSubscribe, nil, nil); err != nil {
		return nil, err
	}

	events := make(chan EventMessage, subscriberBuffer)
	go func() {
		<-ctx.Done()
		_ = client.conn.Close()
	}()
	go func() {
		defer close(events)
		for {
			message, err := client.read()
			if err != nil {
				return
			}
			if message.Event == nil {
				continue
			}
			select {
			case events <- *message.Event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}

func (client *Client) read() (Message, error) {
	line, err := client.reader.ReadBytes('\n')
	if err != nil {
		return Message{}, err
	}
	var message Message
	if err := json.Unmarshal(line, &message); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	return message, nil
}
