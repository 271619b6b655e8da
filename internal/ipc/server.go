package ipc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"eyedoro/internal/core/command"
	"eyedoro/internal/core/timekeeper"
	"eyedoro/internal/logger"
	"eyedoro/internal/storage"
)

const (
	subscriberBuffer = 64
	maxLineBytes     = 1 << 20
)

// ErrAlreadySubscribed answers a repeated subscribe on one connection.
var ErrAlreadySubscribed = errors.New("connection is already subscribed")

// Server answers command requests and streams events to subscribers.
type Server struct {
	service *command.Service
	log     *logger.Logger

	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
	wg          sync.WaitGroup
}

type subscriber struct {
	events chan EventMessage
}

// NewServer creates a server over the command service.
func NewServer(service *command.Service, log *logger.Logger) *Server {
	return &Server{
		service:     service,
		log:         log.Named("ipc"),
		subscribers: make(map[*subscriber]struct{}),
	}
}

// Serve accepts connections until ctx is cancelled. The listener is closed
// on return.
func (server *Server) Serve(ctx context.Context, listener net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	server.log.Info("listening on %s", listener.Addr())
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				server.wg.Wait()
				return nil
			}
			return fmt.Errorf("accept connection: %w", err)
		}
		server.wg.Add(1)
		go func() {
			defer server.wg.Done()
			server.handleConn(ctx, conn)
		}()
	}
}

// Deliver pushes a session event to every subscriber without blocking.
func (server *Server) Deliver(event timekeeper.Event) {
	server.push(EventOf(event))
}

// DeliverTheme pushes a theme change to every subscriber.
func (server *Server) DeliverTheme(change storage.ThemeChange) {
	server.push(EventMessage{
		Type:   EventThemeChanged,
		Theme:  string(change.Theme),
		Origin: change.Origin,
		At:     time.Now(),
	})
}

func (server *Server) push(message EventMessage) {
	server.mu.Lock()
	defer server.mu.Unlock()
	for sub := range server.subscribers {
		select {
		case sub.events <- message:
		default:
			server.log.Warn("subscriber queue full, dropping %s", message.Type)
		}
	}
}

func (server *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	var writeMu sync.Mutex
	encoder := json.NewEncoder(conn)
	write := func(message Message) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return encoder.Encode(message)
	}

	subscribed := false
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var request Request
		if err := json.Unmarshal(line, &request); err != nil {
			_ = write(Message{Error: fmt.Sprintf("malformed request: %v", err)})
			continue
		}
		if request.Command == CommandSubscribe {
			if subscribed {
				if err := write(Message{ID: request.ID, Error: ErrAlreadySubscribed.Error()}); err != nil {
					return
				}
				continue
			}
			subscribed = true
			sub := server.subscribe()
			defer server.unsubscribe(sub)
			if err := write(Message{ID: request.ID, Result: json.RawMessage(`true`)}); err != nil {
				return
			}
			go server.stream(ctx, sub, write, cancel)
			continue
		}
		if err := write(server.Dispatch(request)); err != nil {
			server.log.Debug("write response: %v", err)
			return
		}
	}
}

func (server *Server) stream(ctx context.Context, sub *subscriber, write func(Message) error, cancel context.CancelFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-sub.events:
			if err := write(Message{Event: &event}); err != nil {
				cancel()
				return
			}
		}
	}
}

func (server *Server) subscribe() *subscriber {
	sub := &subscriber{events: make(chan EventMessage, subscriberBuffer)}
	server.mu.Lock()
	server.subscribers[sub] = struct{}{}
	count := len(server.subscribers)
	server.mu.Unlock()
	server.log.Debug("subscriber added (%d total)", count)
	return sub
}

func (server *Server) unsubscribe(sub *subscriber) {
	server.mu.Lock()
	delete(server.subscribers, sub)
	server.mu.Unlock()
}

// Dispatch runs one request. It never panics.
func (server *Server) Dispatch(request Request) (message Message) {
	message.ID = request.ID
	defer func() {
		if recovered := recover(); recovered != nil {
			server.log.Error("command %s panicked: %v", request.Command, recovered)
			message = Message{ID: request.ID, Error: fmt.Sprintf("internal error in %s", request.Command)}
		}
	}()

	origin := request.Origin
	if origin == "" {
		origin = "ipc"
	}

	var result any
	switch request.Command {
	case CommandGetConfig:
		result = server.service.GetConfig()
	case CommandSaveConfig:
		result = server.service.SaveConfig(origin, request.Args)
	case CommandGetWorkTimeRemainingMs:
		result = server.service.GetWorkTimeRemainingMs()
	case CommandGetBreakTimeRemainingMs:
		result = server.service.GetBreakTimeRemainingMs()
	case CommandGetStatus:
		result = server.service.GetStatus()
	case CommandTogglePause:
		result = server.service.TogglePause()
	case CommandPause:
		result = server.service.Pause()
	case CommandResume:
		result = server.service.Resume()
	case CommandEndBreakEarly:
		result = server.service.EndBreakEarly()
	case CommandForceCloseAll:
		result = server.service.ForceCloseAll()
	case CommandStartBreakNow:
		result = server.service.StartBreakNow()
	case CommandAddTime:
		result = server.service.AddTime(decodeArg(request.Args))
	case CommandSkipBreak:
		result = server.service.SkipBreak()
	default:
		message.Error = fmt.Sprintf("unknown command %q", request.Command)
		return message
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		message.Error = fmt.Sprintf("encode result: %v", err)
		return message
	}
	message.Result = encoded
	return message
}

func decodeArg(raw json.RawMessage) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil
	}
	return value
}
