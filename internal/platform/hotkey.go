package platform

import (
	"context"
	"fmt"
	"sync"

	"golang.design/x/hotkey"
)

// EmergencyHotkeyLabel describes the key combination users press to recover.
const EmergencyHotkeyLabel = "Ctrl+Alt+Shift+E"

// GlobalHotkey is a system-wide key binding that runs a callback on keydown.
type GlobalHotkey struct {
	key      *hotkey.Hotkey
	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	released bool
}

// RegisterEmergencyHotkey binds Ctrl+Alt+Shift+E to onPress. onPress runs on
// the listener goroutine.
func RegisterEmergencyHotkey(onPress func()) (*GlobalHotkey, error) {
	key := hotkey.New(emergencyModifiers(), hotkey.KeyE)
	if err := key.Register(); err != nil {
		return nil, fmt.Errorf("register hotkey %s: %w", EmergencyHotkeyLabel, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	binding := &GlobalHotkey{key: key, cancel: cancel, done: make(chan struct{})}
	go binding.listen(ctx, onPress)
	return binding, nil
}

func (binding *GlobalHotkey) listen(ctx context.Context, onPress func()) {
	defer close(binding.done)
	keydown := binding.key.Keydown()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-keydown:
			if !ok {
				return
			}
			if onPress != nil {
				onPress()
			}
		}
	}
}

// Unregister releases the binding. Safe to call more than once.
func (binding *GlobalHotkey) Unregister() error {
	if binding == nil {
		return nil
	}
	binding.mu.Lock()
	if binding.released {
		binding.mu.Unlock()
		return nil
	}
	binding.released = true
	binding.mu.Unlock()

	binding.cancel()
	<-binding.done
	if err := binding.key.Unregister(); err != nil {
		return fmt.Errorf("unregister hotkey %s: %w", EmergencyHotkeyLabel, err)
	}
	return nil
}
