package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"

	"eyedoro/internal/audio"
	"eyedoro/internal/cli"
	"eyedoro/internal/core/broadcast"
	"eyedoro/internal/core/clock"
	"eyedoro/internal/core/command"
	"eyedoro/internal/core/timekeeper"
	"eyedoro/internal/ipc"
	"eyedoro/internal/logger"
	"eyedoro/internal/platform"
	"eyedoro/internal/storage"
	"eyedoro/internal/ui/appearance"
	"eyedoro/internal/ui/displays"
	"eyedoro/internal/ui/notify"
	"eyedoro/internal/ui/overlay"
	"eyedoro/internal/ui/popup"
	"eyedoro/internal/ui/preferences"
	"eyedoro/internal/ui/tray"
	"eyedoro/resources"
)

const (
	appID = "com.eyedoro.app"
	// The first work phase starts once the tray and windows have settled.
	startupDelay    = time.Second
	shutdownTimeout = 3 * time.Second
)

func runDesktop(parent context.Context, opts cli.Options) error {
	log, closer, err := opts.OpenLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	guard, err := platform.AcquireSingleInstance(cli.AppName)
	if errors.Is(err, platform.ErrAlreadyRunning) {
		log.Info("%s is already running", cli.AppName)
		return nil
	}
	if err != nil {
		return fmt.Errorf("acquire single instance: %w", err)
	}
	defer func() {
		_ = guard.Release()
	}()

	osService := platform.NewService()
	configDir := opts.ConfigDir
	if configDir == "" {
		configDir, err = platform.AppConfigDir(osService, cli.AppName)
		if err != nil {
			return fmt.Errorf("resolve config dir: %w", err)
		}
	}
	store := storage.NewStore(configDir, log)
	defer store.Close()
	config, err := store.Load()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	log.Info("settings loaded from %s", store.Path())

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.MustIcon(resources.IconApp))
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		return errors.New("system tray unsupported on this platform")
	}
	appearance.Apply(fyneApp, config.Theme)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	keeper := timekeeper.New(config, timekeeper.Options{Clock: clock.System, Store: store, Logger: log})
	defer keeper.Shutdown()

	var autostart command.Autostart
	autostarter, err := platform.NewAutostarter(osService, cli.AppName)
	if err != nil {
		log.Warn("autostart unavailable: %v", err)
	} else {
		autostart = autostarter
		syncAutostart(autostarter, config.AutoStart, log)
	}
	service := command.NewService(keeper, store, autostart, log)

	var quit func()
	prefs := preferences.New(fyneApp, service)
	trayManager := tray.New(desktopApp, tray.Callbacks{
		OnEndBreakEarly: func() { go service.EndBreakEarly() },
		OnTogglePause:   func() { go service.TogglePause() },
		OnTakeBreakNow:  func() { go service.StartBreakNow() },
		OnSettings:      prefs.Show,
		OnQuit:          func() { go quit() },
	})
	popupWindow := popup.New(fyneApp, popup.Callbacks{
		OnStartNow: func() { service.StartBreakNow() },
		OnAddTime:  func(seconds int) { service.AddTime(seconds) },
		OnSkip:     func() { service.SkipBreak() },
	})
	overlays := overlay.NewFactory(fyneApp, log, func() {
		if !service.EndBreakEarly() {
			service.ForceCloseAll()
		}
	})

	broadcaster := broadcast.New(keeper, broadcast.Surfaces{
		Displays: displays.GLFW{},
		Overlays: overlays,
		Popup:    popupWindow,
		Tray:     trayManager,
		Notifier: notify.New(fyneApp),
		Cues:     audio.Open(log),
	}, log)
	keeper.SetPublisher(broadcaster)

	server := ipc.NewServer(service, log)
	broadcaster.AddSink(server)
	go func() {
		if err := server.Serve(ctx, guard.Listener()); err != nil {
			log.Error("command socket stopped: %v", err)
		}
	}()

	themes := store.OnThemeChanged(8)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case change, ok := <-themes:
				if !ok {
					return
				}
				appearance.Apply(fyneApp, change.Theme)
				server.DeliverTheme(change)
				prefs.ThemeChanged(change)
			}
		}
	}()

	if err := store.Watch(ctx, keeper.ApplyConfig); err != nil {
		log.Warn("settings file will not be followed: %v", err)
	}

	emergency, err := platform.RegisterEmergencyHotkey(func() { service.Emergency() })
	if err != nil {
		log.Warn("emergency shortcut unavailable: %v", err)
	} else {
		log.Info("emergency shortcut %s registered", platform.EmergencyHotkeyLabel)
		defer emergency.Unregister()
	}

	broadcasterDone := make(chan struct{})
	go func() {
		defer close(broadcasterDone)
		broadcaster.Run(ctx)
	}()

	// Surfaces are torn down while the UI loop still runs; the broadcaster
	// needs it to close windows.
	var quitOnce sync.Once
	quit = func() {
		quitOnce.Do(func() {
			log.Info("shutting down")
			keeper.Shutdown()
			cancel()
			waitFor(broadcasterDone, shutdownTimeout)
			fyne.Do(fyneApp.Quit)
		})
	}
	go func() {
		<-ctx.Done()
		quit()
	}()

	fyneApp.Lifecycle().SetOnStarted(func() {
		time.AfterFunc(startupDelay, func() {
			if err := keeper.Initialize(); err != nil {
				log.Error("start session: %v", err)
			}
		})
	})

	fyneApp.Run()

	keeper.Shutdown()
	cancel()
	waitFor(broadcasterDone, shutdownTimeout)
	return nil
}

func waitFor(done <-chan struct{}, timeout time.Duration) {
	select {
	case <-done:
	case <-time.After(timeout):
	}
}

// syncAutostart refreshes the login entry so it points at the running binary.
func syncAutostart(autostarter *platform.Autostarter, wanted bool, log *logger.Logger) {
	enabled, err := autostarter.Enabled()
	if err != nil {
		log.Warn("query autostart: %v", err)
		return
	}
	if !wanted && !enabled {
		return
	}
	if err := autostarter.SetAutostart(wanted); err != nil {
		log.Warn("sync autostart: %v", err)
	}
}
