package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gopedal/pkg/config"
	"github.com/itohio/gopedal/pkg/link"
	"github.com/itohio/gopedal/pkg/monitor"
	"github.com/itohio/gopedal/pkg/scope"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use simulated pedal board instead of serial port")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	application := app.NewWithID("com.itohio.gopedal")

	window := application.NewWindow("Pedal Monitor")
	window.Resize(fyne.NewSize(1200, 700))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		window:     window,
		useMock:    *mockFlag,
		updates:    newThrottle(16 * time.Millisecond), // ~60 FPS
	}

	toolbar := createToolbar(state)

	state.scopeWidget = scope.New(windowDuration(cfg))
	resetMonitor(state)

	content := container.NewBorder(
		toolbar,
		state.status,
		nil,
		nil,
		state.scopeWidget,
	)

	window.SetContent(content)
	window.SetOnClosed(func() {
		disconnect(state)
	})
	window.ShowAndRun()
}

func windowDuration(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Monitor.WindowSeconds * float64(time.Second))
}

// resetMonitor replaces the monitor, e.g. after the window changed.
// The monitor outlives connections; it is only replaced while disconnected.
func resetMonitor(state *appState) {
	state.monitor = monitor.New(windowDuration(state.cfg))
	state.monitor.OnUpdate(func(snap monitor.Snapshot) {
		state.updates.Do(func() {
			state.scopeWidget.UpdateData(snap)
		})
	})
}

// readChain tracks the goroutine feeding the monitor for graceful shutdown.
type readChain struct {
	device  link.Device
	monitor chan struct{} // Closed when the monitor goroutine exits
}

// appState holds the application state.
type appState struct {
	cfg         *config.Config
	configPath  string
	device      link.Device
	monitor     *monitor.Monitor
	scopeWidget *scope.ScopeWidget
	window      fyne.Window
	connectBtn  *widget.Button
	clearBtn    *widget.Button
	status      *widget.Label
	useMock     bool
	chain       *readChain // nil if not connected
	updates     *throttle
}

// createToolbar creates the toolbar with Connect, Clear, and Settings buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	clearBtn := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
		state.monitor.Clear()
		state.scopeWidget.UpdateData(state.monitor.Snapshot())
	})
	state.clearBtn = clearBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	state.status = widget.NewLabel("Disconnected")

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(connectBtn, clearBtn, settingsBtn),
		nil,
		nil,
	)
}

// closeChain closes the device and waits for the monitor goroutine to drain.
func closeChain(chain *readChain) {
	if chain == nil {
		return
	}

	// Closing the device closes its reports channel
	if chain.device != nil {
		chain.device.Close()
	}

	if chain.monitor != nil {
		<-chain.monitor
	}
}

func disconnect(state *appState) {
	closeChain(state.chain)
	state.chain = nil
	state.device = nil
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.device != nil && state.device.IsConnected() {
		disconnect(state)
		state.connectBtn.SetIcon(theme.LoginIcon())
		state.status.SetText("Disconnected")
		return
	}

	device, err := openDevice(state)
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	if err := device.Connect(); err != nil {
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to start simulated board: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}
	state.device = device

	if state.useMock {
		state.status.SetText("Simulated pedal board")
	} else {
		state.status.SetText(fmt.Sprintf("Connected to %s", state.cfg.Serial.Port))
	}
	state.connectBtn.SetIcon(theme.LogoutIcon())

	// Reset monitor shutdown flag for new chain
	state.monitor.ResetShutdown()

	done := make(chan struct{})
	go func() {
		defer close(done)
		state.monitor.ProcessReports(device.Reports())
	}()

	state.chain = &readChain{
		device:  device,
		monitor: done,
	}
}

func openDevice(state *appState) (link.Device, error) {
	if state.useMock {
		return link.NewMock(state.cfg)
	}
	return link.New(state.cfg.Serial.Port, state.cfg.Serial.Baud, link.DefaultBufferSize), nil
}
