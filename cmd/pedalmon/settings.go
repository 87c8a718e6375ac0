package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gopedal/pkg/link"
)

// showSettingsDialog displays a settings dialog with tabs for the monitor options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createMonitorTab(state),
		createPedalsTab(state),
		createSimulatorTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 400))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 400))
	d.Show()
}

func saveConfig(state *appState) bool {
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
		return false
	}
	return true
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := link.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Map display name to actual port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.Baud))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			if portSelect.Selected == "" {
				return
			}
			selectedPort := portMap[portSelect.Selected]
			if selectedPort == "" {
				selectedPort = portSelect.Selected // Fallback to selected text
			}

			baud := state.cfg.Serial.Baud
			if b, err := strconv.Atoi(baudEntry.Text); err == nil && b > 0 {
				baud = b
			}

			changed := state.cfg.Serial.Port != selectedPort || state.cfg.Serial.Baud != baud
			wasConnected := !state.useMock && state.device != nil && state.device.IsConnected()

			state.cfg.Serial.Port = selectedPort
			state.cfg.Serial.Baud = baud
			if !saveConfig(state) {
				return
			}

			// Reconnect with the new port
			if changed && wasConnected {
				disconnect(state)
				handleConnect(state)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createMonitorTab creates the display configuration tab.
func createMonitorTab(state *appState) *container.TabItem {
	windowSecondsEntry := widget.NewEntry()
	windowSecondsEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Monitor.WindowSeconds))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Window (seconds)", Widget: windowSecondsEntry},
		},
		OnSubmit: func() {
			ws, err := strconv.ParseFloat(windowSecondsEntry.Text, 64)
			if err != nil || ws <= 0 {
				dialog.ShowError(fmt.Errorf("invalid window: %q", windowSecondsEntry.Text), state.window)
				return
			}
			state.cfg.Monitor.WindowSeconds = ws
			if !saveConfig(state) {
				return
			}

			// A new window needs a new monitor; reconnect so the chain feeds it
			wasConnected := state.device != nil && state.device.IsConnected()
			disconnect(state)
			resetMonitor(state)
			state.scopeWidget.SetWindow(windowDuration(state.cfg))
			if wasConnected {
				handleConnect(state)
			}
		},
	}

	return container.NewTabItem("Monitor", form)
}

// createPedalsTab lists the configured pedals. They are edited in the config file.
func createPedalsTab(state *appState) *container.TabItem {
	rows := container.NewVBox()
	for i, p := range state.cfg.Pedals {
		rows.Add(widget.NewLabel(fmt.Sprintf("P%d %-12s CC%-3d ch %-2d analog %d enable %d record @%d",
			i, p.Name, p.Controller, p.Channel, p.Analog, p.Enable, p.Address)))
	}
	return container.NewTabItem("Pedals", rows)
}

// createSimulatorTab creates the simulated board configuration tab.
func createSimulatorTab(state *appState) *container.TabItem {
	periodEntry := widget.NewEntry()
	periodEntry.SetText(state.cfg.Simulator.SweepPeriod.String())

	loEntry := widget.NewEntry()
	loEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Simulator.Lo))

	hiEntry := widget.NewEntry()
	hiEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Simulator.Hi))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Simulator.Noise))

	crosstalkEntry := widget.NewEntry()
	crosstalkEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Simulator.Crosstalk))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Sweep Period", Widget: periodEntry},
			{Text: "Heel (raw)", Widget: loEntry},
			{Text: "Toe (raw)", Widget: hiEntry},
			{Text: "Noise (raw)", Widget: noiseEntry},
			{Text: "Crosstalk (0-1)", Widget: crosstalkEntry},
		},
		OnSubmit: func() {
			if p, err := time.ParseDuration(periodEntry.Text); err == nil && p > 0 {
				state.cfg.Simulator.SweepPeriod = p
			}
			if lo, err := strconv.ParseFloat(loEntry.Text, 64); err == nil {
				state.cfg.Simulator.Lo = lo
			}
			if hi, err := strconv.ParseFloat(hiEntry.Text, 64); err == nil {
				state.cfg.Simulator.Hi = hi
			}
			if n, err := strconv.ParseFloat(noiseEntry.Text, 64); err == nil {
				state.cfg.Simulator.Noise = n
			}
			if c, err := strconv.ParseFloat(crosstalkEntry.Text, 64); err == nil && c >= 0 && c <= 1 {
				state.cfg.Simulator.Crosstalk = c
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Simulator", form)
}
