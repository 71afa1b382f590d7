package client

import (
	"fmt"
	"time"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/draw"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/loop/config"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/object"
)

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	// On screen or inactivity transitions, do a full terminal clear
	// so UI elements from the previous screen don't persist.
	screenChanged := c.state.Screen != c.state.prevScreen
	inactiveChanged := c.state.isInactive != c.state.wasInactive
	if screenChanged || inactiveChanged {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.state.prevScreen = c.state.Screen
		c.state.wasInactive = c.state.isInactive
	}

	view := c.host.View()
	ctx := object.DrawContext{Canvas: c.canvas, Writer: c.chunkWriter}

	if err := view.Draw(ctx); err != nil {
		return err
	}
	c.canvas.Render(c.chunkWriter)

	// Draw border when terminal exceeds max render resolution
	c.canvas.RenderBorder(c.chunkWriter)

	if c.state.Screen == ScreenLive && !c.state.isInactive {
		for _, label := range view.Labels(c.canvas) {
			if label.Value == c.handle.Username {
				label.Color = draw.ColorBrightCyan
			}
			if err := label.Draw(ctx); err != nil {
				return err
			}
		}
	}

	c.drawUI(view)

	return c.chunkWriter.Flush()
}

// drawUI draws the text layer for the current screen.
func (c *Client) drawUI(view *object.View) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerY := termHeight / 2

	if c.state.Screen == ScreenShutdown {
		c.drawShutdownScreen(termWidth, centerY)
		return
	}
	if c.state.isInactive {
		c.drawInactivityScreen(termWidth, centerY)
		return
	}

	switch c.state.Screen {
	case ScreenLive:
		c.drawHUD(termWidth, termHeight, view)
	case ScreenStart:
		c.drawStartScreen(termWidth, centerY)
	}
}

// write draws lines centred horizontally starting at row y.
func (c *Client) write(width, y int, lines ...string) {
	ctx := object.DrawContext{Canvas: c.canvas, Writer: c.chunkWriter}
	for i, line := range lines {
		object.Centered(width, y+i, line, "").Draw(ctx)
	}
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(width, centerY int) {
	c.write(width, centerY-2, "INACTIVITY WARNING")
	c.write(width, centerY, fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %d seconds.",
		int(config.InactivityDisconnectUser-time.Since(c.lastInput).Seconds()),
	))
	c.write(width, centerY+2, "Press any key to continue")
}

var titleArt = []string{
	`  _____ ___    _   ___  ___ ___   _____  __ `,
	` |_   _| _ \  /_\ |   \| __| _ \ | __\ \/ / `,
	`   | | |   / / _ \| |) | _||   / | _| >  <  `,
	`   |_| |_|_\/_/ \_\___/|___|_|_\ |_| /_/\_\ `,
}

var controlLines = []string{
	"WASD / arrows  . . . . . . move hero",
	"TAB  . . . . . . walk / run toggle",
	"G / X  . . . . earn / spend gold",
	"L  . . . . . . . . . . . level up",
	"T / F  . . . trade success / fail",
	"B U H K . build upgrade damage destroy",
	"V  . . . . . . caravan depart / arrive",
	"P / E / I  . projectile, shake, item",
	"0-4  . . clear rain snow fog sandstorm",
	"Z N R Y M C . . . . settings toggles",
	"Q  . . . . . . . . . . . . . . . quit",
}

// drawStartScreen draws the title screen.
func (c *Client) drawStartScreen(width, centerY int) {
	y := centerY - (len(titleArt)+len(controlLines)+6)/2
	c.write(width, y, titleArt...)
	y += len(titleArt) + 1
	c.write(width, y, "~ real-time effects playground ~")
	y += 2
	c.write(width, y, controlLines...)

	// Blinking start prompt
	if time.Now().UnixMilli()/600%2 == 0 {
		c.write(width, y+len(controlLines)+1, ">>  Press SPACE to Start  <<")
	}
}

// drawHUD draws the live HUD. Fields use fixed-width formatting so shrinking
// values don't leave residual characters, since the canvas is not cleared
// every frame.
func (c *Client) drawHUD(termWidth, termHeight int, view *object.View) {
	ctx := object.DrawContext{Canvas: c.canvas, Writer: c.chunkWriter}

	left := fmt.Sprintf("Tier: %-6s FPS: %-5.1f", view.Tier, view.FPS)
	object.Text{X: 2, Y: 1, Value: left}.Draw(ctx)

	right := fmt.Sprintf("Particles: %-4d Anims: %-4d", view.Particles, view.Animations)
	object.Text{X: termWidth - len(right), Y: 1, Value: right}.Draw(ctx)

	weather := fmt.Sprintf("Weather: %-9s", view.Weather)
	object.Text{X: 2, Y: termHeight, Value: weather}.Draw(ctx)

	if live := c.host.Settings(); live != nil {
		flags := settingsFlags(live.Settings())
		object.Text{X: termWidth - len(flags), Y: termHeight, Value: flags}.Draw(ctx)
	}

	notice := fmt.Sprintf("%-40s", c.state.Notice())
	object.Centered(termWidth, 2, notice, draw.ColorYellow).Draw(ctx)
}

// settingsFlags renders the settings as a compact flag row: upper case is on.
func settingsFlags(s fx.Settings) string {
	flag := func(on bool, r byte) byte {
		if on {
			return r - 'a' + 'A'
		}
		return r
	}
	motion := byte('-')
	if s.ReducedMotion {
		motion = 'M'
	}
	return fmt.Sprintf("[%c%c%c%c%c] q:%-6s",
		flag(s.ParticlesEnabled, 'z'),
		flag(s.AnimationsEnabled, 'n'),
		flag(s.ScreenShakeEnabled, 'r'),
		flag(s.WeatherEffectsEnabled, 'y'),
		motion,
		s.Quality,
	)
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(width, centerY int) {
	c.write(width, centerY-3, "SERVER SHUTTING DOWN")
	c.write(width, centerY-1,
		"The server is restarting for maintenance.",
		"Please reconnect in a moment.",
	)
	remaining := int(c.state.shutdownTimer) + 1
	c.write(width, centerY+2, fmt.Sprintf("Disconnecting in %d seconds...", remaining))
	c.write(width, centerY+4, "Press Q to disconnect now")
}
