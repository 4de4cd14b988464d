package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Versifine/stride/internal/camera"
	"github.com/Versifine/stride/internal/driver"
	"github.com/Versifine/stride/internal/keybind"
	"github.com/Versifine/stride/internal/motion"
	"github.com/Versifine/stride/internal/scene"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/term"
)

const (
	defaultMovePulse = 180 * time.Millisecond
	orbitStep        = 5.0

	keyCtrlC = 3
	keyEsc   = 27
)

// Console is the terminal input layer. Terminals report key presses but not
// releases, so a key counts as held for movePulse after its last press.
type Console struct {
	in        io.Reader
	out       io.Writer
	quit      context.CancelFunc
	movePulse time.Duration
	now       func() time.Time

	mu          sync.Mutex
	heldUntil   map[keybind.KeyID]time.Time
	pending     []driver.Command
	commandMode bool
	commandBuf  []rune

	outMu       sync.Mutex
	statusWidth int

	restoreOnce sync.Once
	restore     func()
}

func NewConsole(in io.Reader, out io.Writer, quit context.CancelFunc) *Console {
	return &Console{
		in:        in,
		out:       out,
		quit:      quit,
		movePulse: defaultMovePulse,
		now:       time.Now,
		heldUntil: make(map[keybind.KeyID]time.Time),
	}
}

// Start reads keys until ctx is done or input ends. When in is a terminal it
// is switched to raw mode for the duration.
func (c *Console) Start(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("console is nil")
	}
	if c.in == nil {
		return fmt.Errorf("console input is nil")
	}

	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("set terminal raw mode: %w", err)
		}
		c.mu.Lock()
		c.restore = func() {
			_ = term.Restore(fd, oldState)
			c.print("\r\n")
		}
		c.mu.Unlock()
		defer c.Close()
	}

	c.print("[stride] W/A/S/D move, Space jump, arrows orbit, : command, q quit\r\n")

	reader := bufio.NewReader(c.in)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		b, err := reader.ReadByte()
		if err != nil {
			if ctx.Err() != nil || err == io.EOF {
				return nil
			}
			return fmt.Errorf("read console input: %w", err)
		}
		c.handleKey(reader, b)
	}
}

// Close restores the terminal. The read loop may still be blocked on input
// afterwards; the process is expected to exit.
func (c *Console) Close() {
	c.mu.Lock()
	restore := c.restore
	c.mu.Unlock()
	if restore == nil {
		return
	}
	c.restoreOnce.Do(restore)
}

// Poll hands the held keys and queued commands to the tick loop.
func (c *Console) Poll() driver.Input {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	keys := make(motion.KeySet, len(c.heldUntil))
	for k, until := range c.heldUntil {
		if !now.Before(until) {
			delete(c.heldUntil, k)
			continue
		}
		keys[k] = struct{}{}
	}
	cmds := c.pending
	c.pending = nil
	return driver.Input{Keys: keys, Commands: cmds}
}

// Render draws the status line for a finished tick.
func (c *Console) Render(frame driver.Frame) {
	if c.isCommandMode() {
		return
	}

	held := make([]string, 0, len(frame.Held))
	for _, a := range frame.Held {
		held = append(held, a.String())
	}
	pos := "none"
	if frame.Player != nil {
		p := frame.Player.Position
		pos = fmt.Sprintf("X:%.2f Y:%.2f Z:%.2f", p.X(), p.Y(), p.Z())
	}
	eye := frame.Camera.Eye
	line := fmt.Sprintf("[keys:%s | player %s | cam:%s eye:(%.2f,%.2f,%.2f)]",
		strings.Join(held, ","),
		pos,
		frame.Mode,
		eye.X(), eye.Y(), eye.Z(),
	)

	c.outMu.Lock()
	defer c.outMu.Unlock()
	padding := ""
	if c.statusWidth > len(line) {
		padding = strings.Repeat(" ", c.statusWidth-len(line))
	}
	fmt.Fprintf(c.out, "\r%s%s", line, padding)
	if len(line) > c.statusWidth {
		c.statusWidth = len(line)
	}
}

func (c *Console) handleKey(reader *bufio.Reader, b byte) {
	if c.isCommandMode() {
		c.handleCommandByte(b)
		return
	}

	switch b {
	case ':':
		c.enterCommandMode()
		return
	case 'q', 'Q', keyCtrlC:
		c.requestQuit()
		return
	case keyEsc: // ESC + arrow sequence
		next, err := reader.ReadByte()
		if err != nil || next != '[' {
			return
		}
		arrow, err := reader.ReadByte()
		if err != nil {
			return
		}
		switch arrow {
		case 'D':
			c.enqueue(orbit(-orbitStep))
		case 'C':
			c.enqueue(orbit(orbitStep))
		}
		return
	}

	name := strings.ToLower(string(rune(b)))
	key, err := keybind.ParseKey(name)
	if err != nil {
		return
	}
	c.press(key)
}

func (c *Console) press(key keybind.KeyID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.heldUntil[key] = c.now().Add(c.movePulse)
}

func (c *Console) enqueue(cmd driver.Command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, cmd)
}

func (c *Console) requestQuit() {
	slog.Debug("Console quit requested")
	if c.quit != nil {
		c.quit()
	}
}

func (c *Console) enterCommandMode() {
	c.mu.Lock()
	c.commandMode = true
	c.commandBuf = c.commandBuf[:0]
	c.mu.Unlock()
	c.print("\r\n:")
}

func (c *Console) handleCommandByte(b byte) {
	switch b {
	case 13, 10: // Enter
		c.mu.Lock()
		cmd := strings.TrimSpace(string(c.commandBuf))
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()

		c.print("\r\n")
		if cmd != "" {
			c.executeCommand(cmd)
		}
		return
	case keyEsc:
		c.mu.Lock()
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()
		c.print("\r\n[stride] command cancelled\r\n")
		return
	case 8, 127: // Backspace
		c.mu.Lock()
		if len(c.commandBuf) > 0 {
			c.commandBuf = c.commandBuf[:len(c.commandBuf)-1]
		}
		buf := string(c.commandBuf)
		c.mu.Unlock()
		c.print(fmt.Sprintf("\r:%s \r:%s", buf, buf))
		return
	default:
		if b < 32 || b > 126 {
			return
		}
		c.mu.Lock()
		c.commandBuf = append(c.commandBuf, rune(b))
		buf := string(c.commandBuf)
		c.mu.Unlock()
		c.print(fmt.Sprintf("\r:%s", buf))
	}
}

func (c *Console) executeCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "help":
		c.printHelp()
	case "state":
		c.enqueue(func(w *scene.World, rig *camera.Rig) {
			s := rig.State()
			c.print(fmt.Sprintf("[stride] %s\r\n", w.Snapshot().String()))
			c.print(fmt.Sprintf("[stride] camera %s eye=(%.3f,%.3f,%.3f) target=(%.3f,%.3f,%.3f)\r\n",
				rig.Mode(),
				s.Eye.X(), s.Eye.Y(), s.Eye.Z(),
				s.Target.X(), s.Target.Y(), s.Target.Z(),
			))
		})
	case "tp":
		if len(parts) != 4 {
			c.print("[stride] usage: :tp <x> <y> <z>\r\n")
			return
		}
		x, err1 := strconv.ParseFloat(parts[1], 64)
		y, err2 := strconv.ParseFloat(parts[2], 64)
		z, err3 := strconv.ParseFloat(parts[3], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			c.print("[stride] invalid tp args\r\n")
			return
		}
		c.enqueue(teleport(mgl64.Vec3{x, y, z}))
	case "main":
		if len(parts) != 2 {
			c.print("[stride] usage: :main <id>\r\n")
			return
		}
		id, err := strconv.Atoi(parts[1])
		if err != nil {
			c.print("[stride] invalid player id\r\n")
			return
		}
		c.enqueue(func(w *scene.World, _ *camera.Rig) { w.SetMain(id) })
	case "unmain":
		c.enqueue(func(w *scene.World, _ *camera.Rig) { w.ClearMain() })
	case "quit":
		c.requestQuit()
	default:
		c.print(fmt.Sprintf("[stride] unknown command: %s\r\n", parts[0]))
	}
}

func (c *Console) printHelp() {
	c.print("[stride] keys:\r\n" +
		"  W/A/S/D: move (held ~180ms per press)\r\n" +
		"  Space: jump\r\n" +
		"  Arrow Left/Right: orbit camera +/-5\r\n" +
		"  q / Ctrl+C: quit\r\n" +
		"  : enter command mode\r\n" +
		"[stride] commands:\r\n" +
		"  :tp <x> <y> <z>\r\n" +
		"  :main <id>\r\n" +
		"  :unmain\r\n" +
		"  :state\r\n" +
		"  :help\r\n" +
		"  :quit\r\n")
}

func (c *Console) print(s string) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprint(c.out, s)
}

func (c *Console) isCommandMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandMode
}

func orbit(degrees float64) driver.Command {
	return func(_ *scene.World, rig *camera.Rig) {
		rig.Orbit(degrees)
	}
}

func teleport(pos mgl64.Vec3) driver.Command {
	return func(w *scene.World, _ *camera.Rig) {
		p, ok := w.Main()
		if !ok {
			slog.Debug("Teleport ignored, no main player")
			return
		}
		p.Position = pos
	}
}
