// Package engine drives a UCI chess engine running as a child process.
//
// Commands are written to the engine's stdin as text lines; everything the
// engine prints is delivered on Lines. Every search started with Analyze gets
// a generation number, and each output line is tagged with the generation of
// the search that was outstanding when it was read, so a caller can tell a
// late bestmove of an abandoned search from the answer it is waiting for.
package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPath     = "stockfish"
	DefaultMoveTime = 1000 * time.Millisecond
	LineQueueSize   = 64
	MinSkillLevel   = 0
	MaxSkillLevel   = 20
)

var (
	ErrClosed       = errors.New("engine: closed")
	ErrInvalidSkill = errors.New("engine: skill level out of range")
)

// Line is one line of engine output. Gen is 0 when no search was outstanding.
type Line struct {
	Gen  uint64
	Text string
}

type Engine struct {
	in    io.WriteCloser
	out   io.Reader
	cmd   *exec.Cmd
	lines chan Line
	done  chan struct{}
	log   zerolog.Logger

	// wmu orders writes to in. It is taken before mu, never after, and
	// readLoop never takes it.
	wmu sync.Mutex

	mu      sync.Mutex
	queue   []Line // read but not yet delivered on lines
	ready   chan struct{}
	eof     bool
	closed  bool
	name    string
	nextGen uint64
	pending []uint64 // searches waiting for their bestmove, oldest first

	group errgroup.Group
}

type Option func(*Engine)

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = logger
	}
}

// Start spawns the engine binary at path and starts reading its output.
func Start(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	if path == "" {
		path = DefaultPath
	}
	cmd := exec.CommandContext(ctx, path)
	in, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("engine: stdin pipe: %w", err)
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("engine: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("engine: start %s: %w", path, err)
	}

	e := New(out, in, opts...)
	e.cmd = cmd
	e.log.Info().Str("path", path).Int("pid", cmd.Process.Pid).Msg("engine started")
	return e, nil
}

// New wraps an engine reachable through out (its stdout) and in (its stdin).
func New(out io.Reader, in io.WriteCloser, opts ...Option) *Engine {
	e := &Engine{
		in:    in,
		out:   out,
		lines: make(chan Line, LineQueueSize),
		done:  make(chan struct{}),
		ready: make(chan struct{}, 1),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.group.Go(e.readLoop)
	e.group.Go(e.deliverLoop)
	return e
}

// Lines is closed once the engine's output reaches EOF.
func (e *Engine) Lines() <-chan Line {
	return e.lines
}

// Name is the engine's "id name", known after Init.
func (e *Engine) Name() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.name
}

// Init performs the uci/isready handshake. Replies arrive on Lines.
func (e *Engine) Init() error {
	return e.send(uci.CmdUCI, uci.CmdIsReady)
}

func (e *Engine) NewGame() error {
	return e.send(uci.CmdUCINewGame, uci.CmdIsReady)
}

func (e *Engine) SetSkill(level int) error {
	if level < MinSkillLevel || level > MaxSkillLevel {
		return fmt.Errorf("%w: %d", ErrInvalidSkill, level)
	}
	return e.send(uci.CmdSetOption{Name: "Skill Level", Value: strconv.Itoa(level)})
}

// Analyze starts a time bounded search of pos and returns its generation.
// The result is the next bestmove line carrying that generation.
func (e *Engine) Analyze(pos *chess.Position, movetime time.Duration) (uint64, error) {
	if movetime <= 0 {
		movetime = DefaultMoveTime
	}

	e.wmu.Lock()
	defer e.wmu.Unlock()

	// The search is pending before "go" is written, so its first line is
	// already attributed to it.
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return 0, ErrClosed
	}
	e.nextGen++
	gen := e.nextGen
	e.pending = append(e.pending, gen)
	e.mu.Unlock()

	err := e.write(uci.CmdIsReady, uci.CmdPosition{Position: pos}, uci.CmdGo{MoveTime: movetime})
	if err != nil {
		e.retire(gen)
		return 0, err
	}
	return gen, nil
}

func (e *Engine) retire(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, g := range e.pending {
		if g == gen {
			e.pending = append(e.pending[:i:i], e.pending[i+1:]...)
			return
		}
	}
}

func (e *Engine) Stop() error {
	return e.send(uci.CmdStop)
}

// Pending reports how many searches still wait for a bestmove.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// Close asks the engine to quit and waits for its output and process to end.
func (e *Engine) Close() error {
	e.wmu.Lock()
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		e.wmu.Unlock()
		return nil
	}
	e.closed = true
	close(e.done)
	e.mu.Unlock()
	err := e.write(uci.CmdQuit)
	e.wmu.Unlock()

	if cerr := e.in.Close(); err == nil {
		err = cerr
	}
	if rerr := e.group.Wait(); err == nil {
		err = rerr
	}
	if e.cmd != nil {
		if werr := e.cmd.Wait(); err == nil {
			err = werr
		}
	}
	return err
}

func (e *Engine) send(cmds ...fmt.Stringer) error {
	e.wmu.Lock()
	defer e.wmu.Unlock()

	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return e.write(cmds...)
}

// write must be called with wmu held.
func (e *Engine) write(cmds ...fmt.Stringer) error {
	for _, cmd := range cmds {
		text := cmd.String()
		e.log.Debug().Str("cmd", text).Msg(">>")
		if _, err := io.WriteString(e.in, text+"\n"); err != nil {
			return fmt.Errorf("engine: write %q: %w", text, err)
		}
	}
	return nil
}

// readLoop never blocks on the consumer: lines are queued for deliverLoop,
// so the engine can always write its output.
func (e *Engine) readLoop() error {
	defer e.push(Line{}, true)

	scanner := bufio.NewScanner(e.out)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		e.log.Debug().Str("line", text).Msg("<<")
		e.push(Line{Text: text}, false)
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.ErrClosedPipe) {
		e.log.Error().Err(err).Msg("engine output failed")
		return fmt.Errorf("engine: read: %w", err)
	}
	return nil
}

// push tags line with its generation and queues it. With eof set the
// queue is marked finished instead.
func (e *Engine) push(line Line, eof bool) {
	e.mu.Lock()
	if eof {
		e.eof = true
	} else {
		line.Gen = e.attributeL(line.Text)
		e.queue = append(e.queue, line)
	}
	e.mu.Unlock()

	select {
	case e.ready <- struct{}{}:
	default:
	}
}

func (e *Engine) deliverLoop() error {
	defer close(e.lines)

	for {
		e.mu.Lock()
		batch, eof := e.queue, e.eof
		e.queue = nil
		e.mu.Unlock()

		if len(batch) == 0 {
			if eof {
				return nil
			}
			<-e.ready
			continue
		}
		for _, line := range batch {
			select {
			case e.lines <- line:
			case <-e.done:
				// Nobody listens after Close; keep draining until EOF.
			}
		}
	}
}

// attributeL returns the generation text belongs to. A bestmove retires it.
func (e *Engine) attributeL(text string) uint64 {
	if name := strings.TrimPrefix(text, "id name "); name != text {
		e.name = name
	}
	if len(e.pending) == 0 {
		return 0
	}
	gen := e.pending[0]
	if strings.HasPrefix(text, "bestmove") {
		e.pending = e.pending[1:]
	}
	return gen
}
