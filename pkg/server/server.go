// Package server hosts chesstutor over ssh: every session gets its own
// chesstutor child process running in a pty.
package server

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/creack/pty"
	petname "github.com/dustinkirkland/golang-petname"
	"github.com/gliderlabs/ssh"
	"github.com/rs/zerolog"
	gossh "golang.org/x/crypto/ssh"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultAddr       = ":2222"
	ServerIdleTimeout = 5 * time.Minute
)

type Server struct {
	Addr        string
	Binary      string   // chesstutor executable run for each session
	Args        []string // extra arguments for Binary
	HostKeyFile string   // generated per run when empty
	IdleTimeout time.Duration
	Log         zerolog.Logger

	sessions int64
}

var anonymous = map[string]bool{"": true, "anonymous": true, "guest": true, "root": true}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Nickname is the name shown for an ssh user; anonymous logins get a
// generated one.
func Nickname(user string) string {
	user = unsafeName.ReplaceAllString(strings.TrimSpace(user), "")
	if anonymous[strings.ToLower(user)] {
		return petname.Generate(2, "-")
	}
	if len(user) > 20 {
		user = user[:20]
	}
	return user
}

func (s *Server) handle(sess ssh.Session) {
	ptyReq, winCh, isPty := sess.Pty()
	if !isPty {
		io.WriteString(sess, "failed to start chesstutor: non-interactive terminals are not supported\n")
		sess.Exit(1)
		return
	}

	nick := Nickname(sess.User())
	log := s.Log.With().Str("nick", nick).Str("remote", sess.RemoteAddr().String()).Logger()
	n := atomic.AddInt64(&s.sessions, 1)
	defer atomic.AddInt64(&s.sessions, -1)
	log.Info().Int64("sessions", n).Msg("session started")

	cmdCtx, cancelCmd := context.WithCancel(sess.Context())
	defer cancelCmd()

	args := append([]string{"--name", nick}, s.Args...)
	cmd := exec.CommandContext(cmdCtx, s.Binary, args...)
	cmd.Env = append(os.Environ(), fmt.Sprintf("TERM=%s", ptyReq.Term))

	f, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(ptyReq.Window.Height), Cols: uint16(ptyReq.Window.Width)})
	if err != nil {
		log.Error().Err(err).Msg("failed to start child")
		io.WriteString(sess, fmt.Sprintf("failed to initialize pseudo-terminal: %s\n", err))
		sess.Exit(1)
		return
	}
	defer f.Close()

	go func() {
		for win := range winCh {
			if err := pty.Setsize(f, &pty.Winsize{Rows: uint16(win.Height), Cols: uint16(win.Width)}); err != nil {
				log.Debug().Err(err).Msg("resize")
			}
		}
	}()

	go func() {
		io.Copy(f, sess)
	}()
	io.Copy(sess, f)

	cancelCmd()
	if err := cmd.Wait(); err != nil {
		log.Debug().Err(err).Msg("child exited")
	}
	log.Info().Msg("session ended")
}

func (s *Server) hostSigner() (gossh.Signer, error) {
	if s.HostKeyFile != "" {
		pem, err := os.ReadFile(s.HostKeyFile)
		if err != nil {
			return nil, err
		}
		return gossh.ParsePrivateKey(pem)
	}
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return gossh.NewSignerFromKey(key)
}

func (s *Server) build() (*ssh.Server, error) {
	signer, err := s.hostSigner()
	if err != nil {
		return nil, fmt.Errorf("host key: %w", err)
	}
	idle := s.IdleTimeout
	if idle == 0 {
		idle = ServerIdleTimeout
	}

	srv := &ssh.Server{
		Addr:        s.Addr,
		IdleTimeout: idle,
		Handler:     s.handle,
		PtyCallback: func(ctx ssh.Context, pty ssh.Pty) bool {
			return true
		},
		PublicKeyHandler: func(ctx ssh.Context, key ssh.PublicKey) bool {
			return true
		},
		PasswordHandler: func(ctx ssh.Context, password string) bool {
			return true
		},
		KeyboardInteractiveHandler: func(ctx ssh.Context, challenger gossh.KeyboardInteractiveChallenge) bool {
			return true
		},
	}
	srv.AddHostKey(signer)
	return srv, nil
}

// Serve accepts sessions on l until ctx is done.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv, err := s.build()
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.Log.Info().Str("addr", l.Addr().String()).Msg("listening")
		if err := srv.Serve(l); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return srv.Close()
	})
	return g.Wait()
}

func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := s.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

// Sessions is the number of sessions currently running.
func (s *Server) Sessions() int {
	return int(atomic.LoadInt64(&s.sessions))
}
