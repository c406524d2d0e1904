package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/qnkhuat/chesstutor/pkg"
	"github.com/qnkhuat/chesstutor/pkg/server"
	"github.com/rs/zerolog"
)

var (
	listenAddress string
	binary        string
	hostKey       string
	logPath       string
	logDebug      bool
)

func init() {
	flag.StringVar(&listenAddress, "listen", server.DefaultAddr, "address of the ssh server")
	flag.StringVar(&binary, "chesstutor", "", "path to the chesstutor binary (default: next to this one)")
	flag.StringVar(&hostKey, "host-key", "", "PEM host key file, generated per run when empty")
	flag.StringVar(&logPath, "log", "", "path to log file (stderr when empty)")
	flag.BoolVar(&logDebug, "debug", false, "enable debug logging")
}

func main() {
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if logPath != "" {
		l, closer, err := pkg.InitLog(logPath, "server", logDebug)
		if err != nil {
			logger.Fatal().Err(err).Msg("open log")
		}
		defer closer.Close()
		logger = l
	}

	if binary == "" {
		self, err := os.Executable()
		if err != nil {
			logger.Fatal().Err(err).Msg("locate chesstutor")
		}
		binary = filepath.Join(filepath.Dir(self), "chesstutor")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := &server.Server{
		Addr:        listenAddress,
		Binary:      binary,
		Args:        flag.Args(), // passed to every chesstutor child
		HostKeyFile: hostKey,
		Log:         logger,
	}
	logger.Info().Str("addr", listenAddress).Str("chesstutor", binary).Msg("server started")
	if err := s.ListenAndServe(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
