package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/fatih/color"
	"github.com/qnkhuat/chesstutor/pkg"
	"github.com/qnkhuat/chesstutor/pkg/config"
	"github.com/qnkhuat/chesstutor/pkg/console"
	"github.com/qnkhuat/chesstutor/pkg/engine"
	"github.com/qnkhuat/chesstutor/pkg/gui"
	"github.com/qnkhuat/chesstutor/pkg/tutor"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

var (
	configPath  string
	enginePath  string
	moveTime    time.Duration
	engineGrace time.Duration
	skill       int
	userColor   string
	name        string
	fen         string
	logPath     string
	debug       bool
	plain       bool
	themeName   string
	model       string
	baseURL     string
	historyFile string
	themesFile  string
)

func init() {
	flag.StringVar(&configPath, "config", "", "path to a JSON config file (default "+config.DefaultPath()+")")
	flag.StringVar(&enginePath, "engine", engine.DefaultPath, "UCI engine executable")
	flag.DurationVar(&moveTime, "movetime", engine.DefaultMoveTime, "engine thinking time per move")
	flag.DurationVar(&engineGrace, "engine-grace", pkg.DefaultEngineGrace, "extra wait for the engine before giving up on a search")
	flag.IntVar(&skill, "skill", engine.MaxSkillLevel, "engine skill level (0-20)")
	flag.StringVar(&userColor, "color", "white", "side you play: white or black")
	flag.StringVar(&name, "name", "", "session name (generated when empty)")
	flag.StringVar(&fen, "fen", "", "start from this position")
	flag.StringVar(&logPath, "log", "", "path to log file")
	flag.BoolVar(&debug, "debug", false, "enable debug logging")
	flag.BoolVar(&plain, "plain", false, "line mode instead of the full screen board")
	flag.StringVar(&themeName, "theme", "", "board theme")
	flag.StringVar(&themesFile, "themes", "", "JSON file with extra themes")
	flag.StringVar(&model, "model", "", "tutor model")
	flag.StringVar(&baseURL, "base-url", "", "OpenAI compatible endpoint of the tutor")
	flag.StringVar(&historyFile, "history", "", "line mode command history file")
}

// applyFlags copies the flags set on the command line over cfg.
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "engine":
			cfg.Engine = enginePath
		case "movetime":
			cfg.MoveTime = config.Duration{Duration: moveTime}
		case "engine-grace":
			cfg.EngineGrace = config.Duration{Duration: engineGrace}
		case "skill":
			cfg.Skill = skill
		case "color":
			cfg.Color = userColor
		case "name":
			cfg.Name = name
		case "fen":
			cfg.FEN = fen
		case "log":
			cfg.LogPath = logPath
		case "debug":
			cfg.Debug = debug
		case "plain":
			cfg.Plain = plain
		case "theme":
			cfg.Theme = themeName
		case "themes":
			cfg.ThemesFile = themesFile
		case "model":
			cfg.Tutor.Model = model
		case "base-url":
			cfg.Tutor.BaseURL = baseURL
		case "history":
			cfg.History = historyFile
		}
	})
}

func loadConfig() (config.Config, error) {
	cfg := config.Default()
	path, optional := configPath, false
	if path == "" {
		path, optional = config.DefaultPath(), true
	}
	if path != "" {
		if err := cfg.LoadFile(path, optional); err != nil {
			return cfg, err
		}
	}
	cfg.ApplyEnv(os.Getenv)
	applyFlags(&cfg)
	if err := cfg.LoadThemes(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func fatal(err error) {
	color.New(color.FgRed).Fprintf(os.Stderr, "chesstutor: %v\n", err)
	os.Exit(1)
}

func startEngine(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*engine.Engine, error) {
	e, err := engine.Start(ctx, cfg.Engine, engine.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := e.Init(); err != nil {
		e.Close()
		return nil, err
	}
	if err := e.SetSkill(cfg.Skill); err != nil {
		logger.Warn().Err(err).Msg("skill level not set")
	}
	return e, nil
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fatal(err)
	}

	logger, closer, err := pkg.InitLog(cfg.LogPath, "chesstutor", cfg.Debug)
	if err != nil {
		fatal(err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Name == "" {
		cfg.Name = petname.Generate(2, "-")
	}
	user, _ := pkg.ParsePlayerColor(cfg.Color)
	theme, _ := gui.ImportThemes(cfg.Theme, cfg.Themes)

	opts := pkg.Options{
		Name:        cfg.Name,
		User:        user,
		FEN:         cfg.FEN,
		Advisor:     tutor.New(cfg.TutorConfig(), logger),
		Logger:      logger,
		MoveTime:    cfg.MoveTime.Duration,
		EngineGrace: cfg.EngineGrace.Duration,
	}

	eng, err := startEngine(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Str("engine", cfg.Engine).Msg("engine unavailable, running without it")
	} else {
		defer eng.Close()
		opts.Engine = eng
	}

	tui := !cfg.Plain && term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	logger.Info().Str("name", cfg.Name).Bool("tui", tui).Str("color", user.String()).Msg("starting")

	var (
		session  *pkg.Session
		frontend func(ctx context.Context) error
	)
	if tui {
		app := tview.NewApplication()
		view := gui.New(app, theme)
		opts.Renderer = view
		if session, err = pkg.NewSession(opts); err != nil {
			fatal(err)
		}
		view.Bind(session)
		frontend = func(ctx context.Context) error {
			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return view.Serve(ctx)
			})
			g.Go(func() error {
				go func() {
					<-ctx.Done()
					app.Stop()
				}()
				defer view.Close()
				return app.SetRoot(view.Root(), true).EnableMouse(true).Run()
			})
			return g.Wait()
		}
	} else {
		history := cfg.History
		if history == "" {
			history = filepath.Join(os.TempDir(), "chesstutor_history")
		}
		con, err := console.New(history)
		if err != nil {
			fatal(err)
		}
		opts.Renderer = con
		if session, err = pkg.NewSession(opts); err != nil {
			fatal(err)
		}
		frontend = func(ctx context.Context) error {
			return con.Run(ctx, session.Submit)
		}
	}
	defer session.Close()

	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return session.Run(ctx)
	})
	g.Go(func() error {
		defer cancel()
		return frontend(ctx)
	})
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("exited with error")
		fmt.Fprintln(os.Stderr, err)
	}
	logger.Info().Msg("bye")
}
