// Package config resolves the settings of a chesstutor process. Later
// sources win: defaults, then the JSON file, then the environment, then
// command line flags (applied by the caller).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/qnkhuat/chesstutor/pkg"
	"github.com/qnkhuat/chesstutor/pkg/engine"
	"github.com/qnkhuat/chesstutor/pkg/gui"
	"github.com/qnkhuat/chesstutor/pkg/tutor"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	EnvAPIKey       = "CHESSTUTOR_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvEngine       = "CHESSTUTOR_ENGINE"
)

// Duration reads as a Go duration string ("1s", "500ms") in JSON.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

type Config struct {
	Engine      string   `json:"engine"`
	MoveTime    Duration `json:"movetime"`
	EngineGrace Duration `json:"engine_grace"`
	Skill       int      `json:"skill"`

	Color string `json:"color"`
	Name  string `json:"name"`
	FEN   string `json:"fen"`

	LogPath string `json:"log"`
	Debug   bool   `json:"debug"`
	Plain   bool   `json:"plain"`
	History string `json:"history_file"`

	Theme      string         `json:"theme"`
	Themes     []gui.ThemeHex `json:"themes"`
	ThemesFile string         `json:"themes_file"`

	Tutor Tutor `json:"tutor"`
}

type Tutor struct {
	APIKey  string   `json:"api_key"`
	BaseURL string   `json:"base_url"`
	Model   string   `json:"model"`
	Timeout Duration `json:"timeout"`
	History int      `json:"history"`
}

func Default() Config {
	return Config{
		Engine:      engine.DefaultPath,
		MoveTime:    Duration{engine.DefaultMoveTime},
		EngineGrace: Duration{pkg.DefaultEngineGrace},
		Skill:       engine.MaxSkillLevel,
		Color:       "white",
		LogPath:     filepath.Join(os.TempDir(), "chesstutor.log"),
		Theme:       gui.ThemeDOS.Name,
		Tutor: Tutor{
			BaseURL: tutor.DefaultBaseURL,
			Model:   tutor.DefaultModel,
			Timeout: Duration{tutor.DefaultTimeout},
			History: tutor.HistoryWindow,
		},
	}
}

// DefaultPath is ~/.config/chesstutor/config.json, or "" without a home.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "chesstutor", "config.json")
}

// LoadFile overlays the JSON file at path on c. A missing file is not an
// error when optional is set.
func (c *Config) LoadFile(path string, optional bool) error {
	f, err := os.Open(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// LoadThemes adds the themes listed in ThemesFile to Themes.
func (c *Config) LoadThemes() error {
	if c.ThemesFile == "" {
		return nil
	}
	f, err := os.Open(c.ThemesFile)
	if err != nil {
		return err
	}
	defer f.Close()

	themes, err := gui.ReadThemes(f)
	if err != nil {
		return fmt.Errorf("%s: %w", c.ThemesFile, err)
	}
	c.Themes = append(c.Themes, themes...)
	return nil
}

// ApplyEnv overlays the environment read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if key := getenv(EnvAPIKey); key != "" {
		c.Tutor.APIKey = key
	} else if key := getenv(EnvOpenAIAPIKey); key != "" && c.Tutor.APIKey == "" {
		c.Tutor.APIKey = key
	}
	if path := getenv(EnvEngine); path != "" {
		c.Engine = path
	}
}

func (c Config) Validate() error {
	if _, err := pkg.ParsePlayerColor(c.Color); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Skill < engine.MinSkillLevel || c.Skill > engine.MaxSkillLevel {
		return fmt.Errorf("%w: skill %d outside %d-%d", ErrInvalidConfig, c.Skill, engine.MinSkillLevel, engine.MaxSkillLevel)
	}
	for name, d := range map[string]time.Duration{
		"movetime":      c.MoveTime.Duration,
		"engine_grace":  c.EngineGrace.Duration,
		"tutor.timeout": c.Tutor.Timeout.Duration,
	} {
		if d < 0 {
			return fmt.Errorf("%w: negative %s", ErrInvalidConfig, name)
		}
	}
	if c.Tutor.History < 0 {
		return fmt.Errorf("%w: negative tutor.history", ErrInvalidConfig)
	}
	if _, err := gui.ImportThemes(c.Theme, c.Themes); err != nil {
		return fmt.Errorf("%w: theme %q: %v", ErrInvalidConfig, c.Theme, err)
	}
	if c.FEN != "" {
		if _, err := pkg.GameFromFEN(c.FEN); err != nil {
			return fmt.Errorf("%w: fen: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}

// TutorConfig is the advice client configuration.
func (c Config) TutorConfig() tutor.Config {
	return tutor.Config{
		APIKey:  c.Tutor.APIKey,
		BaseURL: c.Tutor.BaseURL,
		Model:   c.Tutor.Model,
		Timeout: c.Tutor.Timeout.Duration,
		History: c.Tutor.History,
	}
}
