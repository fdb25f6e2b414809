package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/pfrederiksen/cricket-results/internal/logger"
	"github.com/pfrederiksen/cricket-results/internal/match"
	"github.com/pfrederiksen/cricket-results/internal/report"
	"github.com/pfrederiksen/cricket-results/internal/scraper"
	"github.com/titanous/json5"
)

const (
	DefaultExcelPath    = "results.xlsx"
	DefaultDataDir      = "teams"
	DefaultTemplatePath = "Template.pdf"
	DefaultSnapshotDir  = "."
	MaxWorkers          = 64
)

// Config holds everything one run needs.
type Config struct {
	SourceURL           string        `validate:"required,url"`
	ExcelPath           string        `validate:"required"`
	DataDir             string        `validate:"required"`
	TemplatePath        string        `validate:"required_unless=DryRun true"`
	SnapshotDir         string        `validate:"required"`
	Timeout             time.Duration `validate:"gt=0"`
	Workers             int           `validate:"min=1,max=64"`
	SimilarityThreshold float64       `validate:"gte=0,lte=1"`
	UserAgent           string
	Selectors           scraper.Selectors
	DryRun              bool
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		SourceURL:           scraper.ResultsURL,
		ExcelPath:           DefaultExcelPath,
		DataDir:             DefaultDataDir,
		TemplatePath:        DefaultTemplatePath,
		SnapshotDir:         DefaultSnapshotDir,
		Timeout:             scraper.Timeout,
		Workers:             report.DefaultWorkers,
		SimilarityThreshold: match.DefaultSimilarity,
		UserAgent:           scraper.UserAgent,
		Selectors:           scraper.DefaultSelectors,
	}
}

// File is the on-disk shape of a config file. Zero values leave the
// default in place; similarity is a pointer so that 0 can switch the
// near-duplicate check off.
type File struct {
	Source      string            `json:"source"`
	Excel       string            `json:"excel"`
	DataDir     string            `json:"dataDir"`
	Template    string            `json:"template"`
	SnapshotDir string            `json:"snapshotDir"`
	Timeout     string            `json:"timeout"`
	Workers     int               `json:"workers"`
	Similarity  *float64          `json:"similarity"`
	UserAgent   string            `json:"userAgent"`
	Selectors   scraper.Selectors `json:"selectors"`
}

// Config converts the file into a partial Config.
func (f File) Config() (Config, error) {
	cfg := Config{
		SourceURL:           f.Source,
		ExcelPath:           f.Excel,
		DataDir:             f.DataDir,
		TemplatePath:        f.Template,
		SnapshotDir:         f.SnapshotDir,
		Workers:             f.Workers,
		UserAgent:           f.UserAgent,
		Selectors:           f.Selectors,
	}
	if f.Similarity != nil {
		cfg.SimilarityThreshold = *f.Similarity
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return Config{}, errors.Wrapf(err, "parsing timeout %q", f.Timeout)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

// Load returns the defaults with the config file at path merged over them.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	file, err := ReadConfig[File](path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %s", path)
	}
	fromFile, err := file.Config()
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %s", path)
	}
	if err := mergo.Merge(&cfg, fromFile, mergo.WithOverride); err != nil {
		return Config{}, errors.Wrapf(err, "merging config %s", path)
	}
	if file.Similarity != nil {
		cfg.SimilarityThreshold = *file.Similarity
	}
	return cfg, nil
}

var validate = validator.New()

// Validate reports every field that fails its constraints.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(err, "validating config")
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}
	return errors.Newf("invalid config: %s", strings.Join(problems, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_unless":
		return fmt.Sprintf("%s is required", fe.Field())
	case "url":
		return fmt.Sprintf("%s %q is not a valid URL", fe.Field(), fe.Value())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s fails %s", fe.Field(), fe.Tag())
	}
}

func splitExt(name string) (string, string) {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}

// ReadConfig reads a json5 config file and merges <name>.local<ext> over it
// when present. It returns os.ErrNotExist when neither file exists.
func ReadConfig[T any](name string) (T, error) {
	var out T
	found := false

	data, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(data) > 0 {
		if err := json5.Unmarshal(data, &out); err != nil {
			return out, errors.Wrapf(err, "parsing %s", name)
		}
		found = true
	}

	prefix, ext := splitExt(name)
	localPath := prefix + ".local" + ext
	local, err := os.ReadFile(localPath)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(local) > 0 {
		var override T
		if err := json5.Unmarshal(local, &override); err != nil {
			return out, errors.Wrapf(err, "parsing %s", localPath)
		}
		if err := mergo.Merge(&out, override, mergo.WithOverride); err != nil {
			return out, err
		}
		logger.Debug("Merged local config overrides", logger.Fields{"local": localPath})
		found = true
	}

	if !found {
		return out, os.ErrNotExist
	}
	return out, nil
}
