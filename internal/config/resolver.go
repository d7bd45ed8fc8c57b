// Package config resolves Dossier configuration from file, environment,
// and CLI flags, recording where each value came from.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hurttlocker/dossier/internal/score"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

type ResolveOptions struct {
	ConfigPath string
	CLIDBPath  string
	CLIModel   string
}

type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	DBPath           ResolvedValue `json:"db_path"`
	ModelVersion     ResolvedValue `json:"model_version"`
	MinEvidence      ResolvedValue `json:"min_non_membership_evidence"`
	MinConfidence    ResolvedValue `json:"min_claim_confidence"`
	DisplayThreshold ResolvedValue `json:"display_threshold"`
	MessageSample    ResolvedValue `json:"message_sample"`
	AffiliationScan  ResolvedValue `json:"affiliation_scan"`
}

type fileConfig struct {
	DBPath       string `yaml:"db_path"`
	ModelVersion string `yaml:"model_version"`
	Gating       struct {
		MinNonMembershipEvidence *int     `yaml:"min_non_membership_evidence"`
		MinClaimConfidence       *float64 `yaml:"min_claim_confidence"`
	} `yaml:"gating"`
	DisplayThreshold *float64 `yaml:"display_threshold"`
	Sample           struct {
		Messages        *int `yaml:"messages"`
		AffiliationScan *int `yaml:"affiliation_scan"`
	} `yaml:"sample"`
}

func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".dossier", "config.yaml")
}

func ResolveConfig(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	out := ResolvedConfig{ConfigPath: path}

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}

	if cfg != nil {
		apply(&out.DBPath, cfg.DBPath, SourceConfig, path)
		apply(&out.ModelVersion, cfg.ModelVersion, SourceConfig, path)
		applyInt(&out.MinEvidence, cfg.Gating.MinNonMembershipEvidence, SourceConfig, path)
		applyFloat(&out.MinConfidence, cfg.Gating.MinClaimConfidence, SourceConfig, path)
		applyFloat(&out.DisplayThreshold, cfg.DisplayThreshold, SourceConfig, path)
		applyInt(&out.MessageSample, cfg.Sample.Messages, SourceConfig, path)
		applyInt(&out.AffiliationScan, cfg.Sample.AffiliationScan, SourceConfig, path)
	}

	applyEnv(&out.DBPath, "DOSSIER_DB")
	applyEnv(&out.DBPath, "DOSSIER_DB_PATH")
	applyEnv(&out.ModelVersion, "DOSSIER_MODEL_VERSION")
	applyEnv(&out.MinEvidence, "DOSSIER_MIN_EVIDENCE")
	applyEnv(&out.MinConfidence, "DOSSIER_MIN_CONFIDENCE")
	applyEnv(&out.DisplayThreshold, "DOSSIER_DISPLAY_THRESHOLD")

	apply(&out.DBPath, opts.CLIDBPath, SourceCLI, "--db")
	apply(&out.ModelVersion, opts.CLIModel, SourceCLI, "--model")

	if out.DBPath.Value != "" {
		out.DBPath.Value = expandUserPath(out.DBPath.Value)
	}

	return out, nil
}

// EngineConfig builds the engine configuration, filling anything
// unresolved from the built-in defaults.
func (r ResolvedConfig) EngineConfig() (score.Config, error) {
	cfg := score.DefaultConfig()

	if v := strings.TrimSpace(r.ModelVersion.Value); v != "" {
		cfg.ModelVersion = v
	}
	if v := strings.TrimSpace(r.MinEvidence.Value); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("invalid min_non_membership_evidence %q (from %s)", v, r.MinEvidence.From)
		}
		cfg.Gating.MinNonMembershipEvidence = n
	}
	if v := strings.TrimSpace(r.MinConfidence.Value); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 1 {
			return cfg, fmt.Errorf("invalid min_claim_confidence %q (from %s)", v, r.MinConfidence.From)
		}
		cfg.Gating.MinClaimConfidence = f
	}
	if v := strings.TrimSpace(r.MessageSample.Value); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("invalid sample.messages %q (from %s)", v, r.MessageSample.From)
		}
		cfg.MessageSampleCap = n
	}
	if v := strings.TrimSpace(r.AffiliationScan.Value); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("invalid sample.affiliation_scan %q (from %s)", v, r.AffiliationScan.From)
		}
		cfg.AffiliationScanCap = n
	}

	return cfg, nil
}

// EffectiveDisplayThreshold returns the display threshold, defaulting
// to 0.5.
func (r ResolvedConfig) EffectiveDisplayThreshold() (float64, error) {
	v := strings.TrimSpace(r.DisplayThreshold.Value)
	if v == "" {
		return 0.5, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > 1 {
		return 0, fmt.Errorf("invalid display_threshold %q (from %s)", v, r.DisplayThreshold.From)
	}
	return f, nil
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

func applyInt(dst *ResolvedValue, raw *int, source ValueSource, from string) {
	if raw == nil {
		return
	}
	*dst = ResolvedValue{Value: strconv.Itoa(*raw), Source: source, From: from}
}

func applyFloat(dst *ResolvedValue, raw *float64, source ValueSource, from string) {
	if raw == nil {
		return
	}
	*dst = ResolvedValue{Value: strconv.FormatFloat(*raw, 'f', -1, 64), Source: source, From: from}
}

func applyEnv(dst *ResolvedValue, envKey string) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		*dst = ResolvedValue{Value: v, Source: SourceEnv, From: envKey}
	}
}

func loadConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
