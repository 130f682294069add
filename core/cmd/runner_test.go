package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	coreconfig "github.com/m3rciful/twinbots/core/config"
	coretelegram "github.com/m3rciful/twinbots/core/telegram"
)

type carrier struct{ cfg *coreconfig.Config }

func (c carrier) CoreConfig() *coreconfig.Config { return c.cfg }

type app struct{ opts coretelegram.RunOptions }

func (a app) TelegramRunOptions() (coretelegram.RunOptions, error) { return a.opts, nil }

func TestRunWiresLifecycle(t *testing.T) {
	var (
		stopped  bool
		shutdown bool
	)
	cfg := &coreconfig.Config{}
	err := Run(Options{
		DefaultConfigPath: "unused.yaml",
		EnvFiles:          []string{filepath.Join(t.TempDir(), "missing.env")},
		LoadConfig: func(path string) (ConfigCarrier, error) {
			if path != "unused.yaml" {
				t.Fatalf("path = %q", path)
			}
			return carrier{cfg: cfg}, nil
		},
		Bootstrap: func(context.Context, ConfigCarrier) (TelegramApp, error) {
			return app{opts: coretelegram.RunOptions{
				Config: cfg,
				OnStop: func(context.Context, coretelegram.Runtime) error {
					stopped = true
					return nil
				},
			}}, nil
		},
		ShutdownLogger: func() error {
			shutdown = true
			return nil
		},
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			if opts.Config != cfg {
				t.Fatal("run options lost the config")
			}
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !stopped || !shutdown {
		t.Fatalf("stopped=%v shutdown=%v", stopped, shutdown)
	}
}

func TestRunPropagatesBootstrapError(t *testing.T) {
	boom := errors.New("boom")
	err := Run(Options{
		DefaultConfigPath: "x.yaml",
		EnvFiles:          []string{filepath.Join(t.TempDir(), "missing.env")},
		LoadConfig: func(string) (ConfigCarrier, error) {
			return carrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(context.Context, ConfigCarrier) (TelegramApp, error) {
			return nil, boom
		},
		ShutdownLogger: func() error { return nil },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestRunRequiresConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	err := Run(Options{
		EnvFiles:   []string{filepath.Join(t.TempDir(), "missing.env")},
		LoadConfig: func(string) (ConfigCarrier, error) { return nil, nil },
		Bootstrap:  func(context.Context, ConfigCarrier) (TelegramApp, error) { return nil, nil },
	})
	if err == nil {
		t.Fatal("expected error without a config path")
	}
}

func TestLoadEnvFilesKeepsProcessEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TWINBOTS_A=file\nTWINBOTS_B=file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TWINBOTS_A", "process")
	t.Setenv("TWINBOTS_B", "")
	os.Unsetenv("TWINBOTS_B")

	if err := loadEnvFiles([]string{path}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("TWINBOTS_A"); got != "process" {
		t.Fatalf("TWINBOTS_A = %q, process env must win", got)
	}
	if got := os.Getenv("TWINBOTS_B"); got != "file" {
		t.Fatalf("TWINBOTS_B = %q", got)
	}
}
