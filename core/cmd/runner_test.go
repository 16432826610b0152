package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/shopbot/core/config"
	coretelegram "github.com/m3rciful/shopbot/core/telegram"
)

type fakeCarrier struct{ cfg *coreconfig.Config }

func (f fakeCarrier) CoreConfig() *coreconfig.Config { return f.cfg }

type fakeApp struct {
	services []BackgroundService
	closed   bool
}

func (a *fakeApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{}, nil
}

func (a *fakeApp) BackgroundServices() []BackgroundService { return a.services }

func (a *fakeApp) Close() error {
	a.closed = true
	return nil
}

func TestRunLoadsEnvFileAndStopsServices(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("SHOPBOT_TEST_CONFIG=from-env-file\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SHOPBOT_TEST_CONFIG") })

	var loadedPath string
	stopped := make(chan struct{})
	app := &fakeApp{services: []BackgroundService{
		func(ctx context.Context) error {
			<-ctx.Done()
			close(stopped)
			return ctx.Err()
		},
	}}

	err := Run(Options{
		ConfigEnvVar: "SHOPBOT_TEST_CONFIG",
		EnvFiles:     []string{filepath.Join(dir, "missing.env"), envPath},
		LoadConfig: func(path string) (ConfigCarrier, error) {
			loadedPath = path
			return fakeCarrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap:      func(ConfigCarrier) (TelegramApp, error) { return app, nil },
		ShutdownLogger: func() error { return nil },
		RunTelegram: func(ctx context.Context, _ coretelegram.RunOptions) error {
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "from-env-file", loadedPath)
	assert.True(t, app.closed)
	<-stopped
}

func TestRunReportsServiceFailure(t *testing.T) {
	boom := errors.New("listen failed")
	app := &fakeApp{services: []BackgroundService{
		func(context.Context) error { return boom },
	}}
	err := Run(Options{
		DefaultConfigPath: "config.yaml",
		EnvFiles:          []string{},
		LoadConfig: func(string) (ConfigCarrier, error) {
			return fakeCarrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap:      func(ConfigCarrier) (TelegramApp, error) { return app, nil },
		ShutdownLogger: func() error { return nil },
		RunTelegram: func(ctx context.Context, _ coretelegram.RunOptions) error {
			<-ctx.Done()
			return nil
		},
	})
	assert.ErrorIs(t, err, boom)
}

func TestRunRequiresLoaders(t *testing.T) {
	assert.Error(t, Run(Options{}))
	assert.Error(t, Run(Options{LoadConfig: func(string) (ConfigCarrier, error) { return nil, nil }}))
}
