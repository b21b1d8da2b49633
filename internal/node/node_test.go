package node

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaianet-deploy/internal/config"
	"gaianet-deploy/internal/download"
	"gaianet-deploy/internal/execrun"
	"gaianet-deploy/internal/system"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPort(t *testing.T) {
	assert.Equal(t, "8091", Port("809", 1))
	assert.Equal(t, "8094", Port("809", 4))
	assert.Equal(t, "9092", Port("909", 2))
}

func TestSelectConfigURL(t *testing.T) {
	urls := config.URLs{
		LaptopGPU:  "https://configs/laptop-gpu.json",
		Fallback:   "https://configs/fallback.json",
		DesktopGPU: "https://configs/desktop-gpu.json",
	}

	tests := []struct {
		name  string
		class system.HostClass
		gpu   bool
		want  string
	}{
		{"vps", system.HostVPS, false, urls.Fallback},
		{"vps ignores gpu", system.HostVPS, true, urls.Fallback},
		{"laptop with gpu", system.HostLaptop, true, urls.LaptopGPU},
		{"laptop without gpu", system.HostLaptop, false, urls.Fallback},
		{"desktop with gpu", system.HostDesktop, true, urls.DesktopGPU},
		{"desktop without gpu", system.HostDesktop, false, urls.Fallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectConfigURL(urls, tt.class, tt.gpu))
		})
	}
}

func installerCfg(baseURL string) config.Installer {
	return config.Installer{
		Version:     "0.4.20",
		CUDAVersion: "0.4.21",
		BaseURL:     baseURL,
	}
}

// scriptServer serves a stand-in install.sh and records requested paths.
func scriptServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte("#!/bin/sh\nexit 0\n"))
	}))
	t.Cleanup(srv.Close)
	return srv, &paths
}

func TestInstallUsesCUDATagWhenToolchainPresent(t *testing.T) {
	srv, paths := scriptServer(t)
	fake := &execrun.Fake{
		Outputs: map[string]string{
			"nvcc": "Cuda compilation tools, release 12.8, V12.8.89",
		},
	}
	dir := t.TempDir()
	// stand-in installer output
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0o755))
	require.NoError(t, os.WriteFile(BinaryPath(dir), []byte("#!/bin/sh\n"), 0o755))

	inst := NewInstaller(fake, download.NewClient(), system.NewDetector(fake, discard()), installerCfg(srv.URL), discard())
	tag, err := inst.Install(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "0.4.21", tag)

	require.Len(t, *paths, 1)
	assert.Equal(t, "/0.4.21/install.sh", (*paths)[0])
	assert.True(t, fake.Called(filepath.Join(dir, "install.sh")+" --base "+dir+" --ggmlcuda 12"))
}

func TestInstallFallsBackWithoutCUDA(t *testing.T) {
	srv, paths := scriptServer(t)
	fake := &execrun.Fake{Missing: []string{"nvcc"}}
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0o755))
	require.NoError(t, os.WriteFile(BinaryPath(dir), []byte("#!/bin/sh\n"), 0o755))

	inst := NewInstaller(fake, download.NewClient(), system.NewDetector(fake, discard()), installerCfg(srv.URL), discard())
	tag, err := inst.Install(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "0.4.20", tag)

	assert.Equal(t, "/0.4.20/install.sh", (*paths)[0])
	assert.False(t, fake.Called(filepath.Join(dir, "install.sh")+" --base "+dir+" --ggmlcuda"))
}

func TestInstallFailsWhenBinaryNotProduced(t *testing.T) {
	srv, _ := scriptServer(t)
	fake := &execrun.Fake{Missing: []string{"nvcc"}}
	dir := t.TempDir() // stand-in installer produces nothing

	inst := NewInstaller(fake, download.NewClient(), system.NewDetector(fake, discard()), installerCfg(srv.URL), discard())
	_, err := inst.Install(context.Background(), dir)
	assert.ErrorContains(t, err, "did not produce")
}

func TestInstallRequiresExistingDir(t *testing.T) {
	srv, paths := scriptServer(t)
	fake := &execrun.Fake{Missing: []string{"nvcc"}}

	inst := NewInstaller(fake, download.NewClient(), system.NewDetector(fake, discard()), installerCfg(srv.URL), discard())
	_, err := inst.Install(context.Background(), filepath.Join(t.TempDir(), "gaianet9"))
	assert.Error(t, err)
	assert.Empty(t, *paths)
}

func TestLifecycleCommands(t *testing.T) {
	fake := &execrun.Fake{}
	life := NewLifecycle(fake, discard())
	dir := "/home/u/gaianet1"
	bin := BinaryPath(dir)
	ctx := context.Background()

	require.NoError(t, life.Init(ctx, dir, "https://configs/fallback.json"))
	require.NoError(t, life.Configure(ctx, dir, "8091", "gaia.domains"))
	require.NoError(t, life.Start(ctx, dir))
	require.NoError(t, life.Info(ctx, dir))

	assert.Equal(t, []string{
		bin + " init --config https://configs/fallback.json --base " + dir,
		bin + " config --base " + dir + " --port 8091 --domain gaia.domains",
		bin + " start --base " + dir,
		bin + " info --base " + dir,
	}, fake.Calls)
}

func TestRecordRoundTrip(t *testing.T) {
	dir := t.TempDir()

	missing, err := LoadRecord(dir)
	require.NoError(t, err)
	assert.Nil(t, missing)

	r := &Record{RunID: "run-1", Instance: 2, Port: "8092", ConfigURL: "https://configs/fallback.json", InstallerTag: "0.4.20"}
	require.NoError(t, SaveRecord(dir, r))

	loaded, err := LoadRecord(dir)
	require.NoError(t, err)
	assert.Equal(t, r.Port, loaded.Port)
	assert.Equal(t, r.Instance, loaded.Instance)
}
