package process

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry-cli/internal/config"
	"github.com/quarrylabs/quarry-cli/internal/server"
)

func newTestRunner(t *testing.T) (*Runner, *server.Instance) {
	t.Helper()
	inst := server.NewInstance(t.TempDir())
	cfg := &config.Config{
		InstanceDir: inst.Dir,
		JavaBin:     "java",
		MinMemory:   "512M",
		MaxMemory:   "1G",
	}
	return NewRunner(inst, cfg, nil), inst
}

func TestRunningPIDWithoutPidFile(t *testing.T) {
	r, _ := newTestRunner(t)

	_, running := r.RunningPID()
	require.False(t, running)
}

func TestRunningPIDWithCurrentProcess(t *testing.T) {
	r, inst := newTestRunner(t)
	require.NoError(t, os.WriteFile(inst.PidPath(), []byte(strconv.Itoa(os.Getpid())+"\n"), 0644))

	pid, running := r.RunningPID()
	require.True(t, running)
	require.Equal(t, os.Getpid(), pid)
}

func TestRunningPIDClearsStalePidFile(t *testing.T) {
	r, inst := newTestRunner(t)
	// Beyond the default linux pid_max, so never a live process.
	require.NoError(t, os.WriteFile(inst.PidPath(), []byte("99999999\n"), 0644))

	_, running := r.RunningPID()
	require.False(t, running)

	_, err := os.Stat(inst.PidPath())
	require.True(t, os.IsNotExist(err))
}

func TestRunningPIDWithGarbagePidFile(t *testing.T) {
	r, inst := newTestRunner(t)
	require.NoError(t, os.WriteFile(inst.PidPath(), []byte("not-a-pid\n"), 0644))

	_, running := r.RunningPID()
	require.False(t, running)
}

func TestStartRequiresInstalledJar(t *testing.T) {
	r, _ := newTestRunner(t)

	_, err := r.Start()
	require.Error(t, err)
	require.Contains(t, err.Error(), "quarry install")
}

func TestStartRequiresAcceptedEULA(t *testing.T) {
	r, inst := newTestRunner(t)
	require.NoError(t, os.WriteFile(inst.JarPath(), []byte("jar"), 0644))

	_, err := r.Start()
	require.Error(t, err)
	require.Contains(t, err.Error(), "EULA")
}

func TestStartRefusesWhenAlreadyRunning(t *testing.T) {
	r, inst := newTestRunner(t)
	require.NoError(t, os.WriteFile(inst.JarPath(), []byte("jar"), 0644))
	require.NoError(t, inst.AcceptEULA())
	require.NoError(t, os.WriteFile(inst.PidPath(), []byte(strconv.Itoa(os.Getpid())+"\n"), 0644))

	_, err := r.Start()
	require.Error(t, err)
	require.Contains(t, err.Error(), "already running")
}

// installFakeServer makes the instance launchable with a shell script
// standing in for the java binary.
func installFakeServer(t *testing.T, r *Runner, inst *server.Instance, script string) {
	t.Helper()
	require.NoError(t, os.WriteFile(inst.JarPath(), []byte("jar"), 0644))
	require.NoError(t, inst.AcceptEULA())

	bin := filepath.Join(t.TempDir(), "fakejava")
	require.NoError(t, os.WriteFile(bin, []byte(script), 0755))
	r.cfg.JavaBin = bin
}

func TestHandleSendReachesServerStdin(t *testing.T) {
	r, inst := newTestRunner(t)
	// Exits after echoing the first console command to a file.
	installFakeServer(t, r, inst, "#!/bin/sh\nread line\necho \"$line\" > received.txt\n")

	h, err := r.Start()
	require.NoError(t, err)

	require.NoError(t, h.Send("say hello"))
	require.NoError(t, h.Wait())

	data, err := os.ReadFile(filepath.Join(inst.Dir, "received.txt"))
	require.NoError(t, err)
	require.Equal(t, "say hello\n", string(data))
}

func TestHandleStopShutsDownViaStopCommand(t *testing.T) {
	r, inst := newTestRunner(t)
	// Exits cleanly as soon as a console command arrives.
	installFakeServer(t, r, inst, "#!/bin/sh\nread line\nexit 0\n")

	h, err := r.Start()
	require.NoError(t, err)

	_, running := r.RunningPID()
	require.True(t, running)

	require.NoError(t, h.Stop())

	_, err = os.Stat(inst.PidPath())
	require.True(t, os.IsNotExist(err))
}

func TestHandleStopKillsUnresponsiveServer(t *testing.T) {
	r, inst := newTestRunner(t)
	// Swallows console commands without ever exiting.
	installFakeServer(t, r, inst, "#!/bin/sh\nwhile read line; do :; done\nsleep 30\n")

	h, err := r.Start()
	require.NoError(t, err)
	h.timeout = 200 * time.Millisecond

	require.NoError(t, h.Stop())

	_, running := r.RunningPID()
	require.False(t, running)
}

func TestStopByPidWithoutRunningServer(t *testing.T) {
	r, _ := newTestRunner(t)

	err := r.StopByPid()
	require.Error(t, err)
	require.Contains(t, err.Error(), "no running server")
}
