package main

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/boardutil/internal/clock"
	"github.com/sweeney/boardutil/internal/comport"
	"github.com/sweeney/boardutil/internal/config"
	"github.com/sweeney/boardutil/internal/diag"
	"github.com/sweeney/boardutil/internal/gpio"
	"github.com/sweeney/boardutil/internal/heartbeat"
	"github.com/sweeney/boardutil/internal/nvstore"
	"github.com/sweeney/boardutil/internal/smooth"
	"github.com/sweeney/boardutil/internal/status"
	"github.com/sweeney/boardutil/internal/timeout"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

// drive sends n ticks and then a signal. The tick channel is unbuffered so
// every tick is received before the signal is sent. The fake clock advances
// on its own Step inside the loop goroutine.
func drive(n int, tick chan<- time.Time, sig chan<- os.Signal) {
	go func() {
		for i := 0; i < n; i++ {
			tick <- time.Time{}
		}
		sig <- syscall.SIGINT
	}()
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.Default()
	applyOverrides(cfg, "gpiochip4", 0, time.Second, "/tmp/eeprom.bin")

	assert.Equal(t, "gpiochip4", cfg.GPIO.Chip)
	assert.Equal(t, 0, cfg.Heartbeat.Pin, "0 disables the LED")
	assert.Equal(t, int64(1000), cfg.Heartbeat.IntervalMs)
	assert.Equal(t, "/tmp/eeprom.bin", cfg.NVRAM.Path)
}

func TestApplyOverridesUnset(t *testing.T) {
	cfg := config.Default()
	applyOverrides(cfg, "", -1, 0, "")
	assert.Equal(t, config.Default(), cfg)
}

func TestRunActionSetCom(t *testing.T) {
	captureLog(t)
	store := nvstore.NewFakeStore(nvstore.DefaultSize)
	com := comport.New(store)

	done, err := runAction(com, actions{setCom: 7}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.True(t, done)

	label, err := com.Label()
	require.NoError(t, err)
	assert.Equal(t, "COM7", label)
}

func TestRunActionSetComOutOfRange(t *testing.T) {
	store := nvstore.NewFakeStore(nvstore.DefaultSize)
	com := comport.New(store)

	done, err := runAction(com, actions{setCom: 300}, &bytes.Buffer{})
	assert.True(t, done)
	assert.Error(t, err)

	n, ok, err := com.Number()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, -1, n, "store untouched")
}

func TestRunActionPrintCom(t *testing.T) {
	com := comport.New(nvstore.NewFakeStore(nvstore.DefaultSize))
	var out bytes.Buffer

	done, err := runAction(com, actions{printCom: true}, &out)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, comport.NotSet+"\n", out.String())
}

func TestRunActionListPorts(t *testing.T) {
	orig := comport.SystemPorts
	defer func() { comport.SystemPorts = orig }()
	comport.SystemPorts = func() ([]string, error) {
		return []string{"/dev/ttyUSB0", "/dev/ttyACM5"}, nil
	}

	var out bytes.Buffer
	done, err := runAction(comport.New(nvstore.NewFakeStore(64*4)), actions{listPorts: true}, &out)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, "/dev/ttyACM5\n/dev/ttyUSB0\nsuggested: boardutil -set-com 5\n", out.String())
}

func TestRunActionListPortsError(t *testing.T) {
	orig := comport.SystemPorts
	defer func() { comport.SystemPorts = orig }()
	comport.SystemPorts = func() ([]string, error) { return nil, errors.New("denied") }

	done, err := runAction(comport.New(nvstore.NewFakeStore(nvstore.DefaultSize)), actions{listPorts: true}, &bytes.Buffer{})
	assert.True(t, done)
	assert.Error(t, err)
}

func TestRunActionNone(t *testing.T) {
	done, err := runAction(comport.New(nvstore.NewFakeStore(nvstore.DefaultSize)), actions{}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, done)
}

func TestRunPrintState(t *testing.T) {
	cfg := config.Default()
	cfg.NVRAM.Path = filepath.Join(t.TempDir(), "eeprom.bin")

	require.NoError(t, run(cfg, actions{printState: true}, 0, 0))

	_, err := os.Stat(cfg.NVRAM.Path)
	assert.NoError(t, err, "image is created on first run")
}

func TestRunSetComPersists(t *testing.T) {
	captureLog(t)
	cfg := config.Default()
	cfg.NVRAM.Path = filepath.Join(t.TempDir(), "eeprom.bin")

	require.NoError(t, run(cfg, actions{setCom: 12}, 0, 0))

	store, err := nvstore.OpenFile(cfg.NVRAM.Path, cfg.NVRAM.Size)
	require.NoError(t, err)
	defer store.Close()
	label, err := comport.New(store).Label()
	require.NoError(t, err)
	assert.Equal(t, "COM12", label)
}

func TestSetupScheduler(t *testing.T) {
	cfg := config.Default()
	cfg.Heartbeat.Pin = 21
	cfg.Heartbeat.MaxPin = 27
	cfg.Heartbeat.IntervalMs = 1000
	pins := gpio.NewFakePins()

	sched, err := setupScheduler(clock.NewFake(0), pins, cfg)
	require.NoError(t, err)
	assert.Equal(t, 21, sched.Pin())
	assert.Equal(t, uint32(1000), sched.Interval())
	assert.Equal(t, gpio.InputOutput, pins.Modes[21])
}

func TestSetupSchedulerDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Heartbeat.Pin = 0
	pins := gpio.NewFakePins()

	sched, err := setupScheduler(clock.NewFake(0), pins, cfg)
	require.NoError(t, err)
	assert.Equal(t, heartbeat.Disabled, sched.Pin())
	assert.Empty(t, pins.Modes)
}

func TestSetupSchedulerGPIOError(t *testing.T) {
	pins := gpio.NewFakePins()
	pins.ConfigureError = errors.New("line busy")

	_, err := setupScheduler(clock.NewFake(0), pins, config.Default())
	assert.ErrorContains(t, err, "line busy")
}

func TestStartupFlash(t *testing.T) {
	clk := clock.NewFake(0)
	clk.Step = 1
	pins := gpio.NewFakePins()
	sched := heartbeat.New(clk, pins, heartbeat.Options{})

	startupFlash(sched, 500*time.Millisecond)

	// Interval 50 during the flash; the first deadline is still 250.
	assert.Greater(t, len(pins.Writes), 4)
	assert.Equal(t, uint32(heartbeat.DefaultInterval), sched.Interval(), "interval restored")
}

func TestBeatRecorder(t *testing.T) {
	buf := captureLog(t)

	clk := clock.NewFake(0)
	pins := gpio.NewFakePins()
	sched := heartbeat.New(clk, pins, heartbeat.Options{})
	tracker := status.NewTracker(time.Now(), status.Config{})
	sm := smooth.New(3, diag.Discard{})
	sched.AttachCallback(newBeatRecorder(clk, sched, sm, tracker, 4))

	for ; clk.Ms <= 1000; clk.Ms++ {
		sched.Service()
	}

	snap := tracker.Snapshot()
	assert.Equal(t, uint64(4), snap.Beats)
	assert.Equal(t, float32(250), snap.AvgPeriodMs)
	assert.False(t, snap.LastBeat.IsZero())
	assert.Contains(t, buf.String(), "heartbeat: beats=4 avg_period=250.0ms interval=250ms")
	assert.Equal(t, 3, sm.Count())
}

func TestRunLoopServicesHeartbeat(t *testing.T) {
	buf := captureLog(t)

	clk := clock.NewFake(0)
	clk.Step = 5
	pins := gpio.NewFakePins()
	sched := heartbeat.New(clk, pins, heartbeat.Options{})
	tracker := status.NewTracker(time.Now(), status.Config{})

	tick := make(chan time.Time)
	sig := make(chan os.Signal)
	drive(200, tick, sig) // Service sees 0..995ms

	require.NoError(t, runLoop(sched, tracker, nil, tick, sig))

	assert.Len(t, pins.WritesTo(heartbeat.DefaultPin), 3) // 250, 500, 750
	assert.Contains(t, buf.String(), "received interrupt, shutting down")
	assert.Contains(t, buf.String(), `"event":"SHUTDOWN"`)
}

func TestRunLoopDisabledPin(t *testing.T) {
	captureLog(t)

	clk := clock.NewFake(0)
	clk.Step = 10
	pins := gpio.NewFakePins()
	sched := heartbeat.New(clk, pins, heartbeat.Options{})
	_, err := sched.SetPin(heartbeat.Disabled)
	require.NoError(t, err)
	tracker := status.NewTracker(time.Now(), status.Config{})
	tracker.SetHeartbeat(13, 250)

	tick := make(chan time.Time)
	sig := make(chan os.Signal)
	drive(100, tick, sig) // Service sees 0..990ms

	require.NoError(t, runLoop(sched, tracker, nil, tick, sig))
	assert.Empty(t, pins.Writes)
	assert.Equal(t, uint64(3), sched.Beats())
	assert.Equal(t, 0, tracker.Snapshot().Pin)
}

func TestRunLoopDeadline(t *testing.T) {
	buf := captureLog(t)

	clk := clock.NewFake(0)
	pins := gpio.NewFakePins()
	sched := heartbeat.New(clk, pins, heartbeat.Options{})
	tracker := status.NewTracker(time.Now(), status.Config{})
	deadline := timeout.New(clk)
	deadline.Arm(600)
	// Service and Expired each read the clock once per tick.
	clk.Step = 10

	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case tick <- time.Time{}:
			case <-done:
				return
			}
		}
	}()

	require.NoError(t, runLoop(sched, tracker, deadline, tick, sig))

	assert.Equal(t, uint64(2), sched.Beats())
	assert.Contains(t, buf.String(), "run time elapsed, shutting down after 2 beats")
}
