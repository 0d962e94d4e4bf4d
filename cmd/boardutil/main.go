// Command boardutil blinks a heartbeat LED and manages the stored COM port number.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

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

// actions are the one-shot modes; at most one is taken per run.
type actions struct {
	setCom     int
	printCom   bool
	listPorts  bool
	printState bool
}

func main() {
	cfgPath := flag.String("config", "/etc/boardutil.yaml", "YAML config file (missing file uses defaults)")
	chip := flag.String("chip", "", "GPIO chip (overrides config)")
	pin := flag.Int("pin", -1, "heartbeat LED pin, 0 to disable (overrides config)")
	interval := flag.Duration("interval", 0, "heartbeat toggle interval (overrides config)")
	nvram := flag.String("nvram", "", "EEPROM image path (overrides config)")
	runFor := flag.Duration("run-for", 0, "exit after this long (0 runs until signalled)")
	startupBlink := flag.Duration("startup-blink", 500*time.Millisecond, "fast blink on startup (0 to skip)")
	setCom := flag.Int("set-com", 0, "store this COM port number and exit")
	printCom := flag.Bool("com", false, "print the stored COM port and exit")
	listPorts := flag.Bool("list-ports", false, "list serial ports and suggest a COM port number")
	printState := flag.Bool("print-state", false, "print status JSON and exit")
	version := flag.Bool("version", false, "print version and exit")

	flag.Parse()

	if *version {
		fmt.Println(heartbeat.Version)
		return
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	applyOverrides(cfg, *chip, *pin, *interval, *nvram)
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("fatal: config: %v", err)
	}

	act := actions{setCom: *setCom, printCom: *printCom, listPorts: *listPorts, printState: *printState}
	if err := run(cfg, act, *runFor, *startupBlink); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// applyOverrides copies flag values that were set over the loaded config.
func applyOverrides(cfg *config.Config, chip string, pin int, interval time.Duration, nvram string) {
	if chip != "" {
		cfg.GPIO.Chip = chip
	}
	if pin >= 0 {
		cfg.Heartbeat.Pin = pin
	}
	if interval > 0 {
		cfg.Heartbeat.IntervalMs = interval.Milliseconds()
	}
	if nvram != "" {
		cfg.NVRAM.Path = nvram
	}
}

func run(cfg *config.Config, act actions, runFor, startupBlink time.Duration) error {
	// Initialize EEPROM image
	store, err := nvstore.OpenFile(cfg.NVRAM.Path, cfg.NVRAM.Size)
	if err != nil {
		return fmt.Errorf("init nvram: %w", err)
	}
	defer store.Close()
	com := comport.New(store)

	done, err := runAction(com, act, os.Stdout)
	if err != nil || done {
		return err
	}

	label, err := com.Label()
	if err != nil {
		return err
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		Chip:         cfg.GPIO.Chip,
		PollMs:       cfg.Loop.PollMs,
		SmoothPoints: cfg.Smoothing.Points,
		NVRAMPath:    cfg.NVRAM.Path,
		PinRangeLow:  cfg.Heartbeat.MinPin,
		PinRangeHigh: cfg.Heartbeat.MaxPin,
	})
	tracker.SetComPort(label)
	tracker.SetHeartbeat(cfg.Heartbeat.Pin, cfg.Heartbeat.IntervalMs)

	if act.printState {
		fmt.Printf("%s\n", status.FormatJSON(tracker.Snapshot()))
		return nil
	}

	// Initialize GPIO
	pins, err := gpio.NewRealPins(cfg.GPIO.Chip)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer pins.Close()

	clk := clock.NewReal()
	sched, err := setupScheduler(clk, pins, cfg)
	if err != nil {
		return err
	}

	sm := smooth.New(cfg.Smoothing.Points, diag.LogSink{Prefix: "smooth: "})
	sched.AttachCallback(newBeatRecorder(clk, sched, sm, tracker, cfg.Loop.ReportBeats))

	log.Printf("%s started: pin=%d interval=%dms port=%s", heartbeat.Version, sched.Pin(), sched.Interval(), label)
	log.Printf("%s", status.FormatStatusEvent(tracker.Snapshot(), "STARTUP"))

	if startupBlink > 0 {
		startupFlash(sched, startupBlink)
	}

	var deadline *timeout.Timer
	if runFor > 0 {
		deadline = timeout.New(clk)
		deadline.Arm(uint32(runFor.Milliseconds()))
	}

	ticker := time.NewTicker(time.Duration(cfg.Loop.PollMs) * time.Millisecond)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(sched, tracker, deadline, ticker.C, sigCh)
}

// setupScheduler builds the heartbeat scheduler from cfg and claims the LED pin.
func setupScheduler(clk clock.Clock, pins gpio.Pins, cfg *config.Config) (*heartbeat.Scheduler, error) {
	sched := heartbeat.New(clk, pins, heartbeat.Options{
		MinPin: cfg.Heartbeat.MinPin,
		MaxPin: cfg.Heartbeat.MaxPin,
	})
	if err := sched.Initialize(cfg.Heartbeat.Pin); err != nil {
		return nil, fmt.Errorf("init heartbeat pin %d: %w", cfg.Heartbeat.Pin, err)
	}
	sched.SetInterval(cfg.Heartbeat.IntervalMs)
	return sched, nil
}

// startupFlash blinks fast for d so a person at the board can see the
// daemon came up, then restores the configured interval.
func startupFlash(sched *heartbeat.Scheduler, d time.Duration) {
	prev := sched.SetInterval(heartbeat.Read)
	sched.SetInterval(prev / 5)
	sched.PauseFor(uint32(d.Milliseconds()))
	sched.SetInterval(prev)
}

// runAction performs a one-shot action. done reports whether one was taken.
func runAction(com *comport.ComPort, act actions, out io.Writer) (done bool, err error) {
	switch {
	case act.setCom != 0:
		if !comport.Valid(act.setCom) {
			return true, fmt.Errorf("com port %d out of range (3-254)", act.setCom)
		}
		if err := com.Set(act.setCom); err != nil {
			return true, err
		}
		log.Printf("stored COM%d at address 0x%X", act.setCom, comport.Address)
		return true, nil

	case act.printCom:
		label, err := com.Label()
		if err != nil {
			return true, err
		}
		fmt.Fprintln(out, label)
		return true, nil

	case act.listPorts:
		ports, err := comport.Discover(nil)
		if err != nil {
			return true, err
		}
		for _, p := range ports {
			fmt.Fprintln(out, p)
		}
		if n, ok := comport.Suggest(ports); ok {
			fmt.Fprintf(out, "suggested: boardutil -set-com %d\n", n)
		}
		return true, nil
	}
	return false, nil
}

// newBeatRecorder returns the heartbeat callback. It smooths the measured
// period between beats and records it in the tracker.
func newBeatRecorder(clk clock.Clock, sched *heartbeat.Scheduler, sm *smooth.Smoother, tracker *status.Tracker, reportEvery int) func() {
	var (
		last    uint32
		started bool
	)
	return func() {
		now := clk.Now()
		if !started {
			started = true
			last = now
			tracker.RecordBeat(time.Now(), sched.Beats(), 0)
			return
		}

		avg := sm.Add(float32(now - last))
		last = now
		beats := sched.Beats()
		tracker.RecordBeat(time.Now(), beats, avg)

		if reportEvery > 0 && beats%uint64(reportEvery) == 0 {
			log.Printf("heartbeat: beats=%d avg_period=%.1fms interval=%dms", beats, avg, sched.Interval())
		}
	}
}

func runLoop(sched *heartbeat.Scheduler, tracker *status.Tracker, deadline *timeout.Timer, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			tracker.SetHeartbeat(sched.Pin(), int64(sched.Interval()))
			log.Printf("%s", status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN"))
			return nil

		case <-tick:
			sched.Service()

			if deadline != nil && deadline.Expired() {
				log.Printf("run time elapsed, shutting down after %d beats", sched.Beats())
				tracker.SetHeartbeat(sched.Pin(), int64(sched.Interval()))
				log.Printf("%s", status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN"))
				return nil
			}
		}
	}
}
