package transcribe

import (
	"log"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
)

// maxRecommendedWorkers caps the heuristic; whisper models are memory hungry
// and more workers than this tends to thrash.
const maxRecommendedWorkers = 8

// RecommendedWorkers suggests a worker count from the logical core count:
// roughly 80% of cores, never below 1, capped. It is a configuration
// heuristic applied when the caller did not override the count, not a
// runtime scheduler.
func RecommendedWorkers() int {
	n := int(float64(runtime.NumCPU()) * 0.8)
	if n < 1 {
		n = 1
	}
	if n > maxRecommendedWorkers {
		n = maxRecommendedWorkers
	}
	return n
}

// Monitor samples system CPU usage in the background while a transcription
// batch runs and logs the running average with a provisioning hint.
type Monitor struct {
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// StartMonitor begins sampling. Stop must be called to release it.
func StartMonitor() *Monitor {
	m := &Monitor{
		interval: 5 * time.Second,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go m.loop()
	return m
}

// Stop ends sampling and waits for the monitor goroutine to exit.
func (m *Monitor) Stop() {
	close(m.stop)
	<-m.done
}

func (m *Monitor) loop() {
	defer close(m.done)

	var history []float64
	samples := 0
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			percents, err := cpu.Percent(0, false)
			if err != nil || len(percents) == 0 {
				continue
			}
			history = append(history, percents[0])
			if len(history) > 10 {
				history = history[1:]
			}
			samples++
			// Report every ~30s.
			if samples%6 != 0 {
				continue
			}
			avg := 0.0
			for _, p := range history {
				avg += p
			}
			avg /= float64(len(history))
			log.Printf("CPU usage: %.1f%% (avg over last %ds)", avg, len(history)*int(m.interval.Seconds()))
			switch {
			case avg < 60:
				log.Printf("Low CPU usage, more transcription workers may speed things up")
			case avg > 95:
				log.Printf("High CPU usage, consider fewer transcription workers")
			}
		}
	}
}
