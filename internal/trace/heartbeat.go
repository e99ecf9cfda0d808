package trace

import (
	"runtime"
	"strconv"
	"sync"
	"time"
)

// StartHeartbeat emits a "heartbeat" point every interval until the
// returned stop function is called. Spans that stop closing while
// heartbeats continue point at a hang.
func StartHeartbeat(t Tracer, every time.Duration) (stop func()) {
	if t == nil || t.Level() == LevelOff || every <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		tick := time.NewTicker(every)
		defer tick.Stop()
		for n := 1; ; n++ {
			select {
			case <-done:
				return
			case now := <-tick.C:
				t.Emit(Event{
					Time: now,
					Kind: KindPoint,
					Name: "heartbeat",
					Attrs: []Attr{
						{Key: "n", Value: strconv.Itoa(n)},
						{Key: "goroutines", Value: strconv.Itoa(runtime.NumGoroutine())},
					},
				})
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}
