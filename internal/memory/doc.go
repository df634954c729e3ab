/*
Package memory configures the Go memory limit and applies backpressure to
image decoding.

ConfigureFromEnv derives GOMEMLIMIT from MEMORY_LIMIT (a container limit in
bytes) and MEMORY_RATIO, unless GOMEMLIMIT is already set. Call it at the
top of main.

A Monitor samples heap allocation on an interval. When allocation crosses
the critical water mark it pauses, forces a GC, and holds callers of Wait
until allocation drops below the high water mark again:

	mon := memory.NewMonitor(memory.DefaultConfig())
	mon.Start()
	defer mon.Stop()

	if err := mon.Wait(ctx); err != nil {
	    return err
	}
	img, err := imaging.Open(path)

A nil *Monitor is valid and never blocks.
*/
package memory
