// Command allocbench drives a segheap Heap through a trace of allocate,
// free, reallocate and check requests read from newline-delimited JSON,
// and reports the resulting allocator statistics and any consistency
// violations found.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"unsafe"

	"github.com/orizon-lang/segheap/internal/allocator"
	"github.com/orizon-lang/segheap/internal/cli"
)

// traceOp is one line of a trace file. Op is one of "alloc", "free",
// "realloc" or "check". ID names a slot in the driver's live-pointer
// table; Size is the requested size for "alloc"/"realloc".
type traceOp struct {
	Op   string `json:"op"`
	ID   int    `json:"id"`
	Size uint64 `json:"size,omitempty"`
}

func main() {
	var (
		tracePath  = flag.String("trace", "-", "path to a newline-delimited JSON trace file, - for stdin")
		chunkSize  = flag.Uint64("chunk", 8*1024, "initial heap chunk size in bytes")
		maxArena   = flag.Uint64("max-arena", 1<<30, "arena reservation ceiling in bytes")
		verbose    = flag.Bool("verbose", false, "log every trace operation")
		debug      = flag.Bool("debug", false, "log heap internals")
		jsonReport = flag.Bool("json", false, "emit the final report as JSON")
		checkEvery = flag.Bool("check-every-op", false, "run the consistency checker after every operation, not just on explicit check ops")
	)
	flag.Parse()

	logger := cli.NewLogger(*verbose, *debug)

	h, err := allocator.NewHeap(
		allocator.WithInitialChunkSize(uintptr(*chunkSize)),
		allocator.WithMaxArenaSize(uintptr(*maxArena)),
		allocator.WithReallocPanicsOnExhaustion(false),
	)
	if err != nil {
		cli.ExitWithError("failed to create heap: %v", err)
	}

	in := os.Stdin
	if *tracePath != "-" {
		f, err := os.Open(*tracePath)
		if err != nil {
			cli.ExitWithError("failed to open trace %s: %v", *tracePath, err)
		}
		defer f.Close()

		in = f
	}

	report, err := runTrace(h, in, logger, *checkEvery)
	if err != nil {
		cli.ExitWithError("%v", err)
	}

	if *jsonReport {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			cli.ExitWithError("failed to marshal report: %v", err)
		}

		fmt.Println(string(data))

		return
	}

	printReport(report)
}

// report is the final summary allocbench prints.
type report struct {
	OperationsRun  int                      `json:"operations_run"`
	Stats          allocator.AllocatorStats `json:"stats"`
	Violations     []string                 `json:"violations,omitempty"`
	FailedAllocate int                      `json:"failed_allocate"`
}

func runTrace(h *allocator.Heap, r io.Reader, logger *cli.Logger, checkEvery bool) (*report, error) {
	live := map[int]unsafe.Pointer{}
	rep := &report{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var op traceOp
		if err := json.Unmarshal(line, &op); err != nil {
			return nil, fmt.Errorf("malformed trace line %q: %w", line, err)
		}

		logger.Debug("op=%s id=%d size=%d", op.Op, op.ID, op.Size)
		rep.OperationsRun++

		switch op.Op {
		case "alloc":
			p := h.Allocate(uintptr(op.Size))
			if p == nil {
				logger.Warn("allocate id=%d size=%d failed", op.ID, op.Size)
				rep.FailedAllocate++

				continue
			}

			live[op.ID] = p
			logger.Info("allocate id=%d size=%d -> %p", op.ID, op.Size, p)

		case "free":
			p, ok := live[op.ID]
			if !ok {
				return nil, fmt.Errorf("free of unknown id %d", op.ID)
			}

			h.Free(p)
			delete(live, op.ID)
			logger.Info("free id=%d", op.ID)

		case "realloc":
			p, ok := live[op.ID]
			if !ok {
				return nil, fmt.Errorf("realloc of unknown id %d", op.ID)
			}

			np := h.Reallocate(p, uintptr(op.Size))
			if np == nil {
				delete(live, op.ID)
				logger.Warn("reallocate id=%d size=%d failed", op.ID, op.Size)
				rep.FailedAllocate++

				continue
			}

			live[op.ID] = np
			logger.Info("reallocate id=%d size=%d -> %p", op.ID, op.Size, np)

		case "check":
			for _, v := range h.Check(logger.Verbose) {
				rep.Violations = append(rep.Violations, v.Error())
			}

		default:
			return nil, fmt.Errorf("unknown trace op %q", op.Op)
		}

		if checkEvery {
			for _, v := range h.Check(false) {
				rep.Violations = append(rep.Violations, v.Error())
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}

	rep.Stats = h.Stats()

	return rep, nil
}

func printReport(rep *report) {
	fmt.Printf("operations run:   %d\n", rep.OperationsRun)
	fmt.Printf("allocations:      %d\n", rep.Stats.AllocationCount)
	fmt.Printf("frees:            %d\n", rep.Stats.FreeCount)
	fmt.Printf("bytes requested:  %d\n", rep.Stats.BytesRequested)
	fmt.Printf("bytes in use:     %d\n", rep.Stats.BytesInUse)
	fmt.Printf("arena committed:  %d\n", rep.Stats.ArenaCommitted)
	fmt.Printf("failed allocates: %d\n", rep.FailedAllocate)

	if len(rep.Violations) == 0 {
		fmt.Println("consistency:      ok")

		return
	}

	fmt.Printf("consistency:      %d violation(s)\n", len(rep.Violations))
	for _, v := range rep.Violations {
		fmt.Printf("  - %s\n", v)
	}
}
