package main

import (
	"fmt"
	"io"

	"scriptc/internal/buildpipeline"
)

func printStageTimings(out io.Writer, timings buildpipeline.Timings) {
	if out == nil {
		return
	}
	for _, stage := range buildpipeline.CompileStages {
		if !timings.Has(stage) {
			continue
		}
		fmt.Fprintf(out, "%-8s %8.2f ms\n", stage, toMillis(timings.Duration(stage)))
	}
	fmt.Fprintf(out, "%-8s %8.2f ms\n", "total", toMillis(timings.Sum(buildpipeline.CompileStages...)))
}
