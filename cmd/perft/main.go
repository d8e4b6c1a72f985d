package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"sort"
	"time"

	"chessdb/chess"
)

func main() {
	fen := flag.String("fen", chess.StartFEN, "FEN string (defaults to initial position)")
	depth := flag.Int("depth", 0, "Perft depth (required)")
	divide := flag.Bool("divide", false, "Print per-move node counts at root")
	repeat := flag.Int("repeat", 1, "Repeat perft N times and report aggregate (for steadier timings)")
	label := flag.String("label", "", "Optional label prefix for one-line output")
	cpuProf := flag.String("cpuprofile", "", "Write CPU profile to file during run")
	memProf := flag.String("memprofile", "", "Write heap profile to file after run")
	flag.Parse()

	if *depth <= 0 {
		fmt.Fprintln(os.Stderr, "-depth must be > 0")
		os.Exit(2)
	}

	pos, err := chess.FromFEN(*fen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FromFEN error: %v\n", err)
		os.Exit(2)
	}

	if *divide {
		moves := chess.LegalMoves(pos)
		type kv struct {
			m string
			n uint64
		}
		arr := make([]kv, 0, moves.Len())
		var sum uint64
		for i := 0; i < moves.Len(); i++ {
			m := moves.At(i)
			n := chess.Perft(chess.MakeMove(pos, m), *depth-1)
			arr = append(arr, kv{m.String(), n})
			sum += n
		}
		sort.Slice(arr, func(i, j int) bool { return arr[i].m < arr[j].m })
		for _, x := range arr {
			fmt.Printf("%s: %d\n", x.m, x.n)
		}
		fmt.Printf("Total: %d\n", sum)
		return
	}

	if *cpuProf != "" {
		f, err := os.Create(*cpuProf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "creating cpuprofile: %v\n", err)
			os.Exit(2)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "start cpu profile: %v\n", err)
			os.Exit(2)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	var totalNodes uint64
	start := time.Now()
	for i := 0; i < *repeat; i++ {
		totalNodes += chess.Perft(pos, *depth)
	}
	elapsed := time.Since(start)
	secs := elapsed.Seconds()
	nps := float64(totalNodes) / secs

	fmt.Printf("%s \t%d \t\t%d \t\t%s \t%.0f\n", *label, *depth, totalNodes, elapsed, nps)

	if *memProf != "" {
		f, err := os.Create(*memProf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "creating memprofile: %v\n", err)
			os.Exit(2)
		}
		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "write heap profile: %v\n", err)
			os.Exit(2)
		}
		_ = f.Close()
	}
}
