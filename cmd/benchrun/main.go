// Command benchrun runs the benchmark package and a verified perft suite
// from the module root.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
)

type perftRun struct {
	label string
	fen   string
	depth int
}

var perftSuite = []perftRun{
	{"Initial", "", 4},
	{"Initial", "", 5},
	{"Kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 3},
	{"Kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 4},
	{"Pos3", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 5},
	{"Pos4", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", 4},
}

// run executes a command and prints its combined output. Returns exit code.
func run(name string, args ...string) int {
	cmd := exec.Command(name, args...)
	cmd.Env = os.Environ()
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	fmt.Print(out.String())
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	fmt.Fprintf(os.Stderr, "error running %s: %v\n", name, err)
	return 1
}

func main() {
	pattern := flag.String("bench", ".", "benchmark name pattern")
	benchtime := flag.String("benchtime", "1s", "time per benchmark")
	skipPerft := flag.Bool("noperft", false, "skip the perft suite")
	flag.Parse()

	fmt.Println("Columns: BENCHMARK  N  ns/op  B/op  allocs/op")
	code := run("go", "test", "./bench", "-run", "^$", "-bench", *pattern, "-benchmem", "-benchtime="+*benchtime)
	if code != 0 || *skipPerft {
		os.Exit(code)
	}

	fmt.Println("\nPerft Performance:")
	fmt.Println("TEST \t\tDepth \t\tNodes \t\tTime \tNPS")
	for _, p := range perftSuite {
		args := []string{"run", "./cmd/perft", "-verify", "-depth", fmt.Sprint(p.depth), "-label", p.label}
		if p.fen != "" {
			args = append(args, "-fen", p.fen)
		}
		if c := run("go", args...); c != 0 {
			code = c
		}
	}
	os.Exit(code)
}
