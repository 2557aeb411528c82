// Command interpret runs an IPPcode21 XML program.
//
//	interpret --source file.xml --input in.txt
//
// Either flag may be omitted, in which case that stream is read from
// standard input; omitting both is a usage error.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/ondryaso/ipp21vm/loader"
	"github.com/ondryaso/ipp21vm/vm"
)

// exit codes owned by this command, not by the vm/loader error taxonomy.
const (
	exitCLI  = 10
	exitOpen = 11
)

// singleFlag is a flag.Value that counts how many times it was set, so a
// repeated --source or --input can be rejected instead of silently keeping
// the last occurrence.
type singleFlag struct {
	value string
	count int
}

func (f *singleFlag) String() string     { return f.value }
func (f *singleFlag) Get() interface{}   { return f.value }
func (f *singleFlag) Set(s string) error { f.count++; f.value = s; return nil }

func cliErrorf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(exitCLI)
}

func main() {
	var source, input singleFlag
	flag.Var(&source, "source", "read the IPPcode21 source from `file` (default stdin)")
	flag.Var(&input, "input", "read the program's input from `file` (default stdin)")
	flag.Parse()

	if source.count > 1 {
		cliErrorf("--source may only be given once")
	}
	if input.count > 1 {
		cliErrorf("--input may only be given once")
	}
	if source.count == 0 && input.count == 0 {
		cliErrorf("at least one of --source or --input must be given: both cannot read from stdin")
	}

	src, closeSrc, err := openOrStdin(source.count == 1, source.value)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitOpen)
	}
	defer closeSrc()

	in, closeIn, err := openOrStdin(input.count == 1, input.value)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitOpen)
	}
	defer closeIn()

	instrs, err := loader.Load(src)
	if err != nil {
		reportAndExit(err)
	}

	ctx := vm.NewContext(instrs, in, os.Stdout)
	if err := ctx.Run(); err != nil {
		if re, ok := err.(*vm.RuntimeError); ok && re.Code >= 52 && re.Code <= 58 {
			ctx.Dump(os.Stderr)
		}
		reportAndExit(err)
	}

	if code, ok := ctx.ExitCode(); ok {
		os.Exit(code)
	}
	os.Exit(0)
}

// openOrStdin opens name when given is true, otherwise returns stdin. The
// returned close func is always safe to defer unconditionally.
func openOrStdin(given bool, name string) (io.Reader, func(), error) {
	if !given {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "cannot open %q", name)
	}
	return f, func() { f.Close() }, nil
}

// reportAndExit prints err and terminates the process with its exit code,
// or ExitInternal if err does not carry one of its own.
func reportAndExit(err error) {
	fmt.Fprintln(os.Stderr, err)
	if ce, ok := err.(interface{ ExitCode() vm.ExitCode }); ok {
		os.Exit(int(ce.ExitCode()))
	}
	os.Exit(int(vm.ExitInternal))
}
