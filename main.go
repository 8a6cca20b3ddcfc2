// Command c8 executes CHIP-8 programs.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"

	"github.com/nf/c8/chip8"
	"github.com/nf/c8/emu"
)

func main() {
	log.SetPrefix("c8: ")
	log.SetFlags(0)

	var (
		cliFlag   = flag.Bool("cli", false, "disable GUI features")
		termFlag  = flag.Bool("term", false, "display the program in the terminal instead of a window")
		devFlag   = flag.Bool("dev", false, "enable developer mode (reload the program when it changes)")
		debugFlag = flag.Bool("debug", false, "enable debugger (implies -dev)")

		periodFlag  = flag.Duration("period", emu.DefaultPeriod, "interval between instructions")
		dumpFlag    = flag.String("dump", "dump", "write memory to `file` when the program halts (empty to disable)")
		muteFlag    = flag.Bool("mute", false, "disable sound")
		overlayFlag = flag.Bool("overlay", true, "show the debug overlay at start")
		shiftFlag   = flag.Bool("shift_vx", false, "shift instructions shift VX in place instead of reading VY")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-cli | -term] <program.ch8>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s [-cli] <-dev | -debug> <program.ch8>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}
	if *termFlag && (*debugFlag || *cliFlag) {
		log.Print("-term cannot be combined with -cli or -debug")
		flag.Usage()
	}

	cfg := emu.Config{
		GUI:         !*cliFlag && !*termFlag,
		Interactive: !*cliFlag || *devFlag || *debugFlag,
		Period:      *periodFlag,
		DumpFile:    *dumpFlag,
		Overlay:     *overlayFlag,
		Mute:        *muteFlag,
		Quirks:      chip8.Quirks{ShiftVX: *shiftFlag},
	}

	if *devFlag || *debugFlag {
		if err := devMode(cfg, *debugFlag, flag.Arg(0)); err != nil {
			log.Fatal(err)
		}
		return
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	err := run(cfg, *termFlag, flag.Arg(0))

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
}

func run(cfg emu.Config, term bool, romFile string) error {
	rom, err := os.ReadFile(romFile)
	if err != nil {
		return err
	}
	r := emu.NewRunner(cfg, nil)
	if !term {
		return r.Run(rom)
	}

	t, err := newTerminal(nil)
	if err != nil {
		return err
	}
	go t.Run(r)
	err = r.Run(rom)
	t.Close()
	return err
}
