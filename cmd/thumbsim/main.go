package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmillard/thumbsim/api"
	"github.com/dmillard/thumbsim/debugger"
	"github.com/dmillard/thumbsim/service"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		debugMode   = flag.Bool("debug", false, "Start in debugger mode")
		tuiMode     = flag.Bool("tui", false, "Use TUI (Text User Interface) debugger")
		apiServer   = flag.Bool("api-server", false, "Start HTTP API server mode")
		apiPort     = flag.Int("port", 8080, "API server port (used with -api-server)")
		elfImage    = flag.Bool("elf", false, "Treat the input file as an ELF32 image instead of a raw Thumb blob")
		loadAddr    = flag.String("load-addr", "0x1000", "Load address for a raw image (hex or decimal)")
		stackTop    = flag.String("stack-top", "0", "Initial stack pointer, 0 to leave SP at its reset value (hex or decimal)")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("thumbsim %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	if *apiServer {
		runAPIServer(*apiPort)
		return
	}

	if flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}

	imagePath := flag.Arg(0)
	data, err := os.ReadFile(imagePath) // #nosec G304 -- imagePath is a command-line argument, user-controlled by design
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read %s: %v\n", imagePath, err)
		os.Exit(1)
	}

	stackTopAddr, err := parseAddress(*stackTop)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -stack-top: %v\n", err)
		os.Exit(1)
	}

	var sess *service.Session
	if *elfImage {
		sess, err = service.NewSessionFromELF(bytesReaderAt(data), stackTopAddr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading ELF image: %v\n", err)
			os.Exit(1)
		}
	} else {
		loadAddrVal, perr := parseAddress(*loadAddr)
		if perr != nil {
			fmt.Fprintf(os.Stderr, "Invalid -load-addr: %v\n", perr)
			os.Exit(1)
		}
		sess = service.NewSessionFromBytes(data, loadAddrVal, stackTopAddr)
	}

	if *debugMode || *tuiMode {
		dbg := debugger.NewDebugger(sess)

		if *tuiMode {
			if err := debugger.RunTUI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Println("thumbsim debugger - Type 'help' for commands")
			fmt.Printf("Image loaded: %s\n\n", imagePath)

			if err := debugger.RunCLI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
				os.Exit(1)
			}
		}
		return
	}

	if err := sess.Continue(); err != nil {
		fmt.Fprintf(os.Stderr, "\nRuntime error at PC=0x%08X: %v\n", sess.RegisterState().PC, err)
		os.Exit(1)
	}
}

func runAPIServer(port int) {
	server := api.NewServer(port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var shutdownOnce sync.Once
	performShutdown := func() {
		shutdownOnce.Do(func() {
			fmt.Println("\nShutting down API server...")

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
				os.Exit(1)
			}

			fmt.Println("API server stopped")
			os.Exit(0)
		})
	}

	monitor := api.NewProcessMonitor(performShutdown)
	monitor.Start()

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "API server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-sigChan
	performShutdown()
}

func parseAddress(s string) (uint32, error) {
	var v uint32
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		if _, err := fmt.Sscanf(s, "0x%x", &v); err != nil {
			return 0, err
		}
		return v, nil
	}
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		return 0, err
	}
	return v, nil
}

type bytesReaderAtType struct {
	data []byte
}

func bytesReaderAt(data []byte) *bytesReaderAtType {
	return &bytesReaderAtType{data: data}
}

func (r *bytesReaderAtType) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(r.data)) {
		return 0, fmt.Errorf("offset %d out of range", off)
	}
	n := copy(p, r.data[off:])
	if n < len(p) {
		return n, fmt.Errorf("short read at offset %d", off)
	}
	return n, nil
}

func printHelp() {
	fmt.Printf(`thumbsim %s

Usage: thumbsim [options] <image-file>
       thumbsim -api-server [-port N]

Options:
  -help              Show this help message
  -version           Show version information
  -api-server        Start HTTP API server mode (no image file required)
  -port N            API server port (default: 8080, used with -api-server)
  -elf               Treat the input file as an ELF32 image
  -load-addr ADDR    Load address for a raw image (default: 0x1000)
  -stack-top ADDR    Initial stack pointer, 0 to leave SP at reset (default: 0)
  -debug             Start in debugger mode (CLI)
  -tui               Start in TUI debugger mode

Debugger Commands (when in -debug or -tui mode):
  run, r             Start/continue execution
  step, s            Execute a single instruction
  break ADDR         Set a breakpoint at an address
  delete ADDR        Remove a breakpoint
  info, i            Show registers or breakpoints
  x ADDR [N]         Examine memory
  list, l [ADDR]     Disassemble starting at PC or an address
  reset              Reset to the image's entry point
  help               Show debugger help

Examples:
  # Start the API server for GUI/TUI frontends
  thumbsim -api-server
  thumbsim -api-server -port 3000

  # Run a raw Thumb image directly
  thumbsim -load-addr 0x1000 firmware.bin

  # Run an ELF32 image directly
  thumbsim -elf firmware.elf

  # Run with the CLI debugger
  thumbsim -debug -load-addr 0x1000 firmware.bin

  # Run with the TUI debugger
  thumbsim -tui -elf firmware.elf
`, Version)
}
