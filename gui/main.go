package main

import (
	"embed"
	"flag"
	"log"
	"os"

	"github.com/dmillard/thumbsim/service"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	loadAddr := flag.Uint("load-addr", 0x1000, "address at which to load a raw image")
	stackTop := flag.Uint("stack-top", 0, "initial stack pointer (0 selects a default)")
	elf := flag.Bool("elf", false, "treat the positional argument as an ELF32 image")
	flag.Parse()

	app := NewApp()

	if flag.NArg() > 0 {
		filePath := flag.Arg(0)
		// #nosec G304 -- filePath comes from a command-line argument, user-controlled by design
		data, err := os.ReadFile(filePath)
		if err != nil {
			log.Fatalf("Failed to read file %s: %v", filePath, err)
		}

		if *elf {
			s, err := service.NewSessionFromELF(newByteReaderAt(data), uint32(*stackTop))
			if err != nil {
				log.Fatalf("Failed to load ELF image: %v", err)
			}
			app.session = s
		} else if err := app.LoadImage(data, uint32(*loadAddr), uint32(*stackTop)); err != nil {
			log.Fatalf("Failed to load image: %v", err)
		}
	}

	err := wails.Run(&options.App{
		Title:  "thumbsim",
		Width:  1280,
		Height: 800,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup:        app.startup,
		Bind: []interface{}{
			app,
		},
	})

	if err != nil {
		log.Fatal(err)
	}
}
