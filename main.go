package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	ilog "github.com/milk9111/stalker/internal/log"
	"github.com/milk9111/stalker/levels"
)

func main() {
	debug := flag.Bool("debug", false, "draw collision shapes")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	levelName := flag.String("level", levels.Default, "level name in levels/ (basename, .json optional)")
	profile := flag.String("profile", "", "stalker profile from prefabs/stalker.yaml")
	seed := flag.Uint64("seed", 0, "patrol random seed (0 picks one)")
	logLevel := flag.String("log", "info", "log level: debug, info, warn, error")
	flag.Parse()

	ilog.Init(*logLevel)

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	w, h := ebiten.Monitor().Size()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("stalker")

	game, err := NewGame(*levelName, *profile, *seed, *debug)
	if err != nil {
		log.Fatal(err)
	}

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
