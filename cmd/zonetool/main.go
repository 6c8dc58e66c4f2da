package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"wildstep/internal/config"
	"wildstep/internal/encounter"
	"wildstep/internal/game"
	"wildstep/internal/maps"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "validate":
		os.Exit(runValidate(args))
	case "stats":
		os.Exit(runStats(args))
	case "simulate":
		os.Exit(runSimulate(args))
	case "viz":
		os.Exit(runViz(args))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: zonetool <command> [flags]

Commands:
  validate   Check zones against the maps and the bestiary
  stats      Show expected steps per encounter for every zone
  simulate   Walk N steps through one zone and tally encounters
  viz        Render a map with its encounter zones as colored ASCII

Run "zonetool <command> -h" for the flags of a command.`)
}

type paths struct {
	maps, zones, bestiary string
}

func pathFlags(fs *flag.FlagSet) *paths {
	p := &paths{}
	fs.StringVar(&p.maps, "maps", config.DefaultMapsDir, "maps directory")
	fs.StringVar(&p.zones, "zones", config.DefaultZonesFile, "zones YAML file")
	fs.StringVar(&p.bestiary, "bestiary", config.DefaultBestiaryFile, "bestiary YAML file")
	return p
}

// --- validate ---

func runValidate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	p := pathFlags(fs)
	fs.Parse(args)

	allMaps, err := maps.LoadMaps(p.maps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		return 1
	}
	zones, err := maps.LoadZones(p.zones)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		return 1
	}
	bestiary, err := game.LoadBestiary(p.bestiary)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		return 1
	}

	problems := 0
	report := func(err error) {
		if err == nil {
			return
		}
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Printf("  ERROR: %s\n", line)
			problems++
		}
	}

	fmt.Printf("Validating %d zones on %d maps...\n", len(zones), len(allMaps))
	report(maps.ValidateRegions(zones, allMaps))
	report(bestiary.CheckZones(zones))

	for i, a := range zones {
		for _, b := range zones[i+1:] {
			if a.Map == b.Map && overlaps(a.Rect, b.Rect) {
				fmt.Printf("  WARN: zones %q and %q overlap on %q; %q wins\n", a.Name(), b.Name(), a.Map, a.Name())
			}
		}
		if len(a.Config.Common)+len(a.Config.Uncommon)+len(a.Config.Rare) == 0 {
			fmt.Printf("  WARN: zone %q has no enemies; every encounter aborts\n", a.Name())
		}
	}

	if problems > 0 {
		fmt.Printf("\n%d error(s) found\n", problems)
		return 1
	}
	fmt.Printf("\nAll %d zones valid\n", len(zones))
	return 0
}

func overlaps(a, b maps.Rect) bool {
	return a.X < b.X+b.W && b.X < a.X+a.W && a.Y < b.Y+b.H && b.Y < a.Y+a.H
}

// --- stats ---

func runStats(args []string) int {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	p := pathFlags(fs)
	rate := fs.Float64("rate", 1, "global rate multiplier")
	fs.Parse(args)

	zones, err := maps.LoadZones(p.zones)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ZONE\tMAP\tCHANCE\tEVERY\tPARTY\tPOOLS C/U/R\tBOSS\tSTEPS/ENCOUNTER")
	for _, def := range zones {
		c := def.Config
		steps := "never"
		if exp := c.ExpectedSteps(*rate); !math.IsInf(exp, 1) {
			steps = fmt.Sprintf("%.0f", exp)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d%%\t%d\t%d-%d\t%d/%d/%d\t%t\t%s\n",
			c.Name, def.Map, c.BaseChance, c.CheckInterval, c.MinEnemies, c.MaxEnemies,
			len(c.Common), len(c.Uncommon), len(c.Rare), c.IsBoss, steps)
	}
	tw.Flush()
	return 0
}

// --- viz ---

// ansiColor returns the ANSI escape for the given code.
func ansiColor(code int) string {
	return fmt.Sprintf("\033[%dm", code)
}

// zoneColors are background codes cycled through for zones on the map.
var zoneColors = []int{41, 42, 43, 44, 45, 46}

func runViz(args []string) int {
	fs := flag.NewFlagSet("viz", flag.ExitOnError)
	p := pathFlags(fs)
	mapName := fs.String("map", config.DefaultMapName, "map to draw")
	fs.Parse(args)

	allMaps, err := maps.LoadMaps(p.maps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	m, ok := allMaps[*mapName]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: %v %q\n", maps.ErrUnknownMap, *mapName)
		return 1
	}
	zones, err := maps.LoadZones(p.zones)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	colorOf := make(map[string]int)
	for _, def := range zones {
		if def.Map == m.Name {
			colorOf[def.Name()] = zoneColors[len(colorOf)%len(zoneColors)]
		}
	}

	fmt.Printf("%s (%dx%d)\n", m.Name, m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			tile := m.TileAt(x, y)
			bg := ""
			if def, ok := maps.ZoneAt(zones, m.Name, x, y); ok {
				bg = ansiColor(colorOf[def.Name()])
			}
			ch := string(tile.Char)
			if x == m.SpawnX && y == m.SpawnY {
				ch = "@"
			}
			fmt.Print(bg, ansiColor(tile.Fg), ch, "\033[0m")
		}
		fmt.Println()
	}

	names := make([]string, 0, len(colorOf))
	for name := range colorOf {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println()
	for _, name := range names {
		fmt.Printf("%s  %s\033[0m  %s\n", ansiColor(colorOf[name]), "  ", name)
	}
	fmt.Printf("Spawn: (%d,%d)\n", m.SpawnX, m.SpawnY)
	for _, pt := range m.Portals {
		fmt.Printf("Portal: (%d,%d) → %s (%d,%d)\n", pt.X, pt.Y, pt.TargetMap, pt.TargetX, pt.TargetY)
	}
	return 0
}

// --- simulate ---

func runSimulate(args []string) int {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	p := pathFlags(fs)
	zoneName := fs.String("zone", "", "zone to walk through (required)")
	steps := fs.Int("steps", 10000, "steps to take")
	seed := fs.Uint64("seed", 1, "random seed")
	rate := fs.Float64("rate", 1, "global rate multiplier")
	repel := fs.Bool("repel", false, "walk with a repel active")
	lure := fs.Bool("lure", false, "walk with a lure active")
	fs.Parse(args)

	zones, err := maps.LoadZones(p.zones)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	var cfg encounter.ZoneConfig
	found := false
	for _, def := range zones {
		if def.Name() == *zoneName {
			cfg, found = def.Config, true
			break
		}
	}
	if !found {
		fmt.Fprintf(os.Stderr, "Error: unknown zone %q\n", *zoneName)
		return 1
	}

	sim := newSimulation(encounter.NewSeededRNG(*seed))
	encounter.Install(sim.newManager(*rate, *repel, *lure))
	res, err := sim.run(encounter.Instance(), cfg, *steps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	res.print(os.Stdout, cfg, encounter.Instance().EffectiveRate())
	return 0
}
