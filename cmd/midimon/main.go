// midimon lists MIDI ports and prints what the default mapping decodes,
// for checking a control surface before a show.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	gmidi "gig-director/midi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "watch":
		match := ""
		if len(os.Args) > 2 {
			match = os.Args[2]
		}
		watch(match)
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI surface monitor")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list           - List all MIDI input ports")
	fmt.Println("  watch [match]  - Print decoded controls from matching ports")
}

func inPorts() ([]drivers.In, bool) {
	ch := make(chan []drivers.In, 1)
	go func() { ch <- midi.GetInPorts() }()
	select {
	case ins := <-ch:
		return ins, true
	case <-time.After(3 * time.Second):
		return nil, false
	}
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	ins, ok := inPorts()
	if !ok {
		fmt.Println("\nTIMEOUT! The MIDI service is hung.")
		return
	}
	for i, p := range ins {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
}

func watch(match string) {
	ins, ok := inPorts()
	if !ok {
		fmt.Println("TIMEOUT listing ports")
		return
	}

	controls := make(chan gmidi.Control, 64)
	var surfaces []*gmidi.Surface
	for _, p := range ins {
		if match != "" && !strings.Contains(strings.ToLower(p.String()), strings.ToLower(match)) {
			continue
		}
		s, err := gmidi.OpenSurface(p.String(), p, gmidi.DefaultMapping(), controls)
		if err != nil {
			fmt.Printf("skip %s: %v\n", p.String(), err)
			continue
		}
		fmt.Printf("listening on %s\n", p.String())
		surfaces = append(surfaces, s)
	}
	if len(surfaces) == 0 {
		fmt.Println("No matching input ports")
		return
	}
	defer func() {
		for _, s := range surfaces {
			s.Close()
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	fmt.Println("Ctrl+C to exit.")
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-controls:
			switch c.Kind {
			case gmidi.ControlIntensity, gmidi.ControlMood:
				fmt.Printf("[%s] %-9s %.2f\n", time.Now().Format("15:04:05"), c.Kind, c.Value)
			case gmidi.ControlRole:
				fmt.Printf("[%s] %-9s %s\n", time.Now().Format("15:04:05"), c.Kind, c.Role)
			default:
				fmt.Printf("[%s] %s\n", time.Now().Format("15:04:05"), c.Kind)
			}
		}
	}
}
