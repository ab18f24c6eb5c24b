// README: Console intake chat against in-memory stores; uses the configured model and maps keys when present.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"fria/internal/ai"
	"fria/internal/config"
	"fria/internal/logging"
	"fria/internal/maps"
	"fria/internal/modules/form"
	"fria/internal/modules/intake"
	"fria/internal/modules/towrequest"
)

const help = `commands: /gps <lat> <lon>  /form  /restart  /quit`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.New("warn", "text")
	ctx := context.Background()

	var llm ai.LLM
	if cfg.AI.APIKey() != "" {
		base, closeLLM, err := ai.NewFromConfig(ctx, cfg.AI, logger)
		if err != nil {
			log.Fatalf("Failed to initialize AI provider: %v", err)
		}
		defer closeLLM()
		llm = base
	} else {
		fmt.Println("(no model key set; using canned questions and a tow reason heuristic)")
	}

	var geocoder intake.Geocoder
	if cfg.Maps.APIKey != "" {
		svc, err := maps.NewGeocodeService(cfg.Maps.APIKey, maps.Options{Language: cfg.Maps.Language, Region: cfg.Maps.Region, Timeout: cfg.Maps.Timeout}, logger)
		if err != nil {
			log.Fatalf("Failed to initialize maps: %v", err)
		}
		geocoder = svc
	}

	forms, err := form.NewService(nil, cfg.Intake.RequiredFields)
	if err != nil {
		log.Fatal(err)
	}
	router, err := intake.NewRouter(forms.ListRequired())
	if err != nil {
		log.Fatal(err)
	}
	tows := towrequest.NewService(towrequest.NewMemoryStore())
	svc := intake.NewService(intake.ServiceDeps{
		Engine: intake.NewEngine(router, llm, geocoder, logger),
		Repo:   intake.NewMemoryStore(),
		Tows:   tows,
		Log:    logger,
	})

	sess, out, err := svc.Start(ctx, "demo")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(help)
	fmt.Printf("Assistant: %s\n", out.LastMessage)

	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !in.Scan() {
			return
		}
		line := strings.TrimSpace(in.Text())
		var turn intake.InboundTurn
		switch {
		case line == "/quit":
			return
		case line == "/form":
			printForm(ctx, svc, sess.ID)
			continue
		case line == "/restart":
			out, err = svc.Restart(ctx, sess.ID)
			if err != nil {
				fmt.Printf("restart failed: %v\n", err)
				continue
			}
			fmt.Printf("Assistant: %s\n", out.LastMessage)
			continue
		case strings.HasPrefix(line, "/gps"):
			lat, lon, ok := parseGPS(line)
			if !ok {
				fmt.Println("usage: /gps <lat> <lon>")
				continue
			}
			turn = intake.InboundTurn{Lat: &lat, Lon: &lon}
		default:
			turn = intake.InboundTurn{Text: line}
		}

		out, err = svc.Continue(ctx, sess.ID, turn)
		if err != nil {
			fmt.Printf("turn failed: %v\n", err)
			continue
		}
		if out.ResolvedAddress != "" {
			fmt.Printf("(location: %s)\n", out.ResolvedAddress)
		}
		fmt.Printf("Assistant: %s\n", out.LastMessage)
		if out.Done {
			printForm(ctx, svc, sess.ID)
			return
		}
	}
}

func parseGPS(line string) (float64, float64, bool) {
	parts := strings.Fields(line)
	if len(parts) != 3 {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(parts[1], 64)
	lon, err2 := strconv.ParseFloat(parts[2], 64)
	return lat, lon, err1 == nil && err2 == nil
}

func printForm(ctx context.Context, svc *intake.Service, id string) {
	sess, err := svc.Get(ctx, id)
	if err != nil {
		fmt.Printf("load failed: %v\n", err)
		return
	}
	wire := sess.Form.Wire()
	keys := make([]string, 0, len(wire))
	for k := range wire {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := "-"
		if wire[k] != nil {
			v = *wire[k]
		}
		fmt.Printf("  %-26s %s\n", k, v)
	}
	if sess.TowRequestID != "" {
		fmt.Printf("  tow request %s submitted\n", sess.TowRequestID)
	}
}
