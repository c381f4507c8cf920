package main

import (
	"bufio"
	"flag"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"Go2PayloadScan/internal/capgen"
	"Go2PayloadScan/internal/config"
	"Go2PayloadScan/internal/model"
)

// fillerWords never contain any of the default patterns.
var fillerWords = []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel"}

func main() {
	outputFile := flag.String("o", "test.pcap", "Output pcap file path")
	packetCount := flag.Int("c", 1000, "Number of packets to generate")
	modeName := flag.String("mode", "udp", "Transport of the generated packets: udp or tcp")
	hitRatio := flag.Float64("hits", 0.3, "Fraction of payloads that carry a target pattern")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	mode, err := model.ParseMode(*modeName)
	if err != nil {
		log.Fatalf("Invalid mode: %v", err)
	}

	f, err := os.Create(*outputFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	rng := rand.New(rand.NewSource(*seed))
	log.Printf("Generating %d %s packets into %s...", *packetCount, mode, *outputFile)

	expected := make(map[string]int)
	frames := make([][]byte, 0, *packetCount)
	for i := 0; i < *packetCount; i++ {
		if (i+1)%100000 == 0 {
			log.Printf("Generated %d packets...", i+1)
		}

		words := make([]string, 0, 8)
		for j := rng.Intn(6) + 2; j > 0; j-- {
			words = append(words, fillerWords[rng.Intn(len(fillerWords))])
		}
		if rng.Float64() < *hitRatio {
			p := config.DefaultPatterns[rng.Intn(len(config.DefaultPatterns))]
			words = append(words, p)
			expected[p]++
		}

		frame, err := capgen.Frame(mode, strings.Join(words, " "))
		if err != nil {
			log.Fatalf("Failed to build packet %d: %v", i, err)
		}
		frames = append(frames, frame)
	}

	if err := capgen.WriteCapture(w, frames, time.Now()); err != nil {
		log.Fatalf("Failed to write capture: %v", err)
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("Failed to flush capture: %v", err)
	}

	log.Printf("Successfully generated %d packets into %s.", *packetCount, *outputFile)
	for _, p := range config.DefaultPatterns {
		log.Printf("  %s: %d", p, expected[p])
	}
}
