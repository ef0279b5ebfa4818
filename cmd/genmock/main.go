// Command genmock writes synthetic fixed-width NCDC record files for tests
// and demos. The generated mix includes clean records plus a controlled dose
// of the dirt the pipeline must tolerate: short lines, malformed temperature
// fields, missing-reading sentinels, and untrusted quality codes.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/1930s.txt -lines 10000 -seed 1
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
)

// Field offsets matching the NCDC fixed-width layout.
const (
	yearStart     = 15
	tempStart     = 87
	qualityPos    = 92
	mockRecordLen = 105
)

var years = []string{"1929", "1930", "1931", "1932", "1933"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the generated record file")
	lines := flag.Int("lines", 10000, "number of lines to generate")
	seed := flag.Int64("seed", 1, "RNG seed, fixed for reproducible fixtures")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	rng := rand.New(rand.NewSource(*seed))
	w := bufio.NewWriter(f)

	var clean, short, malformed, sentinel, untrusted int
	for i := 0; i < *lines; i++ {
		switch roll := rng.Float64(); {
		case roll < 0.02:
			short++
			fmt.Fprintln(w, randomDigits(rng, 1+rng.Intn(92)))
		case roll < 0.04:
			malformed++
			fmt.Fprintln(w, mockLine(rng, randomYear(rng), "?????", '1'))
		case roll < 0.09:
			sentinel++
			fmt.Fprintln(w, mockLine(rng, randomYear(rng), "+9999", randomTrustedQuality(rng)))
		case roll < 0.14:
			untrusted++
			fmt.Fprintln(w, mockLine(rng, randomYear(rng), randomTemperature(rng), '2'))
		default:
			clean++
			fmt.Fprintln(w, mockLine(rng, randomYear(rng), randomTemperature(rng), randomTrustedQuality(rng)))
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	fmt.Printf("wrote %d lines to %s: %d clean, %d short, %d malformed, %d sentinel, %d untrusted\n",
		*lines, *out, clean, short, malformed, sentinel, untrusted)
	return nil
}

// mockLine builds one record line: random digit filler with the year,
// temperature, and quality fields at their fixed offsets.
func mockLine(rng *rand.Rand, year, temp string, quality byte) string {
	b := []byte(randomDigits(rng, mockRecordLen))
	copy(b[yearStart:], year)
	copy(b[tempStart:], temp)
	b[qualityPos] = quality
	return string(b)
}

func randomDigits(rng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + rng.Intn(10))
	}
	return string(b)
}

func randomYear(rng *rand.Rand) string {
	return years[rng.Intn(len(years))]
}

// randomTemperature draws from a plausible range, -300 to +400 tenths of a
// degree, in wire encoding.
func randomTemperature(rng *rand.Rand) string {
	v := rng.Intn(701) - 300
	if v < 0 {
		return fmt.Sprintf("-%04d", -v)
	}
	return fmt.Sprintf("+%04d", v)
}

func randomTrustedQuality(rng *rand.Rand) byte {
	trusted := []byte{'0', '1', '4', '5', '9'}
	return trusted[rng.Intn(len(trusted))]
}
