// Generates synthetic backend responses for highlighter benchmarks.
//
// Usage:
//
//	go run scripts/generate_benchdata.go -out internal/highlight/testdata/bench -sizes 1,5,10
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func main() {
	var (
		outDir = flag.String("out", "internal/highlight/testdata/bench", "output directory")
		sizes  = flag.String("sizes", "1,5,10", "comma-separated sizes in MB")
		force  = flag.Bool("force", false, "overwrite existing files")
	)
	flag.Parse()

	sizeList, err := parseSizes(*sizes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating %s: %v\n", *outDir, err)
		os.Exit(1)
	}

	for _, mb := range sizeList {
		filename := filepath.Join(*outDir, fmt.Sprintf("history-%dmb.json", mb))
		if !*force {
			if _, err := os.Stat(filename); err == nil {
				fmt.Printf("skip %s (already exists)\n", filename)
				continue
			}
		}

		data := syntheticHistory(mb)
		if err := os.WriteFile(filename, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "error writing %s: %v\n", filename, err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s (%d bytes)\n", filename, len(data))
	}
}

func parseSizes(input string) ([]int, error) {
	parts := strings.Split(input, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid size %q", p)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no valid sizes provided")
	}
	return out, nil
}

// syntheticHistory emits a recommendation-history response shaped like the
// backend's, padded to roughly sizeMB. Deterministic so benchmark runs are
// comparable.
func syntheticHistory(sizeMB int) []byte {
	targetBytes := sizeMB * 1024 * 1024
	if targetBytes < 1024 {
		targetBytes = 1024
	}

	topics := []string{"algebra", "fractions", "geometry", "statistics"}
	strategies := []string{"adaptive", "sequential", "spaced_repetition"}

	var b strings.Builder
	b.Grow(targetBytes + 4096)
	b.WriteString(`{"user_id":1,"items":[`)

	for i := 0; b.Len() < targetBytes-1024; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(
			&b,
			`{"content_id":%d,"title":"lesson-%06d","topic":"%s","strategy":"%s","score":%.3f,"completed":%t,"attempts":%d,"feedback":null}`,
			i,
			i,
			topics[i%len(topics)],
			strategies[i%len(strategies)],
			float64(i%1000)/1000.0,
			i%2 == 0,
			i%7,
		)
	}

	b.WriteString(`],"strategy":"adaptive","generated":true}`)
	return []byte(b.String())
}
