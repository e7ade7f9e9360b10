// scorepairs renders candidate confusable pairs in one or more fonts,
// scores each (pair, font) combination for visual similarity, and
// writes one TSV row per combination in input order.
//
// Usage:
//
//	scorepairs -pairs candidates.tsv -fonts "DejaVu Sans,Arial" [-workers 8]
//
// The pairs file holds one source<TAB>target candidate per line. The
// embedded Go Regular face is always available as a fallback font.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/wbrown/glyphsim"
	"github.com/wbrown/glyphsim/imageutil"
)

func main() {
	pairsPath := flag.String("pairs", "", "candidate pair list (source<TAB>target per line)")
	fontList := flag.String("fonts", glyphsim.FallbackFamily, "comma-separated font families")
	workers := flag.Int("workers", 0, "worker pool size (0 = one per CPU)")
	renderSize := flag.Int("size", glyphsim.DefaultRenderSize, "render size in points")
	minInk := flag.Float64("min-ink", glyphsim.DefaultMinInkCoverage, "minimum ink coverage fraction")
	maxRatio := flag.Float64("max-width-ratio", glyphsim.DefaultMaxWidthRatio, "maximum ink width ratio")
	debugDir := flag.String("debug-dir", "", "dump raw renders for scored pairs to this directory")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	if *pairsPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*pairsPath)
	if err != nil {
		log.Fatalf("open pairs: %v", err)
	}
	pairs, err := glyphsim.ReadPairs(f)
	f.Close()
	if err != nil {
		log.Fatalf("parse pairs: %v", err)
	}
	log.Infof("loaded %d candidate pairs", len(pairs))

	families := strings.Split(*fontList, ",")
	for i := range families {
		families[i] = strings.TrimSpace(families[i])
	}
	registry, err := glyphsim.NewFontRegistry(dropFallback(families)...)
	if err != nil {
		log.Fatalf("font registry: %v", err)
	}

	var fonts []*glyphsim.FontInfo
	for _, family := range families {
		info, ok := registry.Lookup(family)
		if !ok {
			log.Warnf("font %s not registered, skipping", family)
			continue
		}
		if !info.Available {
			log.Warnf("font %s not found on this host, skipping", family)
			continue
		}
		log.Debugf("font %s (%s) at %s", info.Family, info.Category, info.Path)
		fonts = append(fonts, info)
	}
	if len(fonts) == 0 {
		log.Fatal("no usable fonts")
	}

	scorer := glyphsim.NewScorer(registry,
		glyphsim.WithWorkers(*workers),
		glyphsim.WithRenderSize(*renderSize),
		glyphsim.WithInkThreshold(*minInk),
		glyphsim.WithMaxWidthRatio(*maxRatio),
	)

	batch := make([]glyphsim.BatchItem, len(pairs))
	for i, pair := range pairs {
		batch[i] = glyphsim.BatchItem{
			PairIndex: i,
			Source:    pair.Source,
			Target:    pair.Target,
			Fonts:     fonts,
		}
	}

	rows, err := scorer.ScoreBatch(batch)
	if err != nil {
		log.Fatalf("scoring batch: %v", err)
	}

	fmt.Println("pair_index\tsource\ttarget\tfont\tscore\tfiltered\treason")
	for _, row := range rows {
		pair := pairs[row.PairIndex]
		if row.Err != nil {
			log.Warnf("pair %d (%q vs %q) in %s: %v",
				row.PairIndex, pair.Source, pair.Target, row.FontFamily, row.Err)
		}
		score := ""
		if row.Scored {
			score = fmt.Sprintf("%.5f", row.Score)
		}
		fmt.Printf("%d\t%s\t%s\t%s\t%s\t%t\t%s\n",
			row.PairIndex, pair.Source, pair.Target, row.FontFamily,
			score, row.Filtered, row.FilterReason)

		if *debugDir != "" && row.Scored {
			dumpRenders(scorer, pair, row.FontFamily, registry, *debugDir)
		}
	}
}

// dumpRenders writes the raw renders of a scored pair for inspection.
func dumpRenders(scorer *glyphsim.Scorer, pair glyphsim.ConfusablePair, family string, registry *glyphsim.FontRegistry, dir string) {
	info, ok := registry.Lookup(family)
	if !ok {
		return
	}
	for side, text := range map[string]string{"src": pair.Source, "tgt": pair.Target} {
		render, err := scorer.Renderer().Render(text, info)
		if err != nil {
			continue
		}
		g, _, err := glyphsim.DecodeAndFindBounds(render.ImageBytes)
		if err != nil {
			continue
		}
		path := fmt.Sprintf("%s/%s_%s_%x.png", dir, family, side, text)
		if err := imageutil.SavePNG(g.Gray, path); err != nil {
			log.Warnf("debug dump %s: %v", path, err)
		}
	}
}

// dropFallback removes the embedded fallback family from the lookup
// list; the registry always adds it itself.
func dropFallback(families []string) []string {
	var out []string
	for _, f := range families {
		if f != "" && f != glyphsim.FallbackFamily {
			out = append(out, f)
		}
	}
	return out
}
