package scoring

import (
	"fmt"
	"sort"
	"strings"
)

func PlotSharesTerminal(entities []string, shares []float64, title string) {
	if len(shares) == 0 {
		fmt.Printf("\n%s: no entities to plot\n", title)
		return
	}

	type entityShare struct {
		Entity string
		Share  float64
	}

	plotted := make([]entityShare, len(shares))
	for i := range shares {
		name := fmt.Sprintf("entity-%d", i)
		if i < len(entities) {
			name = entities[i]
		}
		plotted[i] = entityShare{Entity: name, Share: shares[i]}
	}

	// Sort by share in ascending order
	sort.Slice(plotted, func(i, j int) bool {
		return plotted[i].Share < plotted[j].Share
	})

	minShare := plotted[0].Share
	maxShare := plotted[len(plotted)-1].Share

	fmt.Printf("\n%s (Terminal Plot - Ascending Order):\n", title)
	fmt.Println("Entity          | Share    | Bar Chart")
	fmt.Println("----------------|----------|" + strings.Repeat("-", 50))

	maxBarWidth := 50
	for _, es := range plotted {
		var barWidth int
		if maxShare != minShare {
			barWidth = int((es.Share - minShare) / (maxShare - minShare) * float64(maxBarWidth))
		} else {
			barWidth = maxBarWidth / 2
		}

		bar := strings.Repeat("█", barWidth)
		if barWidth == 0 {
			bar = "▏"
		}

		fmt.Printf("%-15s | %.6f | %s (%.4f)\n", es.Entity, es.Share, bar, es.Share)
	}

	fmt.Printf("\nScale: Min=%.6f, Max=%.6f\n", minShare, maxShare)
}
