// Command catalogcheck loads the unit, building and card templates the
// server would load, runs the same validation and prints a summary.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/fourfront/fourfront-server/internal/game/effects"
	"github.com/fourfront/fourfront-server/internal/game/templates"
)

var dir = flag.String("dir", "", "template directory (defaults to the embedded templates)")

func main() {
	flag.Parse()

	source := *dir
	if source == "" {
		source = "embedded"
	}
	fmt.Println("=== Template Catalog Check ===")
	fmt.Printf("Source: %s\n", source)

	var (
		catalog *templates.Catalog
		err     error
	)
	if *dir == "" {
		catalog, err = templates.LoadBuiltin()
	} else {
		catalog, err = templates.LoadDir(*dir)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Templates parsed and validated")

	problems := check(catalog)

	fmt.Printf("\nUnits: %d  Buildings: %d  Cards: %d\n",
		len(catalog.Units), len(catalog.Buildings), len(catalog.Cards))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\nFACTION\tDECK\tUNIT\tBUILDING\tOTHER")
	for _, f := range []templates.Faction{templates.FactionT, templates.FactionM, templates.FactionS, templates.FactionA} {
		byType := map[templates.CardType]int{}
		deck := catalog.DeckFor(f)
		for _, card := range deck {
			byType[card.Type]++
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", f, len(deck),
			byType[templates.CardUnit], byType[templates.CardBuilding], byType[templates.CardOther])
	}
	w.Flush()

	kinds := effectKinds(catalog)
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, string(k))
	}
	sort.Strings(names)
	fmt.Println("\nEffects in use:")
	for _, name := range names {
		fmt.Printf("  %-14s %d\n", name, kinds[effects.Kind(name)])
	}

	if len(problems) > 0 {
		fmt.Println("\n=== Problems ===")
		for _, p := range problems {
			fmt.Printf("✗ %s\n", p)
		}
		os.Exit(1)
	}
	fmt.Println("\n=== Catalog OK ===")
}

// check reports setup problems the loader does not treat as fatal.
func check(catalog *templates.Catalog) []string {
	var problems []string
	hq, ok := catalog.Headquarters()
	if !ok {
		problems = append(problems, "no Headquarters building")
	} else if hq.Size < 1 {
		problems = append(problems, "Headquarters has no footprint")
	}
	for _, f := range []templates.Faction{templates.FactionT, templates.FactionM, templates.FactionS, templates.FactionA} {
		if len(catalog.DeckFor(f)) == 0 {
			problems = append(problems, fmt.Sprintf("faction %s has an empty deck", f))
		}
	}
	return problems
}

func effectKinds(catalog *templates.Catalog) map[effects.Kind]int {
	kinds := make(map[effects.Kind]int)
	count := func(list []effects.Effect) {
		for _, e := range list {
			kinds[e.Kind]++
		}
	}
	for _, card := range catalog.Cards {
		count(card.Effects)
	}
	for _, u := range catalog.Units {
		for _, a := range u.Actives {
			count(a.Effects)
		}
	}
	for _, b := range catalog.Buildings {
		for _, a := range b.Actives {
			count(a.Effects)
		}
	}
	return kinds
}
