package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"

	"github.com/eringen/folio"
	"github.com/eringen/folio/search"
	"github.com/eringen/folio/views"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	markStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "search":
		err = runSearch(os.Args[2:])
	case "tags":
		err = runTags(os.Args[2:])
	case "version":
		fmt.Printf("folio %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func printUsage() {
	fmt.Println(`folio - A searchable blog and portfolio engine built with Go, Echo, and templ

Usage:
  folio <command> [arguments]

Commands:
  serve [config.yaml]          Run the site
  search [-compact] <query>    Search published posts
  tags                         List tags by post count
  version                      Print the folio version
  help                         Show this help message

Settings come from the config file and FOLIO_* environment variables.

Examples:
  folio serve folio.yaml
  folio search -compact templ
  FOLIO_DATABASE_PATH=blog.db folio tags`)
}

func runServe(args []string) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	cfg, err := folio.LoadConfig(path)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := folio.New(cfg, views.Default())
	log.Printf("folio %s listening on %s", version, cfg.Addr)
	return app.Run(ctx)
}

// openCache loads config from -config and returns a post cache over the
// configured database.
func openCache(fs *flag.FlagSet, args []string) (*folio.PostCache, func() error, error) {
	configPath := fs.String("config", "", "YAML config file")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	cfg, err := folio.LoadConfig(*configPath)
	if err != nil {
		return nil, nil, err
	}
	store, err := folio.NewStore(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	return folio.NewPostCache(store, cfg.PostCacheTTL), store.Close, nil
}

func runSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	compact := fs.Bool("compact", false, "use the header search bar variant")
	cache, closeStore, err := openCache(fs, args)
	if err != nil {
		return err
	}
	defer closeStore()

	query := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("usage: folio search [-compact] <query>")
	}
	v := search.FullVariant
	if *compact {
		v = search.CompactVariant
	}
	records, err := cache.Records()
	if err != nil {
		return err
	}
	entries := search.Entries(search.Search(query, records, v.Options), query, v)
	if len(entries) == 0 {
		fmt.Printf("No results found for %q\n", query)
		return nil
	}
	for _, e := range entries {
		fmt.Println(highlight(e.Title, titleStyle) + "  " + dimStyle.Render(e.Slug))
		if len(e.Description) > 0 {
			fmt.Println("  " + highlight(e.Description, lipgloss.NewStyle()))
		}
		if len(e.Excerpt) > 0 {
			fmt.Println("  " + highlight(e.Excerpt, dimStyle))
		}
	}
	fmt.Println(dimStyle.Render(search.CountLabel(len(entries))))
	return nil
}

func highlight(segs []search.Segment, base lipgloss.Style) string {
	var b strings.Builder
	for _, s := range segs {
		if s.Match {
			b.WriteString(markStyle.Render(s.Text))
			continue
		}
		b.WriteString(base.Render(s.Text))
	}
	return b.String()
}

func runTags(args []string) error {
	cache, closeStore, err := openCache(flag.NewFlagSet("tags", flag.ExitOnError), args)
	if err != nil {
		return err
	}
	defer closeStore()

	counts, err := cache.TagCounts()
	if err != nil {
		return err
	}
	for _, tc := range counts {
		fmt.Printf("%-24s %s\n", tc.Name, dimStyle.Render(fmt.Sprint(tc.Count)))
	}
	return nil
}
