// Command movie-search is an interactive terminal client. Each line you
// type updates the query; results arrive asynchronously through the
// debounced search session.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/anon381/Movie-Search-App/internal/config"
	"github.com/anon381/Movie-Search-App/internal/models"
	"github.com/anon381/Movie-Search-App/internal/provider"
	"github.com/anon381/Movie-Search-App/internal/search"
)

func main() {
	debounce := flag.Duration("debounce", search.DefaultDebounce, "query settle delay")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	prov, err := provider.New(cfg.Provider)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	session := search.NewSession(prov, search.NewCache(), *debounce, nil)
	defer session.Close()

	updates, unsubscribe := session.Subscribe()
	defer unsubscribe()
	go render(updates)

	fmt.Printf("movie search (%s) — type to search, :help for commands\n", prov.ID())
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == ":quit" || line == ":q":
			return
		case line == ":help":
			printHelp()
		case strings.HasPrefix(line, ":page "):
			if n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, ":page "))); err == nil {
				session.SetPage(n)
			}
		case strings.HasPrefix(line, ":year "):
			session.SetYear(strings.TrimSpace(strings.TrimPrefix(line, ":year ")))
		case strings.HasPrefix(line, ":type "):
			session.SetType(strings.TrimSpace(strings.TrimPrefix(line, ":type ")))
		case strings.HasPrefix(line, ":details "):
			showDetails(prov, strings.TrimSpace(strings.TrimPrefix(line, ":details ")))
		default:
			session.SetText(line)
		}
	}
}

func render(updates <-chan search.State) {
	for st := range updates {
		switch {
		case st.Loading:
			fmt.Println("  searching...")
		case st.Err != nil:
			fmt.Println("  error:", st.Err)
		case len(st.Items) == 0 && len(strings.TrimSpace(st.Query.Text)) >= models.MinQueryLen:
			fmt.Println("  no results")
		default:
			for _, item := range st.Items {
				fmt.Printf("  %-12s %s (%s)\n", item.ID, item.Title, item.Year)
			}
			if st.TotalPages > 1 {
				fmt.Printf("  page %d / %d (%d results)\n", st.Query.Page, st.TotalPages, st.Total)
			}
		}
	}
}

func showDetails(prov provider.Provider, id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	d, err := prov.Details(ctx, id)
	if err != nil {
		fmt.Println("  error:", err)
		return
	}
	fmt.Printf("  %s (%s)\n  %s\n  director: %s\n  cast: %s\n  %s, rated %s\n",
		d.Title, d.Year, d.Plot, d.Director, d.Actors, d.Runtime, d.Rating)
}

func printHelp() {
	fmt.Println(`  <text>          search as you type
  :page N         jump to page N
  :year YYYY      filter by year (empty to clear)
  :type T         movie | series | all
  :details ID     show full details
  :quit           exit`)
}
