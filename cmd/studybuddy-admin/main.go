// ABOUTME: Admin CLI for managing the studybuddy learning resource catalog
// ABOUTME: Adds and lists resources directly against the SQLite store

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/studybuddy/studybuddy/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	dbPath := os.Getenv("STUDYBUDDY_DB")
	if dbPath == "" {
		dbPath = "studybuddy.db"
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "resources":
		err = cmdResources(dbPath, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// cmdResources handles resources subcommands
func cmdResources(dbPath string, args []string) error {
	// Default to list
	subcmd := "list"
	if len(args) > 0 {
		subcmd = args[0]
		args = args[1:]
	}

	switch subcmd {
	case "list":
		return cmdResourcesList(dbPath)
	case "add", "create":
		return cmdResourcesAdd(dbPath, args)
	default:
		return fmt.Errorf("unknown resources subcommand: %s (use list, add)", subcmd)
	}
}

func printUsage() {
	yellow := color.New(color.FgYellow)

	fmt.Println("Usage: studybuddy-admin <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  resources list                                            List all resources")
	fmt.Println("  resources add --subject S --kind K --title T --link URL   Add a learning resource")
	fmt.Println()
	yellow.Println("Kinds:")
	fmt.Println("  Article, Video, Tutorial")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  STUDYBUDDY_DB   SQLite database path (default: ./studybuddy.db)")
}

func cmdResourcesAdd(dbPath string, args []string) error {
	fs := flag.NewFlagSet("resources add", flag.ExitOnError)
	subject := fs.String("subject", "", "subject the resource belongs to")
	kind := fs.String("kind", "", "resource kind: Article, Video, or Tutorial")
	title := fs.String("title", "", "resource title")
	link := fs.String("link", "", "resource URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	parsedKind, err := store.ParseKind(*kind)
	if err != nil {
		return err
	}

	r := &store.Resource{
		Subject: *subject,
		Kind:    parsedKind,
		Title:   *title,
		Link:    *link,
	}
	// Validation happens again inside CreateResource; failing here keeps
	// the store untouched on bad input.
	if err := r.Validate(); err != nil {
		return err
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()

	if err := s.CreateResource(context.Background(), r); err != nil {
		return err
	}

	color.Green("Ресурс %q успешно добавлен.", r.Title)
	return nil
}

func cmdResourcesList(dbPath string) error {
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()

	resources, err := s.ListResources(context.Background())
	if err != nil {
		return err
	}

	if len(resources) == 0 {
		fmt.Println("No resources.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSUBJECT\tKIND\tTITLE\tLINK")
	for _, r := range resources {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.Subject, r.Kind, r.Title, r.Link)
	}
	return w.Flush()
}
