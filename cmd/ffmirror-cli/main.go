package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ffmirror/ffmirror-go/internal/core"
	"github.com/ffmirror/ffmirror-go/internal/fetch"
	"github.com/ffmirror/ffmirror-go/internal/mirror"
	"github.com/ffmirror/ffmirror-go/internal/models"
	"github.com/ffmirror/ffmirror-go/internal/sites"
	"github.com/ffmirror/ffmirror-go/internal/sites/ffnet"
	"github.com/ffmirror/ffmirror-go/internal/store"
)

var maxAuthors int

func main() {
	log.SetOutput(os.Stderr)

	rootCmd := &cobra.Command{
		Use:   "ffmirror-cli",
		Short: "Maintain a local mirror of fan fiction metadata and stories",
	}

	addCmd := &cobra.Command{
		Use:   "add <site> <author-id>",
		Short: "Add an author to the mirror and download their stories",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, svc := setup()
			defer app.Close()
			ao, err := svc.SyncAuthor(args[0], args[1], consoleSink)
			if err != nil {
				return err
			}
			return svc.ArchiveAuthor(ao, consoleSink)
		},
	}

	syncCmd := &cobra.Command{
		Use:   "sync <site> <author-id>",
		Short: "Refresh the stored metadata for one author",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, svc := setup()
			defer app.Close()
			_, err := svc.SyncAuthor(args[0], args[1], consoleSink)
			return err
		},
	}

	storyCmd := &cobra.Command{
		Use:   "story <site> <story-id>",
		Short: "Download a single story into the archive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, svc := setup()
			defer app.Close()
			st, err := svc.Store().GetStory(args[0], args[1])
			if err != nil {
				return err
			}
			if st == nil {
				return fmt.Errorf("story %s/%s is not in the database; sync its author first", args[0], args[1])
			}
			return svc.StoryToArchive(st, consoleSink)
		},
	}

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Sync and archive all in-mirror authors, stalest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, svc := setup()
			defer app.Close()
			cap := maxAuthors
			if cap == 0 {
				cap = app.Config().MaxAuthors
			}
			return svc.RunUpdate(consoleSink, cap)
		},
	}
	updateCmd.Flags().IntVar(&maxAuthors, "max-authors", 0, "limit the number of authors updated in this run (0 = no limit)")

	authorsCmd := &cobra.Command{
		Use:   "authors",
		Short: "List the authors tracked by the mirror",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, _ := setup()
			defer app.Close()
			authors, err := store.New(app.DB()).ListAuthors()
			if err != nil {
				return err
			}
			for _, a := range authors {
				synced := "never"
				if a.MdSynced != nil {
					synced = a.MdSynced.Format(time.RFC3339)
				}
				marker := " "
				if a.InMirror {
					marker = "*"
				}
				fmt.Printf("%s %s/%s\t%s\t(synced %s)\n", marker, a.Archive, a.SiteID, a.Name, synced)
			}
			return nil
		},
	}

	rootCmd.AddCommand(addCmd, syncCmd, storyCmd, updateCmd, authorsCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup builds the application and the mirror service, and registers
// the site adapters.
func setup() (*core.App, *mirror.Service) {
	app, err := core.New()
	if err != nil {
		log.Fatalf("Fatal error during application setup: %v", err)
	}

	client := fetch.New(
		time.Duration(app.Config().Fetch.DelayMs)*time.Millisecond,
		app.Config().Fetch.Retries,
		app.Config().Fetch.UserAgent,
	)
	sites.Register(ffnet.New(client))
	sites.Register(ffnet.NewFictionPress(client))

	return app, mirror.New(store.New(app.DB()), app.Config().Mirror.Path)
}

// consoleSink prints progress events as they come in.
func consoleSink(ev models.Event) {
	switch ev.Kind {
	case models.EventAuthor:
		fmt.Printf("Author %s (%d/%d)\n", ev.Name, ev.Progress, ev.Total)
	case models.EventStory:
		fmt.Printf("  Story %s\n", ev.Name)
	case models.EventChapter:
		fmt.Printf("    Chapter %d/%d\r", ev.Progress+1, ev.Total)
		if ev.Progress+1 == ev.Total {
			fmt.Println()
		}
	case models.EventError:
		fmt.Fprintf(os.Stderr, "Error: %s: %s\n", ev.Name, ev.Info)
	}
}
