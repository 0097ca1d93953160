package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	voyago "github.com/voyago/voyago-go"
)

const appName = "tripctl"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	if len(args) == 0 || args[0] == "help" {
		displayBanner()
		printUsage()
		return nil
	}

	logger := newLogger()

	client, err := voyago.New(logger)
	if err != nil {
		return errors.Wrap(err, "assemble client")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := client.Start(ctx); err != nil {
		// A dead persisted session is not fatal; commands that need auth
		// will say so themselves.
		logger.Warn().Err(err).Msg("could not restore previous session")
	}

	return dispatch(ctx, client, args[0], args[1:])
}

func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(os.Getenv("VOYAGO_LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func displayBanner() {
	myFigure := figure.NewFigure(appName, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

func printUsage() {
	fmt.Print(`Usage: tripctl <command> [flags]

Commands:
  login    -email <email> -password <password>   Sign in and persist the session
  logout                                         Sign out and clear the session
  me                                             Show the current user
  trips                                          List your trips
  trip     -id <tripID>                          Show a single trip
  search   -trip <tripID> -origin <code> -destination <code>
           -start <YYYY-MM-DD> -end <YYYY-MM-DD> -budget <amount>
                                                 Search flight and hotel offers
  export   -trip <tripID> -out <file.pdf>        Export an itinerary as PDF
`)
}
