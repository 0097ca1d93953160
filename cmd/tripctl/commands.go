package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	voyago "github.com/voyago/voyago-go"
	"github.com/voyago/voyago-go/amadeus"
)

func dispatch(ctx context.Context, client *voyago.Client, command string, args []string) error {
	switch command {
	case "login":
		return loginCmd(ctx, client, args)
	case "logout":
		return client.Session.Logout(ctx)
	case "me":
		return meCmd(ctx, client)
	case "trips":
		return tripsCmd(ctx, client)
	case "trip":
		return tripCmd(ctx, client, args)
	case "search":
		return searchCmd(ctx, client, args)
	case "export":
		return exportCmd(ctx, client, args)
	default:
		printUsage()
		return errors.Errorf("unknown command %q", command)
	}
}

func loginCmd(ctx context.Context, client *voyago.Client, args []string) error {
	flags := flag.NewFlagSet("login", flag.ContinueOnError)
	email := flags.String("email", "", "account email")
	password := flags.String("password", "", "account password")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if err := client.Login(ctx, *email, *password); err != nil {
		return err
	}

	if user := client.Session.Snapshot().User; user != nil {
		fmt.Printf("Signed in as %s <%s>\n", user.FullName(), user.Email)
	}
	return nil
}

func meCmd(ctx context.Context, client *voyago.Client) error {
	if err := requireSession(client); err != nil {
		return err
	}

	user := client.Session.Snapshot().User
	fmt.Printf("%s <%s>\n", user.FullName(), user.Email)
	if user.IsOauth {
		fmt.Printf("  signed in via %s\n", user.OauthProvider)
	}
	if user.IsAdmin {
		fmt.Println("  administrator")
	}
	return nil
}

func tripsCmd(ctx context.Context, client *voyago.Client) error {
	if err := requireSession(client); err != nil {
		return err
	}

	all, err := client.Trips.List(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Println("No trips yet.")
		return nil
	}
	for _, trip := range all {
		fmt.Printf("%s  %s → %s  %s..%s  budget %s  (%s)\n",
			trip.ID, trip.Origin, trip.Destination, trip.StartDate, trip.EndDate, trip.Budget, trip.Title)
	}
	return nil
}

func tripCmd(ctx context.Context, client *voyago.Client, args []string) error {
	flags := flag.NewFlagSet("trip", flag.ContinueOnError)
	id := flags.String("id", "", "trip ID")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if err := requireSession(client); err != nil {
		return err
	}

	trip, err := client.Trips.Get(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s → %s, %s to %s, budget %s\n",
		trip.Title, trip.Origin, trip.Destination, trip.StartDate, trip.EndDate, trip.Budget)
	for _, pref := range trip.Preferences {
		fmt.Printf("  - %s\n", pref)
	}
	return nil
}

func searchCmd(ctx context.Context, client *voyago.Client, args []string) error {
	flags := flag.NewFlagSet("search", flag.ContinueOnError)
	tripID := flags.String("trip", "", "trip ID")
	origin := flags.String("origin", "", "origin city code")
	destination := flags.String("destination", "", "destination city code")
	start := flags.String("start", "", "start date (YYYY-MM-DD)")
	end := flags.String("end", "", "end date (YYYY-MM-DD)")
	budget := flags.String("budget", "", "budget")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if err := requireSession(client); err != nil {
		return err
	}

	offers, err := client.Amadeus.TripOffers(ctx, amadeus.OfferQuery{
		TripID:              *tripID,
		OriginCityCode:      *origin,
		DestinationCityCode: *destination,
		StartDate:           *start,
		EndDate:             *end,
		Budget:              *budget,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Flights (%d):\n", len(offers.Flights))
	for _, f := range offers.Flights {
		fmt.Printf("  %s  %s  %s → %s  %s %s  stops:%d\n",
			f.Carrier, f.Duration, f.DepartureAt, f.ArrivalAt, f.Price, f.Currency, f.NumberOfStops)
	}
	fmt.Printf("Hotels (%d):\n", len(offers.Hotels))
	for _, h := range offers.Hotels {
		fmt.Printf("  %s  %s %s  rating %.1f\n", h.Name, h.Price, h.Currency, h.Rating)
	}
	return nil
}

func exportCmd(ctx context.Context, client *voyago.Client, args []string) error {
	flags := flag.NewFlagSet("export", flag.ContinueOnError)
	tripID := flags.String("trip", "", "trip ID")
	out := flags.String("out", "itinerary.pdf", "output file")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if err := requireSession(client); err != nil {
		return err
	}

	blob, err := client.PDF.ExportTrip(ctx, *tripID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, blob, 0o644); err != nil {
		return errors.Wrap(err, "write PDF")
	}
	fmt.Printf("Wrote %s (%d bytes)\n", *out, len(blob))
	return nil
}

func requireSession(client *voyago.Client) error {
	if !client.Session.IsAuthenticated() {
		return errors.New("not signed in; run: tripctl login -email <email> -password <password>")
	}
	return nil
}
