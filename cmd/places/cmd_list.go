package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func runList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	places, err := s.FetchAll(ctx)
	if err != nil {
		return err
	}

	if len(places) == 0 {
		fmt.Println("No places saved yet.")
		return nil
	}

	sort.Slice(places, func(i, j int) bool { return places[i].ID < places[j].ID })

	fmt.Printf("%d place(s):\n", len(places))
	for _, p := range places {
		fmt.Printf("  %4d  %-30s  %s\n", p.ID, p.Title, p.Location.Address)
	}
	return nil
}
