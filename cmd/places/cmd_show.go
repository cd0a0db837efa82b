package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"placebook/internal/geocode"
	"placebook/internal/store"

	"github.com/spf13/cobra"
)

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := s.FetchByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no place with id %d", id)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Place %d\n", p.ID)
	fmt.Printf("  Title:    %s\n", p.Title)
	fmt.Printf("  Image:    %s\n", p.ImageURI)
	fmt.Printf("  Address:  %s\n", p.Location.Address)
	fmt.Printf("  Location: %s, %s\n",
		strconv.FormatFloat(p.Location.Lat, 'f', -1, 64),
		strconv.FormatFloat(p.Location.Lng, 'f', -1, 64))
	if cfg.Geocoding.APIKey != "" {
		fmt.Printf("  Map:      %s\n", geocode.MapPreviewURL(cfg.Geocoding.BaseURL, cfg.Geocoding.APIKey, p.Location.Lat, p.Location.Lng))
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid place id %q", s)
	}
	return id, nil
}
