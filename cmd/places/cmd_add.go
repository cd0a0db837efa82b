package main

import (
	"context"
	"fmt"

	"placebook/internal/logging"
	"placebook/internal/photo"
	"placebook/internal/place"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	addTitle   string
	addImage   string
	addLat     float64
	addLng     float64
	addAddress string
)

func runAdd(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	lib, err := openLibrary()
	if err != nil {
		return err
	}

	address := addAddress
	var resolve func(context.Context) error
	if address == "" {
		resolver, err := newResolver()
		if err != nil {
			return err
		}
		resolve = func(ctx context.Context) error {
			a, err := resolver.ReverseGeocode(ctx, addLat, addLng)
			if err != nil {
				return fmt.Errorf("failed to resolve address: %w", err)
			}
			address = a
			return nil
		}
	}

	// Photo import and address lookup are independent.
	var imageURI string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		uri, err := lib.Import(addImage)
		if err != nil {
			return fmt.Errorf("failed to import photo: %w", err)
		}
		imageURI = uri
		return nil
	})
	if resolve != nil {
		g.Go(func() error { return resolve(gctx) })
	}
	if err := g.Wait(); err != nil {
		discardPhoto(lib, imageURI)
		return err
	}

	rec, err := place.New(addTitle, imageURI, place.Location{Lat: addLat, Lng: addLng, Address: address})
	if err != nil {
		discardPhoto(lib, imageURI)
		return err
	}
	if !rec.Location.InRange() {
		logger.Warn("Coordinates outside the usual range", zap.Float64("lat", addLat), zap.Float64("lng", addLng))
	}

	id, err := s.Insert(ctx, rec)
	if err != nil {
		discardPhoto(lib, imageURI)
		return err
	}

	logging.CLI("Added place %d %q", id, rec.Title)
	fmt.Printf("Added place %d: %s (%s)\n", id, rec.Title, rec.Location.Address)
	return nil
}

// discardPhoto removes a photo imported for a place that was never saved.
func discardPhoto(lib *photo.Library, uri string) {
	if uri == "" {
		return
	}
	if err := lib.Remove(uri); err != nil {
		logger.Warn("Failed to discard imported photo", zap.String("uri", uri), zap.Error(err))
	}
}
