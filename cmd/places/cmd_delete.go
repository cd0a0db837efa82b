package main

import (
	"context"
	"errors"
	"fmt"

	"placebook/internal/logging"
	"placebook/internal/store"

	"github.com/spf13/cobra"
)

var purgePhoto bool

func runDelete(cmd *cobra.Command, args []string) error {
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

	var imageURI string
	if purgePhoto {
		p, err := s.FetchByID(ctx, id)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return err
		default:
			imageURI = p.ImageURI
		}
	}

	if err := s.Delete(ctx, id); err != nil {
		return err
	}

	if imageURI != "" {
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		if err := lib.Remove(imageURI); err != nil {
			return err
		}
	}

	logging.CLI("Deleted place %d", id)
	fmt.Printf("Deleted place %d\n", id)
	return nil
}
