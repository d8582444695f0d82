// Package cli contains the cobra commands for the steward CLI. Commands are
// thin adapters: they resolve the project root, build the wire container,
// call a primary port, and print the result.
package cli

import (
	"fmt"
	"os"

	"github.com/example/steward/internal/wire"
)

// withContainer resolves the project root from the working directory, builds
// a container, runs fn, and closes the stores afterwards.
func withContainer(fn func(c *wire.Container) error) error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}

	c, err := wire.NewContainer(root)
	if err != nil {
		return err
	}
	defer c.Close()

	return fn(c)
}
