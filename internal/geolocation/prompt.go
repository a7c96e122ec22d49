package geolocation

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// PromptPermission asks on a terminal before any position is shared.
type PromptPermission struct {
	In  io.Reader
	Out io.Writer
	// Destination is shown to the person so they know where the data goes.
	Destination string
	// Remembered is a grant given earlier, such as the --yes flag.
	Remembered bool
}

// State reports Granted for a remembered grant and Prompt otherwise.
func (p *PromptPermission) State(ctx context.Context) (PermissionState, error) {
	if p.Remembered {
		return Granted, nil
	}
	return Prompt, nil
}

// Request explains what is shared and reads a yes/no answer. The default is no.
func (p *PromptPermission) Request(ctx context.Context) (bool, error) {
	fmt.Fprintf(p.Out,
		"This will send your location, an approximate street address, your public IP address\n"+
			"and basic device details to %s.\nShare your location? [y/N]: ", p.Destination)

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		p.Remembered = true
		return true, nil
	default:
		return false, nil
	}
}

// StaticSource returns a fixed position, e.g. one typed by the person.
type StaticSource struct {
	Coordinates Coordinates
}

// CurrentPosition returns the configured coordinates.
func (s StaticSource) CurrentPosition(ctx context.Context, opts Options) (Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return Coordinates{}, err
	}
	return s.Coordinates, nil
}
