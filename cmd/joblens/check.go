package main

import (
	"fmt"

	"github.com/joblens/joblens"
	"github.com/joblens/joblens/goquery"
)

// Run executes the check command.
func (c *CheckCmd) Run(deps *Dependencies) error {
	engine := deps.NewEngine(goquery.NewExtractor(&joblens.StaticPage{}))
	defer engine.Close()

	availability, err := engine.CheckAvailability(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", joblens.ErrorMessage(err))
		return err
	}

	if availability.Available {
		fmt.Fprintf(deps.Stdout, "available (%s)\n", availability.Status)
		return nil
	}

	fmt.Fprintf(deps.Stdout, "unavailable (%s)\n", availability.Status)
	return nil
}
