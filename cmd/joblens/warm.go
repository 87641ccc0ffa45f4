package main

import (
	"fmt"

	"github.com/joblens/joblens"
	"github.com/joblens/joblens/goquery"
)

// Run executes the warm command.
func (c *WarmCmd) Run(deps *Dependencies) error {
	engine := deps.NewEngine(goquery.NewExtractor(&joblens.StaticPage{}))
	defer engine.Close()

	if err := engine.Warm(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", joblens.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, "session ready")
	return nil
}
