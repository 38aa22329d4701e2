package main

import (
	"context"
	"fmt"

	"github.com/ximion/appstream-generator-sub002"
)

// cmdCleanup implements the "cleanup" subcommand (spec §6: "cleanup —
// run cruft GC"), independent of any single suite's run.
func cmdCleanup(ctx context.Context, g *globalFlags, args []string) error {
	if len(args) != 0 {
		return asgen.NewError("main.cmdCleanup", asgen.ErrInvalid, "usage: cleanup", nil)
	}

	e, err := openEnv(ctx, g)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.CAS.GCCruft(ctx); err != nil {
		return err
	}

	fmt.Println("cruft collected")
	return nil
}
