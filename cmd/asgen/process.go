package main

import (
	"context"
	"fmt"

	"github.com/ximion/appstream-generator-sub002"
)

// cmdProcess implements the "process"/"run" subcommand (spec §6:
// "process <suite> — full run over a suite", "run <suite> — alias of
// process"): load the backend for suite, run the pipeline over it, and
// finish with a single global cruft GC pass (spec §4.7 step 7: "After
// all suites complete, call gc_cruft()" — a single-suite invocation is
// the whole run, so it always completes "all suites").
func cmdProcess(ctx context.Context, g *globalFlags, args []string) error {
	if len(args) != 1 {
		return asgen.NewError("main.cmdProcess", asgen.ErrInvalid, "usage: process <suite>", nil)
	}
	suite := args[0]

	e, err := openEnv(ctx, g)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.loadBackend(ctx, suite); err != nil {
		return err
	}

	p, err := buildPipeline(ctx, e, suite)
	if err != nil {
		return err
	}

	if err := p.RunSuite(ctx, suite); err != nil {
		return err
	}
	if err := p.Cleanup(ctx); err != nil {
		return err
	}

	fmt.Printf("suite %q processed\n", suite)
	return nil
}
