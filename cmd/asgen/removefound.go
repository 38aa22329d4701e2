package main

import (
	"context"
	"fmt"

	"github.com/ximion/appstream-generator-sub002"
)

// cmdRemoveFound implements the "remove-found <suite>" subcommand
// (spec §6: "drop all pkids of the suite from the store"). The pkid
// schema carries no suite component of its own (spec §3 "pkid":
// "name/version/arch"), so this asks the backend which pkids currently
// belong to suite and removes exactly those rows, rather than
// attempting to derive suite membership from the CAS alone.
func cmdRemoveFound(ctx context.Context, g *globalFlags, args []string) error {
	if len(args) != 1 {
		return asgen.NewError("main.cmdRemoveFound", asgen.ErrInvalid, "usage: remove-found <suite>", nil)
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

	sc, ok := e.Config.Suites[suite]
	if !ok {
		return asgen.NewError("main.cmdRemoveFound", asgen.ErrInvalid, "unknown suite "+suite, nil)
	}

	removed := 0
	for _, section := range sc.Sections {
		for _, arch := range sc.Architectures {
			pkgs, err := e.Backend.PackagesFor(ctx, suite, section, arch)
			if err != nil {
				return err
			}
			for _, p := range pkgs {
				if err := e.CAS.RemovePackage(ctx, p.ID()); err != nil {
					p.Close()
					return err
				}
				p.Close()
				removed++
			}
		}
	}

	fmt.Printf("removed %d package records for suite %q\n", removed, suite)
	return nil
}
