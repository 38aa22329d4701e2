package main

import (
	"context"
	"fmt"

	"github.com/ximion/appstream-generator-sub002"
)

// cmdForget implements the "forget <pkid>" subcommand (spec §6: "drop
// one package"). It only needs the CAS, not the backend: pkid is given
// verbatim on the command line (spec §3 "name/version/arch").
func cmdForget(ctx context.Context, g *globalFlags, args []string) error {
	if len(args) != 1 {
		return asgen.NewError("main.cmdForget", asgen.ErrInvalid, "usage: forget <pkid>", nil)
	}
	pkid := asgen.PackageID(args[0])

	e, err := openEnv(ctx, g)
	if err != nil {
		return err
	}
	defer e.Close()

	exists, err := e.CAS.PackageExists(ctx, pkid)
	if err != nil {
		return err
	}
	if !exists {
		return asgen.NewError("main.cmdForget", asgen.ErrNotFound, "no such package: "+string(pkid), nil)
	}

	if err := e.CAS.RemovePackage(ctx, pkid); err != nil {
		return err
	}

	fmt.Printf("forgot %s\n", pkid)
	return nil
}
