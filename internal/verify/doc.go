// Package verify checks built image archives against their recipe's
// contract.
//
// Verification has two halves. The image config (entrypoint, working
// directory, exposed ports, volumes) is read straight from the OCI
// archive without touching the container runtime. The filesystem
// properties (installed tools, writable data directories, importable
// entrypoint module) are probed by importing the archive and executing
// commands inside a container started from it.
//
// Checks are accumulated into a [Report] rather than aborting on the
// first failure:
//
//	report, err := verify.Run(ctx, rt, verify.Options{
//		Recipe:  rec,
//		Archive: "dist/image.tar",
//	})
//	if err != nil {
//		return err
//	}
//	for _, check := range report.Failed() {
//		fmt.Printf("FAIL %s: %s\n", check.Name, check.Detail)
//	}
package verify
