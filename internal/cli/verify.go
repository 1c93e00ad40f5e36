package cli

import (
	"context"
	"fmt"

	"github.com/bromestriker/bromeforge/internal/protocol"
	"github.com/bromestriker/bromeforge/internal/verify"
)

// Represents the 'bromeforge verify' command.
type VerifyCmd struct {
	recipeFlags
	Archive  string `arg:"" help:"OCI archive to verify." type:"path"`
	Platform string `short:"p" help:"Platform to verify in a multi-platform archive."`
	Keep     bool   `help:"Keep the imported image after verification."`
	Remote   bool   `help:"Send the verification to the daemon instead of running locally."`
}

// Executes the verify command.
//
// Prints one line per check. The command fails when any check fails, so
// it can gate a deploy in a script.
func (c *VerifyCmd) Run(ctx context.Context) error {
	rec, err := c.load()
	if err != nil {
		return err
	}

	if c.Remote {
		return c.runRemote(ctx)
	}

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	report, err := verify.Run(ctx, rt, verify.Options{
		Recipe:   rec,
		Archive:  c.Archive,
		Platform: c.Platform,
		Keep:     c.Keep,
	})
	if err != nil {
		return err
	}

	for _, check := range report.Checks {
		printCheck(check.Name, check.OK, check.Detail)
	}
	for _, a := range report.Assumptions {
		fmt.Printf("NOTE %s\n", a)
	}

	if !report.OK() {
		return fmt.Errorf("%w: %d of %d checks failed",
			ErrVerificationFailed, len(report.Failed()), len(report.Checks))
	}
	return nil
}

// Sends the verify request to the daemon.
func (c *VerifyCmd) runRemote(ctx context.Context) error {
	rec, err := c.load()
	if err != nil {
		return err
	}

	env, payload, err := protocol.Roundtrip(socketPath(), protocol.CmdVerify, &protocol.VerifyRequest{
		Recipe:   rec,
		Archive:  c.Archive,
		Platform: c.Platform,
		Keep:     c.Keep,
	})
	if err != nil {
		return err
	}

	result, err := decodeResponse[protocol.VerifyResult](env, payload)
	if err != nil {
		return err
	}

	failed := 0
	for _, check := range result.Checks {
		printCheck(check.Name, check.OK, check.Detail)
		if !check.OK {
			failed++
		}
	}
	for _, a := range result.Assumptions {
		fmt.Printf("NOTE %s\n", a)
	}

	if !result.OK {
		return fmt.Errorf("%w: %d of %d checks failed",
			ErrVerificationFailed, failed, len(result.Checks))
	}
	return nil
}

// Prints a single check outcome.
func printCheck(name string, ok bool, detail string) {
	if ok {
		fmt.Printf("PASS %s\n", name)
		return
	}
	fmt.Printf("FAIL %s: %s\n", name, detail)
}
