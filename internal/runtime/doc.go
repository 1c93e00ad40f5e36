// Package runtime manages containers backed by containerd.
//
// A [Runtime] connects to a containerd daemon and provides image pull,
// archive import, and container creation. Base images are pulled from a
// registry and unpacked for the target platform; built images are
// imported back from OCI archives for verification and launch.
//
// Each [Container] wraps a running containerd task. Build containers run
// an idle process so commands can be executed and files copied in and
// out as tar streams; the final filesystem state is committed and
// exported as a new OCI archive carrying the service's image config.
// Launch containers run the image entrypoint itself as the task process.
// Containers should be destroyed when no longer needed to release their
// snapshot and task resources.
//
// Example usage:
//
//	rt, err := runtime.New("/run/containerd/containerd.sock", "bromeforge")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	ctr, err := rt.StartBuild(ctx, "python:3.13-slim", "bromestriker-build", "linux/amd64")
//	if err != nil {
//	    return err
//	}
//	defer ctr.Destroy(ctx)
//
//	result, err := ctr.Exec(ctx, "/bin/sh", "pip install -r requirements.txt", nil, "/app")
//	if err != nil {
//	    return err
//	}
//
//	err = ctr.Export(ctx, "dist", runtime.ImageConfig{Entrypoint: []string{"python", "-m", "bromestriker"}})
package runtime
