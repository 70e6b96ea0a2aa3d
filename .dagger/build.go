package main

import (
	"fmt"
	"strings"
	"time"

	"context"

	"dagger/vecpeek/internal/dagger"
)

// Build and return directory of go binaries. The sqlite-vec driver needs
// cgo, so the matrix stays on linux where the bookworm toolchain can link
// natively for both architectures.
func (v *Vecpeek) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	// define build matrix
	goarches := []string{"amd64", "arm64"}

	// create empty directory to put build artifacts
	outputs := dag.Directory()

	for _, goarch := range goarches {
		// create directory for each architecture
		path := fmt.Sprintf("linux/%s/", goarch)

		crossCompiler := "gcc"
		if goarch == "arm64" {
			crossCompiler = "aarch64-linux-gnu-gcc"
		}

		// build artifact
		build := v.goContainer().
			WithExec([]string{"apt-get", "install", "-y", "gcc-aarch64-linux-gnu"}).
			WithEnvVariable("GOOS", "linux").
			WithEnvVariable("GOARCH", goarch).
			WithEnvVariable("CC", crossCompiler).
			WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, "./cli/vecpeek"})

		// add build to outputs
		outputs = outputs.WithDirectory(path, build.Directory(path))
	}

	// return build directory
	return outputs
}

// BuildRelease compiles versioned release binaries with embedded version info
func (v *Vecpeek) BuildRelease(
	ctx context.Context,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	buildtime := time.Now()

	ldflags := []string{
		"-s",
		"-w",
		fmt.Sprintf("-X 'github.com/papercomputeco/vecpeek/pkg/utils.Version=%s'", version),
		fmt.Sprintf("-X 'github.com/papercomputeco/vecpeek/pkg/utils.Sha=%s'", commit),
		fmt.Sprintf("-X 'github.com/papercomputeco/vecpeek/pkg/utils.Buildtime=%s'", buildtime),
	}

	return v.Build(ctx, strings.Join(ldflags, " "))
}
