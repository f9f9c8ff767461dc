// hylink-adk Dagger module for CI/CD pipeline
//
// This module provides containerized CI/CD functions for the hylink-adk
// project. It includes functions for testing, linting, vulnerability
// scanning, and building the hylink-adk binary in reproducible containers.
//
// Functions include:
// - Test: Run Go tests
// - Lint: Run golangci-lint
// - Vuln: Run govulncheck for vulnerability scanning
// - Build: Build the hylink-adk binary
// - CI: Run the complete CI pipeline (test, lint, vuln check)

package main

import (
	"context"
	"dagger/hylink-adk/internal/dagger"
)

type HylinkAdk struct{}

// Base returns a Go container with the hylink-adk source code mounted
func (m *HylinkAdk) Base(source *dagger.Directory) *dagger.Container {
	return dag.Container().
		From("golang:1.25").
		WithMountedDirectory("/src", source).
		WithWorkdir("/src")
}

// Test runs all Go tests in the hylink-adk project
func (m *HylinkAdk) Test(ctx context.Context, source *dagger.Directory) (string, error) {
	return m.Base(source).
		WithExec([]string{"go", "test", "./..."}).
		Stdout(ctx)
}

// Lint runs golangci-lint on the hylink-adk project
func (m *HylinkAdk) Lint(ctx context.Context, source *dagger.Directory) (string, error) {
	return m.Base(source).
		WithExec([]string{"go", "install", "github.com/golangci/golangci-lint/v2/cmd/golangci-lint@latest"}).
		WithExec([]string{"sh", "-lc", "export PATH=/usr/local/go/bin:/go/bin:$HOME/go/bin:$PATH && golangci-lint run ./..."}).
		Stdout(ctx)
}

// Vuln runs govulncheck on the hylink-adk project
func (m *HylinkAdk) Vuln(ctx context.Context, source *dagger.Directory) (string, error) {
	return m.Base(source).
		WithExec([]string{"go", "install", "golang.org/x/vuln/cmd/govulncheck@latest"}).
		WithExec([]string{"sh", "-lc", "export PATH=/usr/local/go/bin:/go/bin:$HOME/go/bin:$PATH && govulncheck ./..."}).
		Stdout(ctx)
}

// Build builds the hylink-adk binary
func (m *HylinkAdk) Build(source *dagger.Directory) *dagger.File {
	return m.Base(source).
		WithExec([]string{"go", "build", "-o", "hylink-adk", "./cmd/hylink-adk"}).
		File("/src/hylink-adk")
}

// CI runs the complete CI pipeline (test, lint, vuln check)
func (m *HylinkAdk) CI(ctx context.Context, source *dagger.Directory) (string, error) {
	if _, err := m.Test(ctx, source); err != nil {
		return "", err
	}

	if _, err := m.Lint(ctx, source); err != nil {
		return "", err
	}

	if _, err := m.Vuln(ctx, source); err != nil {
		return "", err
	}

	return "CI pipeline completed successfully", nil
}
