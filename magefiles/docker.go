//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
)

// Postgres test container settings.
const (
	pgContainerName = "satchel-postgres"
	pgImage         = "postgres:16-alpine"
	pgPort          = "55432"
	pgPassword      = "satchel"
	pgDatabase      = "satchel"
)

// Postgres groups the test database container targets.
type Postgres mg.Namespace

// containerRuntime returns "podman" or "docker" if a working runtime
// is available, or "" if neither is usable. It checks both that the
// binary exists on PATH and that it can connect to its daemon/machine.
func containerRuntime() string {
	for _, name := range []string{"podman", "docker"} {
		if _, err := exec.LookPath(name); err != nil {
			continue
		}
		if exec.Command(name, "info").Run() != nil {
			fmt.Fprintf(os.Stderr, "WARNING: %s found on PATH but not usable (is the daemon/machine running?)\n", name)
			continue
		}
		return name
	}
	return ""
}

// containerDSN is the connection string of the test container.
func containerDSN() string {
	return fmt.Sprintf("postgres://postgres:%s@localhost:%s/%s?sslmode=disable", pgPassword, pgPort, pgDatabase)
}

// containerRunning reports whether the test container is up.
func containerRunning(rt string) bool {
	out, err := exec.Command(rt, "ps", "--filter", "name="+pgContainerName, "--format", "{{.Names}}").Output()
	return err == nil && strings.Contains(string(out), pgContainerName)
}

// Up starts the Postgres test container and waits until it accepts
// connections. It does nothing when the container is already running.
func (Postgres) Up() error {
	rt := containerRuntime()
	if rt == "" {
		return fmt.Errorf("no container runtime found (tried podman, docker)")
	}
	if containerRunning(rt) {
		return nil
	}

	fmt.Fprintln(os.Stderr, "Starting", pgImage, "as", pgContainerName)
	cmd := exec.Command(rt, "run", "-d", "--rm",
		"--name", pgContainerName,
		"-e", "POSTGRES_PASSWORD="+pgPassword,
		"-e", "POSTGRES_DB="+pgDatabase,
		"-p", pgPort+":5432",
		pgImage)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("starting container: %w", err)
	}

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		ready := exec.Command(rt, "exec", pgContainerName, "pg_isready", "-U", "postgres", "-d", pgDatabase)
		if ready.Run() == nil {
			fmt.Fprintln(os.Stderr, "Postgres ready at", containerDSN())
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("postgres did not become ready within 30s")
}

// Down stops and removes the Postgres test container. Errors are ignored
// because the container may not exist.
func (Postgres) Down() {
	rt := containerRuntime()
	if rt == "" {
		return
	}
	fmt.Fprintln(os.Stderr, "Removing", pgContainerName)
	_ = exec.Command(rt, "rm", "-f", pgContainerName).Run()
}
