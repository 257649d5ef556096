package dwello_test

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/dwello/pkg/dwellosdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Container setup and shared assertions for the dwello end-to-end tests.
 */

const (
	testImageName = "dwello-test:latest"

	adminName     = "Administrator"
	adminEmail    = "admin@dwello.test"
	adminPassword = "Admin123!"
)

// TestMain builds the image once for the whole suite and removes it after.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	fmt.Fprintf(os.Stdout, "Building dwello Docker image...")
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up dwello Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/dwello/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	_ = exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName).Run()
}

func baseEnv() map[string]string {
	return map[string]string{
		"DATABASE_FILE":         "/data/dwello.db",
		"PEPPER_FILE":           "/data/pepper",
		"DWELLO_ADMIN_NAME":     adminName,
		"DWELLO_ADMIN_EMAIL":    adminEmail,
		"DWELLO_ADMIN_PASSWORD": adminPassword,
		"ENV":                   "test",
		"LOG_LEVEL":             "info",
		"LOG_FORMAT":            "json",
	}
}

// setupContainer starts dwello with relaxed rate limits. Most tests make
// more rapid requests than the production strict profile allows.
func setupContainer(t *testing.T) *dwellosdk.Client {
	t.Helper()
	env := baseEnv()
	env["RATELIMIT_STRICT_REQUESTS"] = "1000"
	env["RATELIMIT_STRICT_WINDOW_SEC"] = "60"
	env["RATELIMIT_STRICT_BURST"] = "1000"
	env["RATELIMIT_MODERATE_REQUESTS"] = "1000"
	env["RATELIMIT_MODERATE_BURST"] = "1000"
	return startContainer(t, env)
}

// setupContainerWithDefaultRateLimits is only for the rate limit tests.
func setupContainerWithDefaultRateLimits(t *testing.T) *dwellosdk.Client {
	t.Helper()
	return startContainer(t, baseEnv())
}

func startContainer(t *testing.T, env map[string]string) *dwellosdk.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        testImageName,
			ExposedPorts: []string{"8080/tcp"},
			Env:          env,
			WaitingFor: wait.ForHTTP("/livez").
				WithPort("8080/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)
	host, err := container.Host(ctx)
	require.NoError(t, err)

	return dwellosdk.NewClient(fmt.Sprintf("http://%s:%s", host, mappedPort.Port()))
}

func loginAdmin(t *testing.T, client *dwellosdk.Client) *dwellosdk.Session {
	t.Helper()
	session, err := client.Login(t.Context(), adminEmail, adminPassword)
	require.NoError(t, err, "admin login should succeed")
	return session
}

func registerUser(t *testing.T, client *dwellosdk.Client, name, email string) *dwellosdk.Session {
	t.Helper()
	session, err := client.Register(t.Context(), name, email, "secret1")
	require.NoError(t, err, "registration should succeed")
	require.NotEmpty(t, session.Token())
	return session
}

// assertAPIError checks the status and message of a failed call.
func assertAPIError(t *testing.T, err error, want *dwellosdk.APIError) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, want)
}

func assertField(t *testing.T, err error, field string) {
	t.Helper()
	var apiErr *dwellosdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected an API error, got %v", err)
	require.True(t, apiErr.HasField(field), "expected field %q in %+v", field, apiErr.ValidationErrors)
}

func ptr[T any](v T) *T { return &v }
