package exec_test

import (
	"context"
	"errors"
	"testing"

	"github.com/byte4ever/pages_deploy/gitops/exec"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEx_success(t *testing.T) {
	t.Parallel()

	out, err := exec.Ex(context.Background(), "", "echo", "hello")

	require.NoError(t, err)
	assert.Contains(t, out, "hello")
}

func TestEx_with_dir(t *testing.T) {
	t.Parallel()

	out, err := exec.Ex(context.Background(), "/tmp", "pwd")

	require.NoError(t, err)
	assert.Contains(t, out, "/tmp")
}

func TestEx_failure(t *testing.T) {
	t.Parallel()

	_, err := exec.Ex(context.Background(), "", "false")

	var cmdErr *exec.CommandError

	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "false", cmdErr.Name)
}

func TestEx_failure_keeps_output(t *testing.T) {
	t.Parallel()

	out, err := exec.Ex(
		context.Background(), "",
		"sh", "-c", "echo boom >&2; exit 3",
	)

	var cmdErr *exec.CommandError

	require.True(t, errors.As(err, &cmdErr))
	assert.Contains(t, out, "boom")
	assert.Contains(t, cmdErr.Output, "boom")
	assert.Equal(t, []string{"-c", "echo boom >&2; exit 3"}, cmdErr.Args)
}

func TestEx_missing_binary(t *testing.T) {
	t.Parallel()

	_, err := exec.Ex(
		context.Background(), "", "definitely-not-a-real-binary-xyz",
	)

	var cmdErr *exec.CommandError

	assert.ErrorAs(t, err, &cmdErr)
}

func TestExEnv_passes_environment(t *testing.T) {
	t.Parallel()

	out, err := exec.ExEnv(
		context.Background(), "",
		[]string{"PAGES_DEPLOY_TEST_VAR=value42"},
		"sh", "-c", "echo $PAGES_DEPLOY_TEST_VAR",
	)

	require.NoError(t, err)
	assert.Contains(t, out, "value42")
}

func TestEx_canceled_context(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := exec.Ex(ctx, "", "sleep", "5")

	assert.Error(t, err)
}
