package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"skillshots/internal/plan"
)

func execRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	chdir(t, t.TempDir())

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSelectPlansDefaults(t *testing.T) {
	plans, err := selectPlans(nil, "")
	require.NoError(t, err)
	require.Len(t, plans, 3)
	require.Equal(t, "pages", plans[0].Name)
	require.Equal(t, "preview", plans[2].Name)

	_, err = selectPlans([]string{"bogus"}, "")
	require.ErrorIs(t, err, plan.ErrUnknownPlan)
}

func TestSelectPlansFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
plans:
  - name: home
    steps: [{action: goto, path: /}, {action: screenshot, file: home.png}]
  - name: settings
    steps: [{action: goto, path: /settings}, {action: screenshot, file: settings.png}]
`), 0o644))

	all, err := selectPlans(nil, path)
	require.NoError(t, err)
	require.Len(t, all, 2)

	one, err := selectPlans([]string{"settings"}, path)
	require.NoError(t, err)
	require.Equal(t, "settings", one[0].Name)

	_, err = selectPlans([]string{"pages"}, path)
	require.ErrorIs(t, err, plan.ErrUnknownPlan)
}

func TestRootWithoutSubcommandIsUsage(t *testing.T) {
	_, err := execRoot(t)
	require.ErrorIs(t, err, errUsage)
}

func TestPlansCommand(t *testing.T) {
	out, err := execRoot(t, "plans")
	require.NoError(t, err)
	require.Contains(t, out, "pages")
	require.Contains(t, out, "skill-preview.png, tools-expanded.png")
}

func TestPlansYAMLRoundTrips(t *testing.T) {
	out, err := execRoot(t, "plans", "--yaml")
	require.NoError(t, err)

	plans, err := plan.Parse([]byte(out))
	require.NoError(t, err)
	require.Len(t, plans, 3)
	require.Equal(t, plan.MustLookup("preview"), plans[2])
}

func TestDoctorCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	out, err := execRoot(t, "doctor", "--base-url", srv.URL)
	require.NoError(t, err)
	require.Contains(t, out, "OK: dev server reachable (HTTP 200)")
}

func TestInvalidConfigFails(t *testing.T) {
	_, err := execRoot(t, "list", "--base-url", "not a url")
	require.Error(t, err)
}

func TestListAndGalleryOnEmptyDir(t *testing.T) {
	dir := t.TempDir()

	out, err := execRoot(t, "list", "--output-dir", dir)
	require.NoError(t, err)
	require.Empty(t, out)

	out, err = execRoot(t, "gallery", "--output-dir", dir)
	require.NoError(t, err)
	require.Contains(t, out, "(0 screenshots)")
	require.FileExists(t, filepath.Join(dir, "README.md"))
}
