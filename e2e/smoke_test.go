package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

type graphOutput struct {
	Nodes []struct {
		ID       string `json:"id"`
		Type     string `json:"type"`
		Position struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"position"`
	} `json:"nodes"`
	Edges []struct {
		ID     string `json:"id"`
		Source string `json:"source"`
		Target string `json:"target"`
		Label  string `json:"label"`
	} `json:"edges"`
}

func (g graphOutput) hasNode(id string) bool {
	for _, n := range g.Nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

func TestE2ESmoke_CatalogSample(t *testing.T) {
	if os.Getenv("CATALOG_E2E") == "" {
		t.Skip("set CATALOG_E2E=1 to build and run the binaries against the sample catalog")
	}
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go not found in PATH")
	}

	repoRoot := findRepoRoot(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	bin := t.TempDir()
	graphBin := filepath.Join(bin, "catalog-graph")
	exportBin := filepath.Join(bin, "catalog-export")
	runOrFail(t, ctx, repoRoot, nil, "go", "build", "-o", graphBin, ".")
	runOrFail(t, ctx, repoRoot, nil, "go", "build", "-o", exportBin, "./cmd/catalog-export")

	sample := filepath.Join(repoRoot, "examples", "catalog-sample")

	t.Run("domain graph", func(t *testing.T) {
		out := runStdout(t, ctx, repoRoot, graphBin, "-project-dir", sample, "-focus", "domain:Checkout", "-mode", "full", "-zap-log-level", "error")
		var g graphOutput
		if err := json.Unmarshal([]byte(out), &g); err != nil {
			t.Fatalf("decode graph: %v\n%s", err, out)
		}
		for _, id := range []string{"OrderService-1.0.0", "PaymentService-1.0.0", "OrderPlaced-0.0.1"} {
			if !g.hasNode(id) {
				t.Errorf("expected node %s in domain graph", id)
			}
		}
		if len(g.Edges) == 0 {
			t.Errorf("expected edges in domain graph")
		}
	})

	t.Run("unknown focus", func(t *testing.T) {
		if _, err := runOut(ctx, repoRoot, nil, graphBin, "-project-dir", sample, "-focus", "service:Nope"); err == nil {
			t.Fatalf("expected a missing focus to exit non-zero")
		}
	})

	t.Run("export", func(t *testing.T) {
		out := runStdout(t, ctx, repoRoot, exportBin, "-project-dir", sample, "-zap-log-level", "error")
		var export struct {
			Services   []json.RawMessage `json:"services"`
			Unresolved []string          `json:"unresolved"`
		}
		if err := json.Unmarshal([]byte(out), &export); err != nil {
			t.Fatalf("decode export: %v\n%s", err, out)
		}
		if len(export.Services) == 0 {
			t.Fatalf("expected services in export")
		}
		t.Logf("unresolved references: %v", export.Unresolved)
	})

	t.Run("watch", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "catalog")
		if err := os.CopyFS(dir, os.DirFS(sample)); err != nil {
			t.Fatalf("copy sample: %v", err)
		}
		output := filepath.Join(t.TempDir(), "graph.json")
		port := pickFreePort(t)

		watchCtx, watchCancel := context.WithCancel(ctx)
		defer watchCancel()
		cmd := exec.CommandContext(watchCtx, graphBin,
			"-project-dir", dir,
			"-focus", "service:OrderService",
			"-output", output,
			"-watch",
			fmt.Sprintf("-metrics-bind-address=127.0.0.1:%d", port),
		)
		var logs bytes.Buffer
		cmd.Stdout = &logs
		cmd.Stderr = &logs
		if err := cmd.Start(); err != nil {
			t.Fatalf("start watch: %v", err)
		}
		t.Cleanup(func() {
			watchCancel()
			_ = cmd.Wait()
			if t.Failed() {
				t.Logf("watch logs:\n%s", logs.String())
			}
		})

		waitForGraph(t, output, "OrderService-1.0.0")

		event := filepath.Join(dir, "events", "OrderCancelled")
		if err := os.MkdirAll(event, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(event, "index.mdx"), []byte("---\nid: OrderCancelled\nname: Order Cancelled\nversion: 0.0.1\n---\n"), 0o644); err != nil {
			t.Fatalf("write event: %v", err)
		}
		svc := filepath.Join(dir, "domains", "Checkout", "services", "OrderService", "index.mdx")
		raw, err := os.ReadFile(svc)
		if err != nil {
			t.Fatalf("read service: %v", err)
		}
		updated := strings.Replace(string(raw), "sends:\n", "sends:\n  - id: OrderCancelled\n", 1)
		if err := os.WriteFile(svc, []byte(updated), 0o644); err != nil {
			t.Fatalf("write service: %v", err)
		}

		waitForGraph(t, output, "OrderCancelled-0.0.1")

		body := httpGet(t, fmt.Sprintf("http://127.0.0.1:%d/metrics", port))
		if !strings.Contains(body, "eventcatalog_graph_nodes") {
			t.Fatalf("expected graph metrics, got:\n%s", body)
		}
	})
}

func waitForGraph(t *testing.T, path, node string) {
	t.Helper()

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		raw, err := os.ReadFile(path)
		if err == nil {
			var g graphOutput
			if json.Unmarshal(raw, &g) == nil && g.hasNode(node) {
				return
			}
		}
		time.Sleep(200 * time.Millisecond)
	}
	t.Fatalf("node %s never appeared in %s", node, path)
}

func httpGet(t *testing.T, url string) string {
	t.Helper()

	var lastErr error
	for i := 0; i < 20; i++ {
		resp, err := http.Get(url)
		if err == nil {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr == nil && resp.StatusCode == http.StatusOK {
				return string(body)
			}
			lastErr = fmt.Errorf("status %d: %v", resp.StatusCode, readErr)
		} else {
			lastErr = err
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("GET %s: %v", url, lastErr)
	return ""
}

func pickFreePort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen free port: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func findRepoRoot(t *testing.T) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// e2e/smoke_test.go -> repo root
	return filepath.Clean(filepath.Join(filepath.Dir(file), ".."))
}

func runOrFail(t *testing.T, ctx context.Context, dir string, env []string, name string, args ...string) string {
	t.Helper()

	out, err := runOut(ctx, dir, env, name, args...)
	if err != nil {
		t.Fatalf("%s %s failed: %v\n%s", name, strings.Join(args, " "), err, out)
	}
	return out
}

// runStdout keeps stderr out of the result so it can be decoded.
func runStdout(t *testing.T, ctx context.Context, dir, name string, args ...string) string {
	t.Helper()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("%s %s failed: %v\n%s", name, strings.Join(args, " "), err, stderr.String())
	}
	return stdout.String()
}

func runOut(ctx context.Context, dir string, env []string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if env != nil {
		cmd.Env = env
	}
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return buf.String(), err
}
