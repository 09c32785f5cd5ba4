package orchestrator

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/brensch/nssfetch/internal/config"
)

type stubGetter struct{ calls []string }

func (g *stubGetter) Get(url string) (int, []byte, error) {
	g.calls = append(g.calls, url)
	return http.StatusOK, []byte("%PDF " + url), nil
}

type stubExtractor struct{}

func (stubExtractor) ExtractPages(path string) ([]string, error) {
	return []string{"text of " + filepath.Base(path)}, nil
}

const indexCSV = `Datum rozhodnutí;Typ rozhodnutí;Odkaz ECLI
15.01.2015;Rozsudek;https://nssoud.cz/ECLI:CZ:NSS:2015:1.Afs.123.2014.30
3.6.2016;Usnesení;https://nssoud.cz/ECLI:CZ:NSS:2016:2.As.5.2016.12
01.01.2020;Rozsudek;https://nssoud.cz/ECLI:CZ:NSS:2020:4.As.1.2019.10
`

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	idx := filepath.Join(dir, "index.csv")
	if err := os.WriteFile(idx, []byte(indexCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.IndexPath = idx
	cfg.DestDir = filepath.Join(dir, "out")
	cfg.VisibleOnly = false
	cfg.StartDate = "2015-01-01"
	cfg.EndDate = "2016-12-31"
	return cfg
}

func TestRunCombinedWorkflow(t *testing.T) {
	cfg := testConfig(t)
	g := &stubGetter{}
	res, err := RunCombinedWorkflow(context.Background(), cfg, quietLogger(), Options{Getter: g, Extractor: stubExtractor{}})
	if err != nil {
		t.Fatalf("RunCombinedWorkflow: %v", err)
	}
	if res.Stopped || res.Download == nil || res.Convert == nil {
		t.Fatalf("result = %+v", res)
	}
	wantNew := []string{"1 Afs 123 2014 30.pdf", "2 As 5 2016 12.pdf"}
	if !reflect.DeepEqual(res.Download.New, wantNew) {
		t.Errorf("downloaded = %v, want %v", res.Download.New, wantNew)
	}
	if len(g.calls) != 2 {
		t.Errorf("expected 2 fetches, got %v", g.calls)
	}
	wantConverted := []string{"1 Afs 123 2014 30.pdf", "2 As 5 2016 12.pdf"}
	if !reflect.DeepEqual(res.Convert.Converted, wantConverted) {
		t.Errorf("converted = %v", res.Convert.Converted)
	}
	got, err := os.ReadFile(filepath.Join(cfg.DestDir, config.TextSubdir, "2 As 5 2016 12.txt"))
	if err != nil || string(got) != "text of 2 As 5 2016 12.pdf" {
		t.Errorf("text = %q, %v", got, err)
	}

	// A second run touches nothing on the network.
	g2 := &stubGetter{}
	res, err = RunCombinedWorkflow(context.Background(), cfg, quietLogger(), Options{Getter: g2, Extractor: stubExtractor{}})
	if err != nil {
		t.Fatal(err)
	}
	if len(g2.calls) != 0 || len(res.Download.Skipped) != 2 {
		t.Errorf("second run: calls=%v summary=%+v", g2.calls, res.Download)
	}
}

func TestRunCombinedWorkflowCancelled(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := &stubGetter{}
	res, err := RunCombinedWorkflow(ctx, cfg, quietLogger(), Options{Getter: g, Extractor: stubExtractor{}})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Stopped || res.Convert != nil || len(g.calls) != 0 {
		t.Errorf("cancelled run: %+v calls=%v", res, g.calls)
	}
}

func TestRunDownloadPhaseConfigErrors(t *testing.T) {
	cfg := testConfig(t)
	cfg.VisibleOnly = true
	g := &stubGetter{}
	_, err := RunDownloadPhase(context.Background(), cfg, quietLogger(), Options{Getter: g})
	if !config.IsConfigError(err) {
		t.Errorf("visible-only on csv: err = %v, want configuration error", err)
	}

	cfg = testConfig(t)
	cfg.IndexPath = ""
	cfg.DestDir = ""
	_, err = RunDownloadPhase(context.Background(), cfg, quietLogger(), Options{Getter: g})
	if err == nil || !strings.Contains(err.Error(), "index") || !strings.Contains(err.Error(), "dest") {
		t.Errorf("err = %v", err)
	}
	if len(g.calls) != 0 {
		t.Errorf("no fetches expected on configuration errors, got %v", g.calls)
	}
}

func TestRunConvertPhaseRequiresDest(t *testing.T) {
	_, err := RunConvertPhase(context.Background(), config.Default(), quietLogger(), Options{})
	if !config.IsConfigError(err) {
		t.Errorf("err = %v", err)
	}
}
