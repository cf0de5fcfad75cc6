package updater

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/minios-linux/reskit/discovery"
	"github.com/minios-linux/reskit/langconfig"
	"github.com/minios-linux/reskit/resx"
)

const emptyResx = `<?xml version="1.0" encoding="utf-8"?>
<root>
    <resheader name="resmimetype">
        <value>text/microsoft-resx</value>
    </resheader>
</root>
`

// recordingNotifier records notification calls; optionally failing them.
type recordingNotifier struct {
	mu          sync.Mutex
	changed     []string
	invalidated []string
	fail        bool
}

func (n *recordingNotifier) NotifyFileChanged(path string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, path)
	if n.fail {
		return fmt.Errorf("host unavailable")
	}
	return nil
}

func (n *recordingNotifier) Invalidate(family string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invalidated = append(n.invalidated, family)
	if n.fail {
		return fmt.Errorf("host unavailable")
	}
	return nil
}

func newTestOrchestrator(t *testing.T, dir string, notifier Notifier) *Orchestrator {
	t.Helper()
	finder := discovery.NewFinder(dir, nil)
	resolver := langconfig.NewResolver(nil)
	store := resx.NewStore(zerolog.Nop())
	return New(finder, resolver, store, notifier, zerolog.Nop())
}

func seedFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("os.WriteFile() error: %v", err)
	}
	return path
}

func readValues(t *testing.T, path string) map[string]string {
	t.Helper()
	return resx.NewStore(zerolog.Nop()).Read(path)
}

// ---------------------------------------------------------------------------
// CanExecute tests
// ---------------------------------------------------------------------------

func TestCanExecute(t *testing.T) {
	o := newTestOrchestrator(t, t.TempDir(), nil)

	if !o.CanExecute("Strings", "NewKey") {
		t.Error("valid input should pass")
	}
	if o.CanExecute("", "NewKey") {
		t.Error("empty base name should fail")
	}
	if o.CanExecute("Strings", "") {
		t.Error("empty key should fail")
	}
	if o.CanExecute("Strings", "bad key") {
		t.Error("invalid identifier should fail")
	}
}

// ---------------------------------------------------------------------------
// AddKey tests
// ---------------------------------------------------------------------------

func TestAddKey_TwoFileFamilyWritesBoth(t *testing.T) {
	dir := t.TempDir()
	primary := seedFile(t, dir, "Strings.resx", emptyResx)
	secondary := seedFile(t, dir, "Strings.de.resx", emptyResx)
	notifier := &recordingNotifier{}
	o := newTestOrchestrator(t, dir, notifier)

	if !o.AddKey(context.Background(), "Strings", "Greeting", "Hello", "Hallo") {
		t.Fatal("AddKey should succeed")
	}

	if v := readValues(t, primary)["Greeting"]; v != "Hello" {
		t.Errorf("primary value: got %q, want Hello", v)
	}
	if v := readValues(t, secondary)["Greeting"]; v != "Hallo" {
		t.Errorf("secondary value: got %q, want Hallo", v)
	}
	if len(notifier.changed) != 2 {
		t.Errorf("expected 2 file-changed notifications, got %v", notifier.changed)
	}
	if len(notifier.invalidated) != 1 || notifier.invalidated[0] != "Strings" {
		t.Errorf("expected one invalidation for Strings, got %v", notifier.invalidated)
	}
}

func TestAddKey_SingleFileEncodesSecondaryAsComment(t *testing.T) {
	dir := t.TempDir()
	path := seedFile(t, dir, "Strings.resx", emptyResx)
	o := newTestOrchestrator(t, dir, nil)

	if !o.AddKey(context.Background(), "Strings", "Greeting", "Hello", "Hallo") {
		t.Fatal("AddKey should succeed")
	}

	doc, err := resx.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile error: %v", err)
	}
	e := doc.GetEntry("Greeting")
	if e == nil || e.Value != "Hello" || e.Comment != "Hallo" {
		t.Errorf("entry: %+v, want value Hello with comment Hallo", e)
	}
}

func TestAddKey_NewFamilyCreatesDefaultFile(t *testing.T) {
	dir := t.TempDir()
	o := newTestOrchestrator(t, dir, nil)

	if !o.AddKey(context.Background(), "Fresh", "First", "value", "") {
		t.Fatal("AddKey should succeed for a family with no files")
	}

	path := filepath.Join(dir, "Fresh.resx")
	if v := readValues(t, path)["First"]; v != "value" {
		t.Errorf("new default file: got %v", readValues(t, path))
	}
}

func TestAddKey_NoSecondaryValueSkipsSecondaryFile(t *testing.T) {
	dir := t.TempDir()
	primary := seedFile(t, dir, "Strings.resx", emptyResx)
	secondary := seedFile(t, dir, "Strings.de.resx", emptyResx)
	o := newTestOrchestrator(t, dir, nil)

	if !o.AddKey(context.Background(), "Strings", "Greeting", "Hello", "") {
		t.Fatal("AddKey should succeed")
	}
	if _, ok := readValues(t, primary)["Greeting"]; !ok {
		t.Error("primary file should carry the key")
	}
	if _, ok := readValues(t, secondary)["Greeting"]; ok {
		t.Error("secondary file must stay untouched without a secondary value")
	}
}

func TestAddKey_RejectsInvalidKeyBeforeIO(t *testing.T) {
	dir := t.TempDir()
	o := newTestOrchestrator(t, dir, nil)

	if o.AddKey(context.Background(), "Strings", "not valid", "v", "") {
		t.Fatal("invalid key must fail")
	}
	if _, err := os.Stat(filepath.Join(dir, "Strings.resx")); !os.IsNotExist(err) {
		t.Error("no file may be created for a rejected key")
	}
}

// ---------------------------------------------------------------------------
// Partial failure tests
// ---------------------------------------------------------------------------

func TestAddKey_PartialFailureReportsFailureWithoutRollback(t *testing.T) {
	// The secondary file already holds the key, so its write is refused
	// while the primary write lands. The family ends up inconsistent and
	// the overall result is failure — the applied write stays in place.
	dir := t.TempDir()
	primary := seedFile(t, dir, "Strings.resx", emptyResx)
	secondary := seedFile(t, dir, "Strings.de.resx", `<root><data name="Greeting"><value>Hallo</value></data></root>`)
	notifier := &recordingNotifier{}
	o := newTestOrchestrator(t, dir, notifier)

	if o.AddKey(context.Background(), "Strings", "Greeting", "Hello", "Hallo neu") {
		t.Fatal("overall result must be failure when one write fails")
	}

	if v := readValues(t, primary)["Greeting"]; v != "Hello" {
		t.Errorf("first write must not be rolled back: %v", readValues(t, primary))
	}
	if v := readValues(t, secondary)["Greeting"]; v != "Hallo" {
		t.Errorf("existing secondary value must stay intact: %q", v)
	}
	if len(notifier.changed) != 0 || len(notifier.invalidated) != 0 {
		t.Error("no notifications on failure")
	}
}

// ---------------------------------------------------------------------------
// Notification tests
// ---------------------------------------------------------------------------

func TestAddKey_NotifierFailureDoesNotFailUpdate(t *testing.T) {
	dir := t.TempDir()
	seedFile(t, dir, "Strings.resx", emptyResx)
	notifier := &recordingNotifier{fail: true}
	o := newTestOrchestrator(t, dir, notifier)

	if !o.AddKey(context.Background(), "Strings", "Greeting", "Hello", "") {
		t.Fatal("notifier failures must never fail the update")
	}
	if len(notifier.changed) != 1 {
		t.Errorf("notifier should still have been called: %v", notifier.changed)
	}
}

// ---------------------------------------------------------------------------
// Cancellation tests
// ---------------------------------------------------------------------------

func TestAddKey_CancelledContextWritesNothing(t *testing.T) {
	dir := t.TempDir()
	path := seedFile(t, dir, "Strings.resx", emptyResx)
	o := newTestOrchestrator(t, dir, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if o.AddKey(ctx, "Strings", "Greeting", "Hello", "") {
		t.Fatal("cancelled update must report failure")
	}
	if _, ok := readValues(t, path)["Greeting"]; ok {
		t.Error("no write may be dispatched after cancellation")
	}
}
