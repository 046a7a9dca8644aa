package unpack_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"decant/internal/ledger"
	"decant/internal/testsupport"
)

func TestCleanupRemovesProcessedSourcesAndStrayTargets(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	done := filepath.Join(h.svc.SourceDir, "100_done.zip")
	pending := filepath.Join(h.svc.SourceDir, "200_pending.zip")
	testsupport.WriteBytes(t, done, []byte("x"))
	testsupport.WriteBytes(t, pending, []byte("y"))
	if err := h.store.SaveHistory(ctx, "100", done, filepath.Join(h.svc.TargetDir, "[100] Done")); err != nil {
		t.Fatal(err)
	}
	testsupport.WriteBytes(t, filepath.Join(h.svc.TargetDir, "[100] Done", "a.txt"), []byte("a"))
	testsupport.WriteBytes(t, filepath.Join(h.svc.TargetDir, "stray", "b.txt"), []byte("b"))
	testsupport.WriteBytes(t, filepath.Join(h.svc.TargetDir, "loose.txt"), []byte("c"))

	result, err := h.engine.Cleanup(ctx)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if len(result.SourcesRemoved) != 1 || result.SourcesRemoved[0] != done {
		t.Fatalf("SourcesRemoved = %v", result.SourcesRemoved)
	}
	if len(result.TargetsRemoved) != 2 || result.Failures != 0 {
		t.Fatalf("cleanup result = %+v", result)
	}
	if _, err := os.Stat(pending); err != nil {
		t.Fatalf("unprocessed source removed: %v", err)
	}
	tree := testsupport.Tree(t, h.svc.TargetDir)
	if len(tree) != 1 || tree["[100] Done/a.txt"] != "a" {
		t.Fatalf("target tree = %v", tree)
	}
}

func TestCleanupKeepsTargetsWhenSkippingParents(t *testing.T) {
	h := newHarness(t, testsupport.WithSkipParentLevels(testsupport.DefaultService, 1))
	testsupport.WriteBytes(t, filepath.Join(h.svc.TargetDir, "inner", "file.txt"), []byte("keep"))

	result, err := h.engine.Cleanup(context.Background())
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if len(result.TargetsRemoved) != 0 {
		t.Fatalf("targets removed with skip_parent_levels set: %v", result.TargetsRemoved)
	}
}

func TestCompletionHintsGateSkipAndCleanup(t *testing.T) {
	h := newHarness(t, testsupport.WithRequireAllResolutions(testsupport.DefaultService))
	ctx := context.Background()

	if err := h.store.UpsertMetadata(ctx, ledger.Metadata{IdentityKey: "300", Title: "Show 1080 4K"}); err != nil {
		t.Fatal(err)
	}
	source := filepath.Join(h.svc.SourceDir, "300_show.zip")
	testsupport.WriteBytes(t, source, []byte("z"))
	folder := filepath.Join(h.svc.TargetDir, "[300] Show 1080 4K")
	if err := h.store.SaveHistory(ctx, "300", source, folder); err != nil {
		t.Fatal(err)
	}
	testsupport.WriteBytes(t, filepath.Join(folder, "show.1080.mkv"), []byte("hd"))

	collection, err := h.engine.CollectWorkItems(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(collection.Pending) != 1 || len(collection.Skipped) != 0 {
		t.Fatalf("incomplete item should stay pending: %+v", collection)
	}
	result, err := h.engine.Cleanup(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.SourcesRemoved) != 0 {
		t.Fatalf("incomplete source removed: %v", result.SourcesRemoved)
	}

	testsupport.WriteBytes(t, filepath.Join(folder, "show.4k.mkv"), []byte("uhd"))
	collection, err = h.engine.CollectWorkItems(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(collection.Pending) != 0 || len(collection.Skipped) != 1 {
		t.Fatalf("complete item should be skipped: %+v", collection)
	}
	result, err = h.engine.Cleanup(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.SourcesRemoved) != 1 {
		t.Fatalf("complete source not removed: %+v", result)
	}
}

func TestCompletionWithoutTargetFolderIsIncomplete(t *testing.T) {
	h := newHarness(t, testsupport.WithRequireAllResolutions(testsupport.DefaultService))
	ctx := context.Background()
	source := filepath.Join(h.svc.SourceDir, "400_x.zip")
	testsupport.WriteBytes(t, source, []byte("z"))
	if err := h.store.SaveHistory(ctx, "400", source, filepath.Join(h.svc.TargetDir, "400")); err != nil {
		t.Fatal(err)
	}

	collection, err := h.engine.CollectWorkItems(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(collection.Pending) != 1 {
		t.Fatalf("missing target folder should leave item pending: %+v", collection)
	}
}
