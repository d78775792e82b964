package fetch

import (
	"context"
	"testing"
	"time"

	"bookapp/pkg/domain"
)

func TestNewDriverDefaults(t *testing.T) {
	d := NewDriver(Config{})
	if d.navTimeout != 60*time.Second {
		t.Fatalf("navTimeout = %v, want 60s default", d.navTimeout)
	}
	if d.renderWait != 20*time.Second {
		t.Fatalf("renderWait = %v, want 20s default", d.renderWait)
	}
}

func TestFetchRejectsUnknownSourceBeforeBrowserStart(t *testing.T) {
	d := NewDriver(Config{})
	if _, err := d.Fetch(context.Background(), domain.Source("yes24")); err == nil {
		t.Fatal("expected error for unknown source")
	}
}

func TestTargetsCoverAllSources(t *testing.T) {
	for _, src := range domain.AllSources {
		tgt, ok := targets[src]
		if !ok {
			t.Fatalf("no target for %q", src)
		}
		if tgt.url == "" || tgt.waitSelector == "" {
			t.Fatalf("incomplete target for %q: %+v", src, tgt)
		}
	}
}

func TestEmptyDocument(t *testing.T) {
	doc, err := emptyDocument()
	if err != nil {
		t.Fatalf("emptyDocument: %v", err)
	}
	if doc.Find("li").Length() != 0 {
		t.Fatal("empty document should contain no listing markup")
	}
}
