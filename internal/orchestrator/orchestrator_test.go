package orchestrator

import (
	"os"
	"path/filepath"
	"testing"

	"media-convert/internal/dispatch"
)

type stubRaster struct {
	out []byte
	err error
}

func (s *stubRaster) Convert(_, _ string, _ float64, _ []byte) ([]byte, error) {
	return s.out, s.err
}

type stubDocument struct {
	pages [][]byte
}

func (s *stubDocument) RenderPages(_ []byte, _ string, _ int) ([][]byte, error) {
	return s.pages, nil
}

func TestConvertSingleArtifactNaming(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		target   string
		want     string
	}{
		{
			name:     "extension replaced",
			filename: "holiday.png",
			target:   "jpg",
			want:     "holiday.jpg",
		},
		{
			name:     "directory stripped",
			filename: "/uploads/2024/photo.heic",
			target:   "png",
			want:     "photo.png",
		},
		{
			name:     "dotfile stem falls back",
			filename: ".png",
			target:   "jpg",
			want:     "output.jpg",
		},
		{
			name:     "no extension",
			filename: "scan",
			target:   "png",
			want:     "scan.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New(dispatch.Adapters{Raster: &stubRaster{out: []byte("data")}}, "")
			defer o.Close()

			artifacts, err := o.Convert(tt.filename, []byte("in"), Request{
				Op:           dispatch.OpRasterConvert,
				TargetFormat: tt.target,
			}, nil)
			if err != nil {
				t.Fatalf("Convert: %v", err)
			}
			if len(artifacts) != 1 {
				t.Fatalf("len(artifacts) = %d, want 1", len(artifacts))
			}
			if artifacts[0].Name != tt.want {
				t.Errorf("artifact name = %q, want %q", artifacts[0].Name, tt.want)
			}
		})
	}
}

func TestConvertMultiPageNaming(t *testing.T) {
	pages := [][]byte{[]byte("p1"), []byte("p2"), []byte("p3")}
	o := New(dispatch.Adapters{Document: &stubDocument{pages: pages}}, "")
	defer o.Close()

	artifacts, err := o.Convert("report.pdf", []byte("in"), Request{
		Op:           dispatch.OpDocumentPages,
		TargetFormat: "png",
	}, nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(artifacts) != 3 {
		t.Fatalf("len(artifacts) = %d, want 3", len(artifacts))
	}

	want := []string{"report_page1.png", "report_page2.png", "report_page3.png"}
	for i, artifact := range artifacts {
		if artifact.Name != want[i] {
			t.Errorf("artifact %d name = %q, want %q", i, artifact.Name, want[i])
		}
	}
}

func TestConvertFailureSurfacesTaggedError(t *testing.T) {
	o := New(dispatch.Adapters{
		Raster: &stubRaster{err: dispatch.NewError(dispatch.KindDecodeFailed, "bad header")},
	}, "")
	defer o.Close()

	_, err := o.Convert("x.png", []byte("in"), Request{Op: dispatch.OpRasterConvert, TargetFormat: "jpg"}, nil)
	if err == nil {
		t.Fatal("Convert succeeded on an adapter failure")
	}
	tagged, ok := err.(*dispatch.Error)
	if !ok {
		t.Fatalf("error is not tagged: %v", err)
	}
	if tagged.Kind != dispatch.KindDecodeFailed {
		t.Errorf("ErrKind = %s, want %s", tagged.Kind, dispatch.KindDecodeFailed)
	}

	// The orchestrator stays usable after a failed job
	artifacts, err := o.Convert("y.png", []byte("in"), Request{Op: dispatch.OpRasterConvert, TargetFormat: "jpg"}, nil)
	if err == nil {
		// stubRaster still fails, so this branch never runs
		t.Fatalf("unexpected success: %v", artifacts)
	}
}

func TestConvertProgressForwarded(t *testing.T) {
	o := New(dispatch.Adapters{Raster: &stubRaster{out: []byte("data")}}, "")
	defer o.Close()

	var percents []int
	_, err := o.Convert("a.png", []byte("in"), Request{Op: dispatch.OpRasterConvert, TargetFormat: "jpg"},
		func(p dispatch.Progress) {
			percents = append(percents, p.Percent)
		})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if len(percents) == 0 {
		t.Fatal("no progress forwarded")
	}
	if percents[len(percents)-1] != 100 {
		t.Errorf("final progress = %d, want 100", percents[len(percents)-1])
	}
	for i := 1; i < len(percents); i++ {
		if percents[i] <= percents[i-1] {
			t.Errorf("progress regressed: %v", percents)
		}
	}
}

func TestConvertSavesToOutputDir(t *testing.T) {
	dir := t.TempDir()
	o := New(dispatch.Adapters{Raster: &stubRaster{out: []byte("payload")}}, dir)
	defer o.Close()

	_, err := o.Convert("saved.png", []byte("in"), Request{Op: dispatch.OpRasterConvert, TargetFormat: "jpg"}, nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "saved.jpg"))
	if err != nil {
		t.Fatalf("reading saved artifact: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("saved artifact = %q, want %q", data, "payload")
	}
}

func TestCloseThenConvert(t *testing.T) {
	o := New(dispatch.Adapters{Raster: &stubRaster{out: []byte("data")}}, "")
	o.Close()

	// A fresh context is created on demand after Close
	artifacts, err := o.Convert("b.png", []byte("in"), Request{Op: dispatch.OpRasterConvert, TargetFormat: "png"}, nil)
	if err != nil {
		t.Fatalf("Convert after Close: %v", err)
	}
	if len(artifacts) != 1 {
		t.Fatalf("len(artifacts) = %d, want 1", len(artifacts))
	}
	o.Close()
}

func TestPool(t *testing.T) {
	built := 0
	pool := NewPool(2, func() *Orchestrator {
		built++
		return New(dispatch.Adapters{Raster: &stubRaster{out: []byte("x")}}, "")
	})

	if built != 2 {
		t.Fatalf("factory ran %d times, want 2", built)
	}

	first := pool.Acquire()
	second := pool.Acquire()
	if first == second {
		t.Error("Acquire returned the same orchestrator twice")
	}
	pool.Release(first)
	pool.Release(second)
	pool.Close()
}

func TestPoolReleaseAfterClose(t *testing.T) {
	pool := NewPool(1, func() *Orchestrator {
		return New(dispatch.Adapters{Raster: &stubRaster{out: []byte("x")}}, "")
	})

	o := pool.Acquire()
	if _, err := o.Convert("a.png", []byte("in"), Request{Op: dispatch.OpRasterConvert, TargetFormat: "jpg"}, nil); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	pool.Close()

	// A handler holding an orchestrator past shutdown must still be able
	// to release it
	pool.Release(o)

	// The late-released orchestrator is torn down, not pooled
	o.mu.Lock()
	if o.ctx != nil {
		t.Error("orchestrator context still live after release into a closed pool")
	}
	o.mu.Unlock()

	// Close is idempotent
	pool.Close()
}

func TestPoolMinimumSize(t *testing.T) {
	pool := NewPool(0, func() *Orchestrator {
		return New(dispatch.Adapters{}, "")
	})
	o := pool.Acquire()
	if o == nil {
		t.Fatal("Acquire returned nil from a clamped pool")
	}
	pool.Release(o)
	pool.Close()
}
