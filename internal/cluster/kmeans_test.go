package cluster

import (
	"reflect"
	"testing"
)

func blobFrames() [][]float64 {
	var frames [][]float64
	for i := 0; i < 10; i++ {
		frames = append(frames, []float64{-10 + 0.1*float64(i), 0})
	}
	for i := 0; i < 10; i++ {
		frames = append(frames, []float64{10 - 0.1*float64(i), 0})
	}
	return frames
}

func TestKMeansSeparatesBlobs(t *testing.T) {
	km := New(2, 1)
	frames := blobFrames()
	if err := km.Fit(frames); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	labels := km.Labels(frames)

	// All left-blob frames share a label distinct from the right blob's.
	left := labels[0]
	for i := 0; i < 10; i++ {
		if labels[i] != left {
			t.Fatalf("left blob split: labels %v", labels)
		}
	}
	right := labels[10]
	if right == left {
		t.Fatalf("blobs merged: labels %v", labels)
	}
	for i := 10; i < 20; i++ {
		if labels[i] != right {
			t.Fatalf("right blob split: labels %v", labels)
		}
	}
}

func TestKMeansDeterministic(t *testing.T) {
	frames := blobFrames()

	a := New(3, 99)
	b := New(3, 99)
	if err := a.Fit(frames); err != nil {
		t.Fatalf("Fit a: %v", err)
	}
	if err := b.Fit(frames); err != nil {
		t.Fatalf("Fit b: %v", err)
	}
	if !reflect.DeepEqual(a.Labels(frames), b.Labels(frames)) {
		t.Fatal("same seed produced different assignments")
	}
}

func TestKMeansClampsK(t *testing.T) {
	frames := [][]float64{{0, 0}, {1, 1}}
	km := New(5, 0)
	if err := km.Fit(frames); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if km.NCentroids() != 2 {
		t.Fatalf("expected k clamped to 2, got %d", km.NCentroids())
	}

	km = New(0, 0)
	if err := km.Fit(frames); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if km.NCentroids() != 1 {
		t.Fatalf("expected k clamped up to 1, got %d", km.NCentroids())
	}
}

func TestKMeansEmptyInput(t *testing.T) {
	km := New(1, 0)
	if err := km.Fit(nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestKMeansPredictMatchesLabels(t *testing.T) {
	frames := blobFrames()
	km := New(2, 7)
	if err := km.Fit(frames); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	labels := km.Labels(frames)
	for i, f := range frames {
		if got := km.Predict(f); got != labels[i] {
			t.Fatalf("Predict(%v) = %d, Labels gave %d", f, got, labels[i])
		}
	}
}
