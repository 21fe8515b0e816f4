package service

import (
	"testing"
)

func TestBucketScore(t *testing.T) {
	bands := emptyScoreBands()
	for _, p := range []float64{0, 10, 20, 20.5, 35, 50, 60, 75, 81, 90, 100} {
		bucketScore(bands, p)
	}

	wantCounts := []int{3, 2, 2, 1, 3}
	for i, want := range wantCounts {
		if bands[i].Count != want {
			t.Errorf("band %s: got %d, want %d", bands[i].Label, bands[i].Count, want)
		}
	}
}

func TestBucketScoreSeparatesLowScores(t *testing.T) {
	// A 10% and a 50% attempt land in different buckets; the
	// distribution is equal-width, not graded.
	bands := emptyScoreBands()
	bucketScore(bands, 10)
	bucketScore(bands, 50)
	if bands[0].Count != 1 || bands[2].Count != 1 {
		t.Errorf("10%% and 50%% must land in distinct bands, got %+v", bands)
	}
}

func TestEmptyScoreBandLabels(t *testing.T) {
	want := []string{"0-20", "21-40", "41-60", "61-80", "81-100"}
	bands := emptyScoreBands()
	for i, label := range want {
		if bands[i].Label != label {
			t.Errorf("band %d label = %q, want %q", i, bands[i].Label, label)
		}
	}
}

func TestEmptyScoreBandsAreZero(t *testing.T) {
	bands := emptyScoreBands()
	if len(bands) != 5 {
		t.Fatalf("expected 5 bands, got %d", len(bands))
	}
	for _, b := range bands {
		if b.Count != 0 {
			t.Errorf("band %s not zero-initialized", b.Label)
		}
	}
}

func TestBucketTime(t *testing.T) {
	// 60 minute exam: 15-minute steps plus overflow.
	bands := emptyTimeBands(60)
	if len(bands) != 5 {
		t.Fatalf("expected 5 bands, got %d", len(bands))
	}

	bucketTime(bands, 5*60, 60)   // 5m  -> first band
	bucketTime(bands, 20*60, 60)  // 20m -> second band
	bucketTime(bands, 44*60, 60)  // 44m -> third band
	bucketTime(bands, 59*60, 60)  // 59m -> fourth band
	bucketTime(bands, 60*60, 60)  // 60m -> overflow
	bucketTime(bands, 200*60, 60) // way over -> overflow

	wantCounts := []int{1, 1, 1, 1, 2}
	for i, want := range wantCounts {
		if bands[i].Count != want {
			t.Errorf("band %s: got %d, want %d", bands[i].Label, bands[i].Count, want)
		}
	}
}

func TestTimeBandStepDegenerateDurations(t *testing.T) {
	if step := timeBandStep(0); step != 15 {
		t.Errorf("zero duration should fall back to a 60-minute split, got step %d", step)
	}
	if step := timeBandStep(2); step != 1 {
		t.Errorf("tiny duration should use 1-minute steps, got step %d", step)
	}
}
