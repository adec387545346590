package tagepoch

import "testing"

func TestTagOnceFirstCallTrue(t *testing.T) {
	Begin()
	var tag Tag
	if !tag.TagOnce() {
		t.Error("TagOnce() on fresh tag = false, want true")
	}
}

func TestTagOnceSubsequentCallsFalse(t *testing.T) {
	Begin()
	var tag Tag
	tag.TagOnce()
	if tag.TagOnce() {
		t.Error("TagOnce() second call in same epoch = true, want false")
	}
	if tag.TagOnce() {
		t.Error("TagOnce() third call in same epoch = true, want false")
	}
}

func TestTagOnceResetsAcrossEpochs(t *testing.T) {
	Begin()
	var tag Tag
	if !tag.TagOnce() {
		t.Fatal("first call in epoch 1 should be true")
	}
	if tag.TagOnce() {
		t.Fatal("second call in epoch 1 should be false")
	}

	Begin()
	if !tag.TagOnce() {
		t.Error("first call in new epoch = false, want true")
	}
}

func TestTagOnceIndependentTags(t *testing.T) {
	Begin()
	var a, b Tag
	if !a.TagOnce() {
		t.Error("a.TagOnce() first call = false, want true")
	}
	if !b.TagOnce() {
		t.Error("b.TagOnce() first call = false, want true (independent tag)")
	}
	if a.TagOnce() {
		t.Error("a.TagOnce() second call = true, want false")
	}
}
