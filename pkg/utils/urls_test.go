package utils

import (
	"net/url"
	"testing"
)

func TestDecorateURL(t *testing.T) {
	got, err := DecorateURL("https://cdn.example.com/assets/video-case1/clip.mp4", "clip.mp4")
	if err != nil {
		t.Fatalf("DecorateURL() error = %v", err)
	}

	u, err := url.Parse(got)
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	if q.Get("filename") != "clip.mp4" {
		t.Errorf("filename = %q, want clip.mp4", q.Get("filename"))
	}
	if q.Get("filetype") != "mp4" {
		t.Errorf("filetype = %q, want mp4", q.Get("filetype"))
	}
}

func TestDecorateURLPreservesExistingQuery(t *testing.T) {
	got, err := DecorateURL("https://dl.example.com/f?token=abc", "a.png")
	if err != nil {
		t.Fatalf("DecorateURL() error = %v", err)
	}
	u, _ := url.Parse(got)
	q := u.Query()
	if q.Get("token") != "abc" {
		t.Error("existing query parameter was dropped")
	}
	if q.Get("filetype") != "png" {
		t.Errorf("filetype = %q, want png", q.Get("filetype"))
	}
}

func TestMatchName(t *testing.T) {
	tests := []struct {
		name, substring string
		want            bool
	}{
		{"small-audio.mp3", "", true},
		{"small-audio.mp3", "audio", true},
		{"small-audio.mp3", "video", false},
		{"small-audio.mp3", "small-audio.mp3", true},
	}
	for _, tt := range tests {
		if got := MatchName(tt.name, tt.substring); got != tt.want {
			t.Errorf("MatchName(%q, %q) = %v, want %v", tt.name, tt.substring, got, tt.want)
		}
	}
}
