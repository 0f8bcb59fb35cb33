package storage

import "testing"

func TestPublicURLAndObjectKey_WithBaseURL(t *testing.T) {
	t.Parallel()

	c := &s3Client{cfg: ServiceConfig{
		S3BucketName:    "avatars",
		S3Endpoint:      "https://s3.example.com",
		S3PublicBaseURL: "https://cdn.example.com/",
	}}

	url := c.PublicURL("avatars/1/pic.png")
	if url != "https://cdn.example.com/avatars/1/pic.png" {
		t.Fatalf("PublicURL: got %q", url)
	}

	key, ok := c.ObjectKey(url)
	if !ok || key != "avatars/1/pic.png" {
		t.Fatalf("ObjectKey: got %q ok=%v", key, ok)
	}
}

func TestPublicURLAndObjectKey_PathStyle(t *testing.T) {
	t.Parallel()

	c := &s3Client{cfg: ServiceConfig{
		S3BucketName: "avatars",
		S3Endpoint:   "https://s3.example.com/",
	}}

	url := c.PublicURL("avatars/7/pic.webp")
	if url != "https://s3.example.com/avatars/avatars/7/pic.webp" {
		t.Fatalf("PublicURL: got %q", url)
	}

	key, ok := c.ObjectKey(url)
	if !ok || key != "avatars/7/pic.webp" {
		t.Fatalf("ObjectKey: got %q ok=%v", key, ok)
	}
}

func TestObjectKey_ForeignURL(t *testing.T) {
	t.Parallel()

	c := &s3Client{cfg: ServiceConfig{
		S3BucketName:    "avatars",
		S3Endpoint:      "https://s3.example.com",
		S3PublicBaseURL: "https://cdn.example.com",
	}}

	for _, u := range []string{
		"https://api.dicebear.com/9.x/adventurer-neutral/svg?seed=miku",
		"https://cdn.example.com/",
		"",
	} {
		if key, ok := c.ObjectKey(u); ok {
			t.Errorf("ObjectKey(%q) unexpectedly resolved to %q", u, key)
		}
	}
}
