package storage

import "testing"

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix string
		key    string
		want   string
	}{
		{prefix: "pages", key: "admin/edit.html", want: "pages/admin/edit.html"},
		{prefix: "/pages/", key: "/style.css", want: "pages/style.css"},
		{prefix: "", key: "index.html", want: "index.html"},
		{prefix: "pages", key: "../../secrets.txt", want: "pages/secrets.txt"},
		{prefix: "pages", key: "admin//./manage.html", want: "pages/admin/manage.html"},
	}

	for _, tt := range tests {
		if got := objectKey(tt.prefix, tt.key); got != tt.want {
			t.Errorf("objectKey(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
		}
	}
}

func TestContentTypeOrDefault(t *testing.T) {
	if got := contentTypeOrDefault(""); got != defaultContentType {
		t.Errorf("empty content type = %q, want %q", got, defaultContentType)
	}
	if got := contentTypeOrDefault("text/css; charset=utf-8"); got != "text/css; charset=utf-8" {
		t.Errorf("explicit content type replaced: %q", got)
	}
}
