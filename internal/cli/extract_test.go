package cli

import "testing"

func TestExtractOutput(t *testing.T) {
	tests := []struct {
		name      string
		explicit  string
		imagePath string
		want      string
	}{
		{
			name:      "explicit output wins",
			explicit:  "manifest.tar",
			imagePath: "/app/requirements.txt",
			want:      "manifest.tar",
		},
		{
			name:      "derived from path base",
			imagePath: "/app/data/bromestriker.db",
			want:      "bromestriker.db.tar",
		},
		{
			name:      "directory path",
			imagePath: "/app/data",
			want:      "data.tar",
		},
		{
			name:      "root falls back to rootfs",
			imagePath: "/",
			want:      "rootfs.tar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractOutput(tt.explicit, tt.imagePath); got != tt.want {
				t.Fatalf("extractOutput() = %q, want %q", got, tt.want)
			}
		})
	}
}
