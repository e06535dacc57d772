package doctor

import "testing"

func TestExtractVersion(t *testing.T) {
	tests := []struct {
		output  string
		want    string
		wantErr bool
	}{
		{"Docker version 24.0.7, build afdd53b", "24.0.7", false},
		{"libprotoc 25.1", "25.1.0", false},
		{"Composer version 2.7.1 2024-02-09 15:26:28", "2.7.1", false},
		{"podman version v4.9.3", "4.9.3", false},
		{"nothing useful", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			v, err := ExtractVersion(tt.output)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", v)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractVersion: %v", err)
			}
			if v.String() != tt.want {
				t.Errorf("got %s, want %s", v, tt.want)
			}
		})
	}
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		current, minimum string
		want             int
	}{
		{"1.0.0", "2.0.0", -1},
		{"v2.0.0", "2.0.0", 0},
		{"20.10.1", "20.10.0", 1},
	}
	for _, tt := range tests {
		got, err := CompareVersions(tt.current, tt.minimum)
		if err != nil {
			t.Fatalf("CompareVersions(%s, %s): %v", tt.current, tt.minimum, err)
		}
		if got != tt.want {
			t.Errorf("CompareVersions(%s, %s) = %d, want %d", tt.current, tt.minimum, got, tt.want)
		}
	}

	if _, err := CompareVersions("garbage", "1.0.0"); err == nil {
		t.Error("expected parse error")
	}
}
