package version

import (
	"slices"
	"testing"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "1.0.1", -1},
		{"2.0.0", "1.10.0", 1},
		{"1.10.0", "1.9.0", 1},
		{"1.0.0-alpha", "1.0.0", -1},
		{"1.0.0-alpha", "1.0.0-beta", -1},
		{"v1.2.3", "1.2.3", 0},
		{"not-a-version", "0.0.1", -1},
		{"0.0.1", "garbage", 1},
		{"a", "b", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSort(t *testing.T) {
	in := []string{"2.0.0", "1.0.0", "1.10.0", "1.2.0", "1.0.0", "1.2.0-rc.1", "1.9.0"}
	got := Sort(in)
	want := []string{"1.0.0", "1.2.0-rc.1", "1.2.0", "1.9.0", "1.10.0", "2.0.0"}
	if !slices.Equal(got, want) {
		t.Errorf("Sort() = %v, want %v", got, want)
	}

	if in[0] != "2.0.0" {
		t.Error("Sort() modified its input")
	}

	for i := 1; i < len(got); i++ {
		if Compare(got[i-1], got[i]) >= 0 {
			t.Errorf("Sort() not strictly ascending at %d: %s, %s", i, got[i-1], got[i])
		}
	}
}

func TestSortEmpty(t *testing.T) {
	if got := Sort(nil); len(got) != 0 {
		t.Errorf("Sort(nil) = %v, want empty", got)
	}
}

func TestSatisfies(t *testing.T) {
	tests := []struct {
		v, spec string
		want    bool
	}{
		{"1.2.0", "^1.0.0", true},
		{"2.0.0", "^1.0.0", false},
		{"1.2.5", "~1.2.0", true},
		{"1.3.0", "~1.2.0", false},
		{"1.5.0", ">=1.0.0 <2.0.0", true},
		{"2.1.0", "1.x || 2.x", true},
		{"3.0.0", "*", true},
		{"3.0.0", "latest", true},
		{"1.0.0", "1.0.0", true},
		{"1.0.1", "1.0.0", false},
		{"1.0.0", "file:../local", false},
		{"garbage", "*", false},
	}

	for _, tt := range tests {
		t.Run(tt.v+" "+tt.spec, func(t *testing.T) {
			if got := Satisfies(tt.v, tt.spec); got != tt.want {
				t.Errorf("Satisfies(%q, %q) = %v, want %v", tt.v, tt.spec, got, tt.want)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	versions := []string{"1.0.0", "1.1.0", "1.2.0", "2.0.0"}

	got := Filter("^1.1.0", versions)
	want := []string{"1.1.0", "1.2.0"}
	if !slices.Equal(got, want) {
		t.Errorf("Filter() = %v, want %v", got, want)
	}

	if got := Filter("git+https://example.com/x.git", versions); got != nil {
		t.Errorf("Filter() with unparsable spec = %v, want nil", got)
	}
}

func TestResolve(t *testing.T) {
	available := []string{"1.0.0", "1.2.0", "1.4.1", "2.0.0"}

	tests := []struct {
		name string
		spec string
		want string
	}{
		{"exact", "1.2.0", "1.2.0"},
		{"exact unpublished", "1.3.0", "1.3.0"},
		{"v prefix", "v1.2.0", "1.2.0"},
		{"equals prefix", "=1.4.1", "1.4.1"},
		{"caret picks lowest", "^1.0.0", "1.0.0"},
		{"caret above floor", "^1.1.0", "1.2.0"},
		{"tilde", "~1.4.0", "1.4.1"},
		{"major range", "^2.0.0", "2.0.0"},
		{"no match", "^3.0.0", Sentinel},
		{"latest tag", "latest", "1.0.0"},
		{"unparsable", "github:user/repo", Sentinel},
		{"whitespace", "  ^1.2.0 ", "1.2.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.spec, available); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.spec, got, tt.want)
			}
		})
	}
}

func TestResolveEmptyAvailable(t *testing.T) {
	if got := Resolve("^1.0.0", nil); got != Sentinel {
		t.Errorf("Resolve() with no versions = %q, want %q", got, Sentinel)
	}
}

func TestValid(t *testing.T) {
	if !Valid("1.2.3") {
		t.Error("Valid(1.2.3) = false")
	}
	if Valid("^1.2.3") {
		t.Error("Valid(^1.2.3) = true")
	}
}

func TestValidSpec(t *testing.T) {
	tests := []struct {
		spec string
		want bool
	}{
		{"1.2.3", true},
		{"v1.2.3", true},
		{"^1.2.0", true},
		{">=1.0.0 <2.0.0", true},
		{"1.x || 2.x", true},
		{"latest", true},
		{"", true},
		{"not a version", false},
	}
	for _, tt := range tests {
		if got := ValidSpec(tt.spec); got != tt.want {
			t.Errorf("ValidSpec(%q) = %v, want %v", tt.spec, got, tt.want)
		}
	}
}
