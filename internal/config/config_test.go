package config

import (
	"os"
	"testing"
)

func TestFromEnvOverrides(t *testing.T) {
	os.Setenv(EnvRetryMax, "7")
	os.Setenv(EnvPageSize, "8192")
	defer os.Unsetenv(EnvRetryMax)
	defer os.Unsetenv(EnvPageSize)

	p := FromEnv()
	if p.RetryMax != 7 {
		t.Fatalf("RetryMax = %d, want 7", p.RetryMax)
	}
	if p.PageSize != 8192 {
		t.Fatalf("PageSize = %d, want 8192", p.PageSize)
	}
	if p.WindowMax != WindowMax {
		t.Fatalf("WindowMax = %d, want %d", p.WindowMax, WindowMax)
	}
}

func TestFromEnvIgnoresGarbage(t *testing.T) {
	os.Setenv(EnvRetryMax, "not-a-number")
	defer os.Unsetenv(EnvRetryMax)

	p := FromEnv()
	if p.RetryMax != DefaultRetryMax {
		t.Fatalf("RetryMax = %d, want default %d on malformed env", p.RetryMax, DefaultRetryMax)
	}
}

func TestFromEnvOverridesNameAndCommentMax(t *testing.T) {
	os.Setenv(EnvNameMax, "128")
	os.Setenv(EnvCommentMax, "256")
	defer os.Unsetenv(EnvNameMax)
	defer os.Unsetenv(EnvCommentMax)

	p := FromEnv()
	if p.NameMax != 128 {
		t.Fatalf("NameMax = %d, want 128", p.NameMax)
	}
	if p.CommentMax != 256 {
		t.Fatalf("CommentMax = %d, want 256", p.CommentMax)
	}
}

func TestDefaultSeedsNameAndCommentMax(t *testing.T) {
	p := Default()
	if p.NameMax != DefaultNameMax {
		t.Fatalf("NameMax = %d, want default %d", p.NameMax, DefaultNameMax)
	}
	if p.CommentMax != DefaultCommentMax {
		t.Fatalf("CommentMax = %d, want default %d", p.CommentMax, DefaultCommentMax)
	}
}

func TestDefaultIsStable(t *testing.T) {
	a, b := Default(), Default()
	if a != b {
		t.Fatalf("Default() is not deterministic: %+v != %+v", a, b)
	}
}
