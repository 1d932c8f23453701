package branding

import "testing"

func TestEmbeddedValues(t *testing.T) {
	if CLIName() != "rdmoctl" {
		t.Errorf("CLIName = %q", CLIName())
	}
	if HomeDir() != ".rdmoctl" {
		t.Errorf("HomeDir = %q", HomeDir())
	}
	if got := EnvVar("base_dir"); got != "RDMOCTL_BASE_DIR" {
		t.Errorf("EnvVar = %q, want RDMOCTL_BASE_DIR", got)
	}
}
