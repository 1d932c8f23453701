package envvar

import (
	"reflect"
	"testing"
)

func TestEnv_OverlayWins(t *testing.T) {
	env := FromMap(map[string]string{"DB_HOST": "localhost", "DB_NAME": "rdmo"})
	env.Overlay("env-file:.env", map[string]string{"DB_HOST": "db.internal"})
	env.Overlay("env-file:multisite.env", map[string]string{"DB_HOST": "shared-db"})

	v, src, ok := env.Lookup("DB_HOST")
	if !ok || v != "shared-db" || src != "env-file:multisite.env" {
		t.Errorf("Lookup(DB_HOST) = %q, %q, %v", v, src, ok)
	}

	v, src, ok = env.Lookup("DB_NAME")
	if !ok || v != "rdmo" || src != SourceEnvironment {
		t.Errorf("Lookup(DB_NAME) = %q, %q, %v", v, src, ok)
	}

	if _, _, ok := env.Lookup("DB_PORT"); ok {
		t.Error("expected DB_PORT to be absent")
	}
}

func TestEnv_OverlayCopiesMap(t *testing.T) {
	vars := map[string]string{"SECRET_KEY": "a"}
	env := FromMap(nil)
	env.Overlay("test", vars)
	vars["SECRET_KEY"] = "b"

	v, _, _ := env.Lookup("SECRET_KEY")
	if v != "a" {
		t.Errorf("overlay should not alias caller map, got %q", v)
	}
}

func TestEnv_Overrides(t *testing.T) {
	env := FromMap(nil)
	env.Overlay("one", map[string]string{"A": "1", "B": "1"})
	env.Overlay("two", map[string]string{"B": "2"})

	want := map[string]string{"A": "1", "B": "2"}
	if got := env.Overrides(); !reflect.DeepEqual(got, want) {
		t.Errorf("Overrides() = %v, want %v", got, want)
	}
	if got := env.OverrideKeys(); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("OverrideKeys() = %v", got)
	}
	if got := env.Sources(); !reflect.DeepEqual(got, []string{"one", "two"}) {
		t.Errorf("Sources() = %v", got)
	}
}

func TestOS_ReadsProcessEnvironment(t *testing.T) {
	t.Setenv("RDMOCTL_TEST_VALUE", "present")

	v, src, ok := OS().Lookup("RDMOCTL_TEST_VALUE")
	if !ok || v != "present" || src != SourceEnvironment {
		t.Errorf("Lookup = %q, %q, %v", v, src, ok)
	}
}
