// Package test holds helpers shared by the tests of several packages.
package test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// MustBe fails the test with a diff if got and want differ.
func MustBe(t *testing.T, got, want interface{}, context ...string) {
	t.Helper()
	var ctx string
	if len(context) > 0 {
		ctx = context[0] + ": "
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("%vmismatch (-want +got):\n%s", ctx, diff)
	}
}

// ErrNil fails the test if err is non-nil.
func ErrNil(t *testing.T, err error, ctx string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%v: %v", ctx, err)
	}
}

// WriteFile writes contents to a file called name in a fresh temporary
// directory and returns its path. The directory is removed when the test
// ends.
func WriteFile(t *testing.T, name, contents string) string {
	t.Helper()
	dir, err := ioutil.TempDir("", "txnimport-test")
	if err != nil {
		t.Fatalf("creating temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, name)
	if err := ioutil.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}
