package cmd

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jaffee/commandeer"
	"github.com/pilosa/txnimport/usecase/transactions"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestSetAllConfigPriority(t *testing.T) {
	dir, err := ioutil.TempDir("", "txnimport-cmd")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	cfg := filepath.Join(dir, "txnimport.toml")
	err = ioutil.WriteFile(cfg, []byte(`host = "https://es.example.com:9200"
index = "from_file"
batch-size = 250
connect-timeout = "3s"
`), 0600)
	if err != nil {
		t.Fatal(err)
	}

	os.Setenv("TXNIMPORT_INDEX", "from_env")
	defer os.Unsetenv("TXNIMPORT_INDEX")

	m := transactions.NewMain()
	flags := pflag.NewFlagSet("import", pflag.ContinueOnError)
	flags.String("config", "", "")
	if err := commandeer.Flags(flags, m); err != nil {
		t.Fatalf("defining flags: %v", err)
	}
	if err := flags.Parse([]string{"--config", cfg, "--batch-size", "7"}); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}
	if err := setAllConfig(viper.New(), flags, "TXNIMPORT"); err != nil {
		t.Fatalf("setting config: %v", err)
	}

	if m.Host != "https://es.example.com:9200" {
		t.Errorf("host from config file: got %s", m.Host)
	}
	if m.Index != "from_env" {
		t.Errorf("env should override config file: got %s", m.Index)
	}
	if m.BatchSize != 7 {
		t.Errorf("flag should override config file: got %d", m.BatchSize)
	}
	if m.ConnectTimeout != 3*time.Second {
		t.Errorf("connect timeout from config file: got %v", m.ConnectTimeout)
	}
	if m.Username != "elastic" {
		t.Errorf("default should survive: got %s", m.Username)
	}
}

func TestSetAllConfigBadFile(t *testing.T) {
	flags := pflag.NewFlagSet("import", pflag.ContinueOnError)
	flags.String("config", "", "")
	if err := flags.Parse([]string{"--config", "/nonexistent/txnimport.toml"}); err != nil {
		t.Fatal(err)
	}
	if err := setAllConfig(viper.New(), flags, "TXNIMPORT"); err == nil {
		t.Fatal("expected error reading a missing config file")
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	stderr := &bytes.Buffer{}
	rc := NewRootCommand(strings.NewReader(""), &bytes.Buffer{}, stderr)
	names := map[string]bool{}
	for _, c := range rc.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"import", "history", "gen"} {
		if !names[want] {
			t.Errorf("missing subcommand %s", want)
		}
	}
}

func TestHistoryCommandMissingFile(t *testing.T) {
	rc := NewRootCommand(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	rc.SetArgs([]string{"history", "--history", "/nonexistent/txnimport.db"})
	if err := rc.Execute(); err == nil {
		t.Fatal("expected error for missing history file")
	}
}

func TestSetAllConfigUnknownKey(t *testing.T) {
	dir, err := ioutil.TempDir("", "txnimport-cmd")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	cfg := filepath.Join(dir, "txnimport.toml")
	if err := ioutil.WriteFile(cfg, []byte("host = \"http://es:9200\"\npasword = \"typo\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	m := transactions.NewMain()
	flags := pflag.NewFlagSet("import", pflag.ContinueOnError)
	flags.String("config", "", "")
	if err := commandeer.Flags(flags, m); err != nil {
		t.Fatalf("defining flags: %v", err)
	}
	if err := flags.Parse([]string{"--config", cfg}); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}
	err = setAllConfig(viper.New(), flags, "TXNIMPORT")
	if err == nil || !strings.Contains(err.Error(), "pasword") {
		t.Fatalf("expected error naming the unknown key, got %v", err)
	}
}
