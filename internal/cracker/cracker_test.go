package cracker

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"edu/hashmodule/internal/module"
	_ "edu/hashmodule/internal/modules"
)

const (
	ntlmHashcat  = "b4b9b02e6f09a9bd760f388b67351e2b"
	ntlmPassword = "8846f7eaee8fb117ad06bdd830b7586c"
)

func setup(t *testing.T, mode uint32, opt bool, hashes string) (*Cracker, module.Module, *module.Config, *HashList) {
	t.Helper()
	m, err := module.Get(mode)
	if err != nil {
		t.Fatal(err)
	}
	conf := module.NewConfig(m, module.UserOptions{OptimizedKernel: opt})
	c := New(Options{Workers: 2, BatchSize: 7})
	t.Cleanup(func() { c.Close() })
	list, err := c.LoadHashes(context.Background(), m, conf, strings.NewReader(hashes))
	if err != nil {
		t.Fatal(err)
	}
	return c, m, conf, list
}

func writeWordlist(t *testing.T, words ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte(strings.Join(words, "\r\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadHashes(t *testing.T) {
	input := strings.Join([]string{
		ntlmHashcat,
		"",
		strings.ToUpper(ntlmHashcat),
		"g4b9b02e6f09a9bd760f388b67351e2b",
		ntlmPassword + "\r",
		"b4b9b02e",
	}, "\n")
	_, _, _, list := setup(t, 1000, true, input)

	if list.Len() != 2 || list.Rejected != 2 || list.Duplicates != 1 {
		t.Fatalf("len=%d rejected=%d duplicates=%d", list.Len(), list.Rejected, list.Duplicates)
	}
	var got []string
	list.Each(func(h string) { got = append(got, h) })
	if len(got) != 2 || (got[0] != ntlmHashcat && got[1] != ntlmHashcat) {
		t.Fatalf("hashes = %v", got)
	}
}

func TestLoadHashesEmpty(t *testing.T) {
	m, _ := module.Get(1000)
	c := New(Options{})
	defer c.Close()
	_, err := c.LoadHashes(context.Background(), m, module.NewConfig(m, module.UserOptions{}), strings.NewReader("nothex\n\n"))
	if !errors.Is(err, ErrNoHashes) {
		t.Fatalf("err = %v", err)
	}
}

func TestCrackWordlist(t *testing.T) {
	words := []string{"a", "b", "letmein", "password", "x", "y", "z", "q", "hashcat", "zz"}
	for _, opt := range []bool{false, true} {
		c, m, conf, list := setup(t, 1000, opt, ntlmHashcat+"\n"+ntlmPassword+"\n")
		res, err := c.CrackWordlist(context.Background(), m, conf, list, writeWordlist(t, words...))
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Cracked) != 2 || res.Remaining != 0 {
			t.Fatalf("-O=%v result %+v", opt, res)
		}
		want := map[string]string{ntlmHashcat: "hashcat", ntlmPassword: "password"}
		for _, cr := range res.Cracked {
			if want[cr.Hash] != cr.Plaintext {
				t.Fatalf("-O=%v crack %+v", opt, cr)
			}
		}
	}
}

func TestCrackWordlistAllModes(t *testing.T) {
	for _, m := range module.List() {
		c, _, conf, list := setup(t, m.Mode(), true, m.StHash())
		res, err := c.CrackWordlist(context.Background(), m, conf, list, writeWordlist(t, "one", "two", m.StPass(), "three"))
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Cracked) != 1 || res.Cracked[0].Plaintext != m.StPass() || res.Cracked[0].Hash != m.StHash() {
			t.Fatalf("%s: %+v", m.HashName(), res)
		}
	}
}

func TestCrackMask(t *testing.T) {
	c, m, conf, list := setup(t, 1000, true, ntlmHashcat)
	res, err := c.CrackMask(context.Background(), m, conf, list, "hash?l?lt")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Cracked) != 1 || res.Cracked[0].Plaintext != "hashcat" {
		t.Fatalf("result %+v", res)
	}
	if res.Tried == 0 || res.Tried > 676 {
		t.Fatalf("tried = %d", res.Tried)
	}
}

func TestCrackMaskMD5Batch(t *testing.T) {
	c, m, conf, list := setup(t, 0, true, "8743b52063cd84097a65d1633f5c74f5")
	res, err := c.CrackMask(context.Background(), m, conf, list, "?lashcat")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Cracked) != 1 || res.Cracked[0].Plaintext != "hashcat" {
		t.Fatalf("result %+v", res)
	}
}

func TestCrackSkipsOutOfBounds(t *testing.T) {
	m, _ := module.Get(1000)
	conf := module.NewConfig(m, module.UserOptions{OptimizedKernel: true, PwMax: 6})
	c := New(Options{Workers: 1})
	defer c.Close()
	list, err := c.LoadHashes(context.Background(), m, conf, strings.NewReader(ntlmHashcat))
	if err != nil {
		t.Fatal(err)
	}
	res, err := c.CrackWordlist(context.Background(), m, conf, list, writeWordlist(t, "hashcat", "abc"))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Cracked) != 0 || res.Skipped != 1 || res.Tried != 1 || res.Remaining != 1 {
		t.Fatalf("result %+v", res)
	}
}

func TestCrackWordlistEmptyPassword(t *testing.T) {
	const ntlmEmpty = "31d6cfe0d16ae931b73c59d7e0c089c0"
	for _, opt := range []bool{false, true} {
		c, m, conf, list := setup(t, 1000, opt, ntlmEmpty)
		res, err := c.CrackWordlist(context.Background(), m, conf, list, writeWordlist(t, "foo", "", "bar"))
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Cracked) != 1 || res.Cracked[0].Hash != ntlmEmpty || res.Cracked[0].Plaintext != "" {
			t.Fatalf("-O=%v result %+v", opt, res)
		}
		if res.Tried != 3 || res.Remaining != 0 {
			t.Fatalf("-O=%v tried=%d remaining=%d", opt, res.Tried, res.Remaining)
		}
	}
}

func TestCrackNotFound(t *testing.T) {
	c, m, conf, list := setup(t, 1000, false, ntlmHashcat)
	res, err := c.CrackWordlist(context.Background(), m, conf, list, writeWordlist(t, "nope", "still-nope"))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Cracked) != 0 || res.Tried != 2 || res.Remaining != 1 {
		t.Fatalf("result %+v", res)
	}
}

func TestCrackMissingWordlist(t *testing.T) {
	c, m, conf, list := setup(t, 1000, false, ntlmHashcat)
	if _, err := c.CrackWordlist(context.Background(), m, conf, list, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error")
	}
	if _, err := c.CrackWordlist(context.Background(), m, conf, list, ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestEventLog(t *testing.T) {
	m, _ := module.Get(1000)
	conf := module.NewConfig(m, module.UserOptions{})
	logPath := filepath.Join(t.TempDir(), "events.jsonl")
	c := New(Options{Workers: 1, LogPath: logPath})
	list, err := c.LoadHashes(context.Background(), m, conf, strings.NewReader(ntlmHashcat))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.CrackWordlist(context.Background(), m, conf, list, writeWordlist(t, "hashcat")); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, ev := range []string{`"msg":"start"`, `"msg":"found"`, `"msg":"done"`} {
		if !bytes.Contains(b, []byte(ev)) {
			t.Errorf("event log missing %s:\n%s", ev, b)
		}
	}
}

func TestPotfileRoundTrip(t *testing.T) {
	cracks := []Crack{
		{Hash: ntlmHashcat, Plaintext: "hashcat"},
		{Hash: ntlmPassword, Plaintext: "pass:word"},
		{Hash: "31d6cfe0d16ae931b73c59d7e0c089c0", Plaintext: "$HEX[41]"},
	}
	var buf bytes.Buffer
	if err := WritePotfile(&buf, cracks); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), ntlmPassword+":$HEX[706173733a776f7264]") {
		t.Fatalf("potfile:\n%s", buf.String())
	}
	got, bad, err := ReadPotfile(&buf)
	if err != nil || bad != 0 {
		t.Fatalf("bad=%d err=%v", bad, err)
	}
	if len(got) != len(cracks) {
		t.Fatalf("read %d cracks", len(got))
	}
	for i := range cracks {
		if got[i] != cracks[i] {
			t.Errorf("crack %d = %+v, want %+v", i, got[i], cracks[i])
		}
	}
}

func TestReadPotfileSkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		ntlmHashcat + ":hashcat",
		"31d6cfe0d16ae931b73c59d7e0c089c0:$HEX[zz]",
		"no separator here",
		"",
		ntlmPassword + ":$HEX[70617373776f7264]",
	}, "\n")
	got, bad, err := ReadPotfile(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if bad != 2 {
		t.Errorf("bad = %d, want 2", bad)
	}
	want := []Crack{{ntlmHashcat, "hashcat"}, {ntlmPassword, "password"}}
	if len(got) != len(want) {
		t.Fatalf("cracks = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("crack %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPreload(t *testing.T) {
	c, m, conf, list := setup(t, 1000, true, ntlmHashcat+"\n"+ntlmPassword)
	hit := list.Preload([]Crack{
		{Hash: strings.ToUpper(ntlmHashcat), Plaintext: "hashcat"},
		{Hash: "not-a-hash", Plaintext: "x"},
		{Hash: ntlmHashcat, Plaintext: "hashcat"},
	})
	if len(hit) != 1 || hit[0].Hash != ntlmHashcat || list.Remaining() != 1 {
		t.Fatalf("hit=%v remaining=%d", hit, list.Remaining())
	}
	res, err := c.CrackWordlist(context.Background(), m, conf, list, writeWordlist(t, "hashcat", "password"))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Cracked) != 1 || res.Cracked[0].Plaintext != "password" {
		t.Fatalf("result %+v", res)
	}
}
