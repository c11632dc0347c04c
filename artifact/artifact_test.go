package artifact

import (
	"slices"
	"testing"
)

func TestLookup(t *testing.T) {
	g, ok := Lookup(TLSRuntime)
	if !ok {
		t.Fatal("tls-runtime not found")
	}
	if got := g.RoleNames(); !slices.Equal(got, []string{"ssl", "crypto"}) {
		t.Errorf("roles = %v", got)
	}
	if _, ok := Lookup("nope"); ok {
		t.Error("Lookup(nope) succeeded")
	}
}

func TestCoreLibraryShipsWithSharedBuilds(t *testing.T) {
	for _, g := range All() {
		if want := g.Name != CoreLibrary; g.EmbeddedInShared != want {
			t.Errorf("%s: EmbeddedInShared = %v, want %v", g.Name, g.EmbeddedInShared, want)
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	all[0].Name = "changed"
	if MustLookup(CoreLibrary).Name != CoreLibrary {
		t.Error("All exposed the catalogue")
	}
}
